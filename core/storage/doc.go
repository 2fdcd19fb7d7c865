// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified read interface for the
// content resolver: content payloads are stored as one object per content
// hash. The abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "forum-content")
package storage
