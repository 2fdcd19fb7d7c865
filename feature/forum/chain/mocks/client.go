package mocks

import (
	"context"

	"forum-indexer/feature/forum/chain"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of chain.Client
type Client struct {
	mock.Mock
}

func (m *Client) GetUserByAddress(ctx context.Context, address string) (*chain.User, error) {
	args := m.Called(ctx, address)
	if u, ok := args.Get(0).(*chain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetUserRating(ctx context.Context, address string, communityID int64) (*int, error) {
	args := m.Called(ctx, address, communityID)
	if r, ok := args.Get(0).(*int); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetCommunity(ctx context.Context, id int64) (*chain.Community, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*chain.Community); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetTag(ctx context.Context, communityID, tagID int64) (*chain.Tag, error) {
	args := m.Called(ctx, communityID, tagID)
	if t, ok := args.Get(0).(*chain.Tag); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetTags(ctx context.Context, communityID int64) ([]chain.Tag, error) {
	args := m.Called(ctx, communityID)
	if tags, ok := args.Get(0).([]chain.Tag); ok {
		return tags, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetPost(ctx context.Context, id int64) (*chain.Post, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*chain.Post); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetReply(ctx context.Context, postID, replyID int64) (*chain.Reply, error) {
	args := m.Called(ctx, postID, replyID)
	if r, ok := args.Get(0).(*chain.Reply); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetComment(ctx context.Context, postID, parentReplyID, commentID int64) (*chain.Comment, error) {
	args := m.Called(ctx, postID, parentReplyID, commentID)
	if c, ok := args.Get(0).(*chain.Comment); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetCommunityToken(ctx context.Context, contractAddress string, communityID int64) (*chain.CommunityToken, error) {
	args := m.Called(ctx, contractAddress, communityID)
	if t, ok := args.Get(0).(*chain.CommunityToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetAchievement(ctx context.Context, id int64) (*chain.Achievement, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*chain.Achievement); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
