package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSnapshot(t *testing.T) {
	raw := []byte(`{
		"users": {"0xalice": {"address": "0xalice", "creation_time": 1690000000}},
		"ratings": {"1-0xalice": 25},
		"communities": {"1": {"id": 1, "tag_count": 2}},
		"tags": {
			"1-1": {"community_id": 1, "id": 1},
			"1-2": {"community_id": 1, "id": 2}
		},
		"posts": {"7": {"id": 7, "community_id": 1, "author": "0xalice"}}
	}`)

	s, err := ParseSnapshot(raw)
	assert.NoError(t, err)

	ctx := context.Background()

	user, err := s.GetUserByAddress(ctx, "0xALICE")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, int64(1690000000), user.CreationTime)
	}

	rating, err := s.GetUserRating(ctx, "0xAlice", 1)
	assert.NoError(t, err)
	if assert.NotNil(t, rating) {
		assert.Equal(t, 25, *rating)
	}

	absent, err := s.GetUserRating(ctx, "0xbob", 1)
	assert.NoError(t, err)
	assert.Nil(t, absent)

	post, err := s.GetPost(ctx, 7)
	assert.NoError(t, err)
	assert.NotNil(t, post)

	gone, err := s.GetPost(ctx, 8)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSnapshotTagsAreDenseAndOrdered(t *testing.T) {
	s := &Snapshot{
		Communities: map[string]*Community{"1": {ID: 1, TagCount: 3}},
		Tags: map[string]*Tag{
			"1-1": {CommunityID: 1, ID: 1},
			"1-2": {CommunityID: 1, ID: 2},
			"1-3": {CommunityID: 1, ID: 3},
		},
	}

	tags, err := s.GetTags(context.Background(), 1)
	assert.NoError(t, err)
	if assert.Len(t, tags, 3) {
		assert.Equal(t, int64(1), tags[0].ID)
		assert.Equal(t, int64(3), tags[2].ID)
	}

	none, err := s.GetTags(context.Background(), 2)
	assert.NoError(t, err)
	assert.Nil(t, none)
}
