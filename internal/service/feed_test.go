package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realorfakerf/myblog/internal/repository"
)

func TestLoadFeedPage_Pagination(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	for i := 0; i < FeedPageSize+2; i++ {
		seedPost(t, repo, author, fmt.Sprintf("Post %d", i), fmt.Sprintf("post-%d", i), true)
	}

	first, hasMore, err := svc.LoadFeedPage(ctx, "", 0, SortRecent)
	require.NoError(t, err)
	assert.Len(t, first, FeedPageSize)
	assert.True(t, hasMore)

	second, hasMore, err := svc.LoadFeedPage(ctx, "", 1, SortRecent)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.False(t, hasMore)

	// Newest first.
	assert.Equal(t, "Post 11", first[0].Title)
	assert.Equal(t, "Post 1", second[0].Title)
}

func TestLoadFeedPage_ExcludesPrivate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	seedPost(t, repo, author, "Public One", "public-one", true)
	seedPost(t, repo, author, "Secret", "secret", false)

	feed, _, err := svc.LoadFeedPage(ctx, "", 0, SortRecent)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Public One", feed[0].Title)
}

func TestLoadFeedPage_PopularitySortsWithinPage(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	seedPost(t, repo, author, "Quiet", "quiet", true)
	busy := seedPost(t, repo, author, "Busy", "busy", true)
	middling := seedPost(t, repo, author, "Middling", "middling", true)

	for i := 0; i < 3; i++ {
		liker := seedUser(t, repo, fmt.Sprintf("liker%d@example.com", i), fmt.Sprintf("liker%d", i))
		require.NoError(t, repo.AddPostLike(ctx, busy.ID, liker))
	}
	seedComment(t, repo, busy.ID, author, nil, "comment")
	seedComment(t, repo, middling.ID, author, nil, "comment")

	feed, _, err := svc.LoadFeedPage(ctx, "", 0, SortPopular)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "Busy", feed[0].Title)
	assert.Equal(t, "Middling", feed[1].Title)
	assert.Equal(t, "Quiet", feed[2].Title)
	assert.Equal(t, 3, feed[0].LikeCount)
	assert.Equal(t, 1, feed[0].CommentCount)
}

func TestLoadFeedPage_MissingProfilePlaceholder(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// Author row exists but no profile was ever provisioned.
	ghost := &repository.User{Email: "ghost@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, ghost))
	seedPost(t, repo, ghost.ID, "Orphaned", "orphaned", true)

	feed, _, err := svc.LoadFeedPage(ctx, "", 0, SortRecent)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "unknown", feed[0].Author.Nickname)
	assert.Equal(t, ghost.ID, feed[0].Author.ID)
}

func TestLoadFeedPage_ViewerLikedFlag(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	viewer := seedUser(t, repo, "viewer@example.com", "viewer")

	post := seedPost(t, repo, author, "Liked Post", "liked-post", true)
	require.NoError(t, repo.AddPostLike(ctx, post.ID, viewer))

	feed, _, err := svc.LoadFeedPage(ctx, viewer, 0, SortRecent)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Liked)

	anon, _, err := svc.LoadFeedPage(ctx, "", 0, SortRecent)
	require.NoError(t, err)
	assert.False(t, anon[0].Liked)
}
