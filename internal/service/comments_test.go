package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadThread_AttachesReplies(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	commenter := seedUser(t, repo, "commenter@example.com", "commenter")

	post := seedPost(t, repo, author, "Discussed", "discussed", true)
	parent := seedComment(t, repo, post.ID, commenter, nil, "top level")
	reply := seedComment(t, repo, post.ID, author, &parent.ID, "a reply")
	other := seedComment(t, repo, post.ID, author, nil, "another top level")

	thread, hasMore, err := svc.LoadThread(ctx, "", post.ID, 0)
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, thread, 2)

	// Newest top-level first; the reply hangs off its parent.
	assert.Equal(t, other.ID, thread[0].ID)
	assert.Equal(t, parent.ID, thread[1].ID)
	require.Len(t, thread[1].Replies, 1)
	assert.Equal(t, reply.ID, thread[1].Replies[0].ID)
	assert.Equal(t, "commenter", thread[1].Author.Nickname)
}

func TestLoadThread_OrphanReplyDropped(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	post := seedPost(t, repo, author, "Long Thread", "long-thread", true)
	parent := seedComment(t, repo, post.ID, author, nil, "early parent")
	for i := 0; i < CommentPageSize; i++ {
		seedComment(t, repo, post.ID, author, nil, fmt.Sprintf("filler %d", i))
	}
	seedComment(t, repo, post.ID, author, &parent.ID, "late reply")

	// Page 0 holds the reply but not its parent, so the reply vanishes
	// from the assembled tree.
	thread, hasMore, err := svc.LoadThread(ctx, "", post.ID, 0)
	require.NoError(t, err)
	assert.True(t, hasMore)
	for _, node := range thread {
		assert.Nil(t, node.ParentID)
		assert.Empty(t, node.Replies)
	}
}

func TestCreateComment_Validation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)

	_, err := svc.CreateComment(ctx, "", post.ID, nil, "anonymous")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreateComment(ctx, author, post.ID, nil, "   ")
	assert.True(t, IsValidation(err))

	_, err = svc.CreateComment(ctx, author, post.ID, nil, strings.Repeat("a", 1001))
	assert.True(t, IsValidation(err))

	created, err := svc.CreateComment(ctx, author, post.ID, nil, strings.Repeat("a", 1000))
	require.NoError(t, err)
	assert.Len(t, created.Body, 1000)
}

func TestCreateComment_DepthCap(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)

	parent, err := svc.CreateComment(ctx, author, post.ID, nil, "top")
	require.NoError(t, err)
	reply, err := svc.CreateComment(ctx, author, post.ID, &parent.ID, "reply")
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, author, post.ID, &reply.ID, "too deep")
	assert.ErrorIs(t, err, ErrReplyDepth)
}

func TestUpdateComment_OwnershipEnforced(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	stranger := seedUser(t, repo, "stranger@example.com", "stranger")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)
	comment := seedComment(t, repo, post.ID, author, nil, "original")

	_, err := svc.UpdateComment(ctx, stranger, comment.ID, "hijacked")
	assert.ErrorIs(t, err, ErrNoPermission)

	updated, err := svc.UpdateComment(ctx, author, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)
}

func TestDeleteComment_SoftDeletePreservesThread(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	commenter := seedUser(t, repo, "commenter@example.com", "commenter")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)

	parent := seedComment(t, repo, post.ID, commenter, nil, "soon gone")
	seedComment(t, repo, post.ID, author, &parent.ID, "still here")

	assert.ErrorIs(t, svc.DeleteComment(ctx, author, parent.ID), ErrNoPermission)
	require.NoError(t, svc.DeleteComment(ctx, commenter, parent.ID))

	thread, _, err := svc.LoadThread(ctx, "", post.ID, 0)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.True(t, thread[0].Deleted)
	assert.Empty(t, thread[0].Body)
	require.Len(t, thread[0].Replies, 1)

	// A deleted comment stays addressable: replying to it still works.
	_, err = svc.CreateComment(ctx, author, post.ID, &parent.ID, "late reply")
	require.NoError(t, err)
}

func TestToggleCommentLike_RoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	viewer := seedUser(t, repo, "viewer@example.com", "viewer")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)
	comment := seedComment(t, repo, post.ID, author, nil, "likeable")

	state, err := svc.ToggleCommentLike(ctx, viewer, comment.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Count)

	state, err = svc.ToggleCommentLike(ctx, viewer, comment.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.Count)
}

func TestToggleCommentLike_RequiresAuth(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	post := seedPost(t, repo, author, "Discussed", "discussed", true)
	comment := seedComment(t, repo, post.ID, author, nil, "likeable")

	_, err := svc.ToggleCommentLike(ctx, "", comment.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	counts, err := repo.CommentLikeCounts(ctx, []string{comment.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[comment.ID])
}
