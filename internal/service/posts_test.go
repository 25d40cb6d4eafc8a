package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realorfakerf/myblog/internal/repository"
)

func TestCreatePost_Validation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	// Two-character title and ten-character body are the minimums.
	created, err := svc.CreatePost(ctx, author, PostInput{Title: "Hi", Body: "exactly10!", Public: true})
	require.NoError(t, err)
	assert.Equal(t, "Hi", created.Title)

	_, err = svc.CreatePost(ctx, author, PostInput{Title: "H", Body: "exactly10!", Public: true})
	assert.True(t, IsValidation(err))

	_, err = svc.CreatePost(ctx, author, PostInput{Title: "Ok", Body: "too short", Public: true})
	assert.True(t, IsValidation(err))

	_, err = svc.CreatePost(ctx, author, PostInput{
		Title: "Tagged", Body: "long enough body",
		Tags: []string{"a", "b", "c", "d", "e", "f"},
	})
	assert.True(t, IsValidation(err))

	// Validation failures never reach the store.
	posts, err := repo.GetPublicPosts(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestCreatePost_DuplicateTitleSlug(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")

	_, err := svc.CreatePost(ctx, author, PostInput{Title: "Same Title", Body: "long enough body", Public: true})
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, author, PostInput{Title: "Same Title", Body: "another long body", Public: true})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World!"))
	assert.Equal(t, "a-b-c", slugify("  a  b   c "))
	assert.Equal(t, "2-posts", slugify("2 Posts"))
}

func TestGetPost_VisibilityAndViews(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	stranger := seedUser(t, repo, "stranger@example.com", "stranger")

	private := seedPost(t, repo, author, "Private Note", "private-note", false)

	_, err := svc.GetPost(ctx, stranger, private.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	seen, err := svc.GetPost(ctx, author, private.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, seen.Views)

	seen, err = svc.GetPost(ctx, author, private.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, seen.Views)
}

func TestUpdatePost_KeepsViewsAndCreatedAt(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	post := seedPost(t, repo, author, "Original", "original", true)

	viewed, err := svc.GetPost(ctx, author, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, viewed.Views)

	// The store owns views and the creation time; the update response
	// must carry them back, not zero them out.
	updated, err := svc.UpdatePost(ctx, author, post.ID, PostInput{
		Title: "Original",
		Body:  "Body long enough for anything, revised.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Views)
	assert.False(t, updated.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
}

func TestUpdatePost_OwnershipEnforced(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	stranger := seedUser(t, repo, "stranger@example.com", "stranger")

	post := seedPost(t, repo, author, "Original", "original", true)

	_, err := svc.UpdatePost(ctx, stranger, post.ID, PostInput{Title: "Taken", Body: "long enough body", Public: true})
	assert.ErrorIs(t, err, ErrNoPermission)

	assert.ErrorIs(t, svc.DeletePost(ctx, stranger, post.ID), ErrNoPermission)

	updated, err := svc.UpdatePost(ctx, author, post.ID, PostInput{Title: "Renamed", Body: "long enough body", Public: false})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, updated.Public)
}

func TestTogglePostLike_RoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	viewer := seedUser(t, repo, "viewer@example.com", "viewer")

	post := seedPost(t, repo, author, "Likeable", "likeable", true)

	state, err := svc.TogglePostLike(ctx, viewer, post.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Count)

	// Toggling twice restores the original state and count.
	state, err = svc.TogglePostLike(ctx, viewer, post.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.Count)
}

func TestTogglePostLike_RequiresAuth(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	post := seedPost(t, repo, author, "Likeable", "likeable", true)

	_, err := svc.TogglePostLike(ctx, "", post.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// No like was recorded.
	counts, err := repo.PostLikeCounts(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[post.ID])
}

func TestSearchPosts_RecordsHistory(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", "author")
	viewer := seedUser(t, repo, "viewer@example.com", "viewer")

	seedPost(t, repo, author, "Gopher News", "gopher-news", true)
	seedPost(t, repo, author, "Unrelated", "unrelated", true)

	found, hasMore, err := svc.SearchPosts(ctx, viewer, "gopher", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.False(t, hasMore)
	assert.Equal(t, "Gopher News", found[0].Title)

	for i := 0; i < repository.SearchHistoryLimit+1; i++ {
		_, _, err := svc.SearchPosts(ctx, viewer, fmt.Sprintf("query %d", i), 0)
		require.NoError(t, err)
	}

	terms, err := svc.RecentSearches(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, terms, repository.SearchHistoryLimit)
	assert.Equal(t, fmt.Sprintf("query %d", repository.SearchHistoryLimit), terms[0])
	assert.NotContains(t, terms, "gopher")
}

func TestSearchPosts_BlankQuery(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	viewer := seedUser(t, repo, "viewer@example.com", "viewer")

	found, hasMore, err := svc.SearchPosts(ctx, viewer, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.False(t, hasMore)

	terms, err := svc.RecentSearches(ctx, viewer)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestRecentSearches_RequiresAuth(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecentSearches(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePost(context.Background(), "", PostInput{
		Title: strings.Repeat("a", 5), Body: strings.Repeat("b", 20),
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
