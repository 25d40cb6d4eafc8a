package inmemory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realorfakerf/myblog/internal/repository"
)

func newTestRepo(t *testing.T) (*Repository, *repository.User, *repository.Post) {
	t.Helper()
	repo := New()
	ctx := context.Background()

	user := &repository.User{Email: "author@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NoError(t, repo.CreateProfile(ctx, &repository.Profile{
		ID: user.ID, Email: user.Email, Nickname: "author",
	}))

	post := &repository.Post{
		AuthorID: user.ID,
		Title:    "Test Post",
		Body:     "Body long enough.",
		Slug:     "test-post",
		Public:   true,
	}
	require.NoError(t, repo.CreatePost(ctx, post))
	return repo, user, post
}

func TestRepository_CreateAndGetPost(t *testing.T) {
	repo, _, post := newTestRepo(t)
	ctx := context.Background()

	retrieved, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, retrieved.Title)

	_, err = repo.GetPost(ctx, "non-existent-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRepository_CreatePost_DuplicateSlug(t *testing.T) {
	repo, user, _ := newTestRepo(t)
	ctx := context.Background()

	err := repo.CreatePost(ctx, &repository.Post{
		AuthorID: user.ID, Title: "Other", Body: "Body", Slug: "test-post", Public: true,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestRepository_UpdatePost_AuthorFilter(t *testing.T) {
	repo, _, post := newTestRepo(t)
	ctx := context.Background()

	updated := *post
	updated.AuthorID = "someone-else"
	updated.Title = "Hijacked"
	assert.ErrorIs(t, repo.UpdatePost(ctx, &updated), repository.ErrNotFound)

	assert.ErrorIs(t, repo.DeletePost(ctx, post.ID, "someone-else"), repository.ErrNotFound)
}

func TestRepository_IncrementViews(t *testing.T) {
	repo, _, post := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.IncrementViews(ctx, post.ID))
	require.NoError(t, repo.IncrementViews(ctx, post.ID))

	retrieved, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.Views)
}

func TestRepository_CreateComment_DepthCap(t *testing.T) {
	repo, user, post := newTestRepo(t)
	ctx := context.Background()

	parent := &repository.Comment{PostID: post.ID, AuthorID: user.ID, Body: "top"}
	require.NoError(t, repo.CreateComment(ctx, parent))

	reply := &repository.Comment{PostID: post.ID, AuthorID: user.ID, ParentID: &parent.ID, Body: "reply"}
	require.NoError(t, repo.CreateComment(ctx, reply))

	replyToReply := &repository.Comment{PostID: post.ID, AuthorID: user.ID, ParentID: &reply.ID, Body: "too deep"}
	assert.ErrorIs(t, repo.CreateComment(ctx, replyToReply), repository.ErrDepth)
}

func TestRepository_CreateComment_ParentFromOtherPost(t *testing.T) {
	repo, user, post := newTestRepo(t)
	ctx := context.Background()

	other := &repository.Post{AuthorID: user.ID, Title: "Other", Body: "Body", Slug: "other", Public: true}
	require.NoError(t, repo.CreatePost(ctx, other))

	parent := &repository.Comment{PostID: other.ID, AuthorID: user.ID, Body: "elsewhere"}
	require.NoError(t, repo.CreateComment(ctx, parent))

	crossed := &repository.Comment{PostID: post.ID, AuthorID: user.ID, ParentID: &parent.ID, Body: "crossed"}
	assert.ErrorIs(t, repo.CreateComment(ctx, crossed), repository.ErrNotFound)
}

func TestRepository_SoftDeleteComment(t *testing.T) {
	repo, user, post := newTestRepo(t)
	ctx := context.Background()

	comment := &repository.Comment{PostID: post.ID, AuthorID: user.ID, Body: "to delete"}
	require.NoError(t, repo.CreateComment(ctx, comment))

	assert.ErrorIs(t, repo.SoftDeleteComment(ctx, comment.ID, "someone-else"), repository.ErrNotFound)
	require.NoError(t, repo.SoftDeleteComment(ctx, comment.ID, user.ID))

	// The row stays; only the flags change.
	retrieved, err := repo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.Deleted)
	require.NotNil(t, retrieved.DeletedAt)

	// A second delete matches no rows.
	assert.ErrorIs(t, repo.SoftDeleteComment(ctx, comment.ID, user.ID), repository.ErrNotFound)
}

func TestRepository_CommentCounts_ExcludeDeleted(t *testing.T) {
	repo, user, post := newTestRepo(t)
	ctx := context.Background()

	kept := &repository.Comment{PostID: post.ID, AuthorID: user.ID, Body: "kept"}
	require.NoError(t, repo.CreateComment(ctx, kept))
	gone := &repository.Comment{PostID: post.ID, AuthorID: user.ID, Body: "gone"}
	require.NoError(t, repo.CreateComment(ctx, gone))
	require.NoError(t, repo.SoftDeleteComment(ctx, gone.ID, user.ID))

	counts, err := repo.CommentCounts(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[post.ID])
}

func TestRepository_LikePairUnique(t *testing.T) {
	repo, user, post := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddPostLike(ctx, post.ID, user.ID))
	assert.ErrorIs(t, repo.AddPostLike(ctx, post.ID, user.ID), repository.ErrDuplicate)

	counts, err := repo.PostLikeCounts(ctx, []string{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[post.ID])

	require.NoError(t, repo.RemovePostLike(ctx, post.ID, user.ID))
	assert.ErrorIs(t, repo.RemovePostLike(ctx, post.ID, user.ID), repository.ErrNotFound)
}

func TestRepository_PublicPostsPagination(t *testing.T) {
	repo, user, _ := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.CreatePost(ctx, &repository.Post{
			AuthorID: user.ID,
			Title:    fmt.Sprintf("Post %d", i),
			Body:     "Body",
			Slug:     fmt.Sprintf("post-%d", i),
			Public:   i%2 == 0, // 4 public, 3 private
		}))
	}

	// 5 public in total (4 + the seed post).
	page, err := repo.GetPublicPosts(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := repo.GetPublicPosts(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	for _, post := range append(page, rest...) {
		assert.True(t, post.Public)
	}
}

func TestRepository_SearchHistory(t *testing.T) {
	repo, user, _ := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.RecordSearch(ctx, user.ID, fmt.Sprintf("term-%d", i)))
	}

	terms, err := repo.RecentSearches(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, terms, repository.SearchHistoryLimit)
	assert.Equal(t, []string{"term-6", "term-5", "term-4", "term-3", "term-2"}, terms)

	// Re-entering a known term moves it to the front without duplicating.
	require.NoError(t, repo.RecordSearch(ctx, user.ID, "term-4"))
	terms, err = repo.RecentSearches(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"term-4", "term-6", "term-5", "term-3", "term-2"}, terms)
}

func TestRepository_Sessions(t *testing.T) {
	repo, user, _ := newTestRepo(t)
	ctx := context.Background()

	session := &repository.Session{Token: "tok", UserID: user.ID}
	require.NoError(t, repo.CreateSession(ctx, session))

	retrieved, err := repo.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.UserID)

	require.NoError(t, repo.DeleteSession(ctx, "tok"))
	_, err = repo.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
