package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/realorfakerf/myblog/internal/repository"
	"github.com/realorfakerf/myblog/internal/repository/inmemory"
)

func newTestService(t *testing.T) (*Service, *inmemory.Repository) {
	t.Helper()
	repo := inmemory.New()
	return New(repo), repo
}

func seedUser(t *testing.T, repo *inmemory.Repository, email, nickname string) string {
	t.Helper()
	ctx := context.Background()
	user := &repository.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NoError(t, repo.CreateProfile(ctx, &repository.Profile{
		ID: user.ID, Email: email, Nickname: nickname,
	}))
	return user.ID
}

func seedPost(t *testing.T, repo *inmemory.Repository, authorID, title, slug string, public bool) *repository.Post {
	t.Helper()
	post := &repository.Post{
		AuthorID: authorID,
		Title:    title,
		Body:     "Body long enough for anything.",
		Slug:     slug,
		Public:   public,
	}
	require.NoError(t, repo.CreatePost(context.Background(), post))
	// Keep creation timestamps strictly ordered.
	time.Sleep(time.Millisecond)
	return post
}

func seedComment(t *testing.T, repo *inmemory.Repository, postID, authorID string, parentID *string, body string) *repository.Comment {
	t.Helper()
	comment := &repository.Comment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: parentID,
		Body:     body,
	}
	require.NoError(t, repo.CreateComment(context.Background(), comment))
	time.Sleep(time.Millisecond)
	return comment
}
