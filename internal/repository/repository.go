package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a row does not exist or an ownership
	// filter matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on unique-constraint violations (slug,
	// email, like pairs).
	ErrDuplicate = errors.New("already exists")
	// ErrDepth is returned when a comment's parent is itself a reply.
	ErrDepth = errors.New("parent comment is not top-level")
	// ErrBucketNotFound is returned by object stores when the configured
	// bucket is missing.
	ErrBucketNotFound = errors.New("storage bucket not found")
)

// SearchHistoryLimit caps the number of recent search terms kept per user.
const SearchHistoryLimit = 5

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	CreateProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetProfiles(ctx context.Context, ids []string) (map[string]*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error

	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	GetPublicPosts(ctx context.Context, limit, offset int) ([]*Post, error)
	GetPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*Post, error)
	SearchPublicPosts(ctx context.Context, query string, limit, offset int) ([]*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id, authorID string) error
	IncrementViews(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id string) (*Comment, error)
	GetComments(ctx context.Context, postID string, limit, offset int) ([]*Comment, error)
	UpdateComment(ctx context.Context, id, authorID, body string) (*Comment, error)
	SoftDeleteComment(ctx context.Context, id, authorID string) error
	CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error)

	AddPostLike(ctx context.Context, postID, userID string) error
	RemovePostLike(ctx context.Context, postID, userID string) error
	PostLikeCounts(ctx context.Context, postIDs []string) (map[string]int, error)
	PostsLikedBy(ctx context.Context, postIDs []string, userID string) (map[string]bool, error)

	AddCommentLike(ctx context.Context, commentID, userID string) error
	RemoveCommentLike(ctx context.Context, commentID, userID string) error
	CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int, error)
	CommentsLikedBy(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error)

	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error

	RecordSearch(ctx context.Context, userID, term string) error
	RecentSearches(ctx context.Context, userID string) ([]string, error)
}

// ObjectStore is the media half of the backend: a bucket of uploaded
// images addressed by object name and exposed through public URLs.
type ObjectStore interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}
