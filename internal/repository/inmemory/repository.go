package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/realorfakerf/myblog/internal/repository"
)

// Repository keeps everything in mutex-guarded maps. It backs the test
// suite and the -storage in-memory development mode.
type Repository struct {
	mu           sync.RWMutex
	users        map[string]*repository.User
	usersByEmail map[string]string
	profiles     map[string]*repository.Profile
	posts        map[string]*repository.Post
	slugs        map[string]string
	comments     map[string]*repository.Comment
	postLikes    map[string]map[string]struct{}
	commentLikes map[string]map[string]struct{}
	sessions     map[string]*repository.Session
	searches     map[string][]string
}

func New() *Repository {
	return &Repository{
		users:        make(map[string]*repository.User),
		usersByEmail: make(map[string]string),
		profiles:     make(map[string]*repository.Profile),
		posts:        make(map[string]*repository.Post),
		slugs:        make(map[string]string),
		comments:     make(map[string]*repository.Comment),
		postLikes:    make(map[string]map[string]struct{}),
		commentLikes: make(map[string]map[string]struct{}),
		sessions:     make(map[string]*repository.Session),
		searches:     make(map[string][]string),
	}
}

// === Users ===

func (r *Repository) CreateUser(ctx context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usersByEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	clone := *user
	r.users[user.ID] = &clone
	r.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.RLock()
	id, ok := r.usersByEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetUser(ctx, id)
}

// === Profiles ===

func (r *Repository) CreateProfile(ctx context.Context, profile *repository.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, id string) (*repository.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (r *Repository) GetProfiles(ctx context.Context, ids []string) (map[string]*repository.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*repository.Profile, len(ids))
	for _, id := range ids {
		if profile, ok := r.profiles[id]; ok {
			clone := *profile
			result[id] = &clone
		}
	}
	return result, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *repository.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.profiles[profile.ID]
	if !ok {
		return repository.ErrNotFound
	}
	profile.CreatedAt = current.CreatedAt
	profile.UpdatedAt = time.Now().UTC()
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

// === Posts ===

func (r *Repository) CreatePost(ctx context.Context, post *repository.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.slugs[post.Slug]; taken {
		return repository.ErrDuplicate
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	clone := *post
	clone.Tags = append([]string(nil), post.Tags...)
	r.posts[post.ID] = &clone
	r.slugs[post.Slug] = post.ID
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id string) (*repository.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePost(post), nil
}

func (r *Repository) GetPublicPosts(ctx context.Context, limit, offset int) ([]*repository.Post, error) {
	return r.selectPosts(func(p *repository.Post) bool { return p.Public }, limit, offset), nil
}

func (r *Repository) GetPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*repository.Post, error) {
	return r.selectPosts(func(p *repository.Post) bool { return p.AuthorID == authorID }, limit, offset), nil
}

func (r *Repository) SearchPublicPosts(ctx context.Context, query string, limit, offset int) ([]*repository.Post, error) {
	q := strings.ToLower(query)
	return r.selectPosts(func(p *repository.Post) bool {
		return p.Public &&
			(strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Body), q))
	}, limit, offset), nil
}

func (r *Repository) selectPosts(match func(*repository.Post) bool, limit, offset int) []*repository.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*repository.Post{}
	for _, post := range r.posts {
		if match(post) {
			matched = append(matched, post)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginate(matched, limit, offset)
	result := make([]*repository.Post, len(page))
	for i, post := range page {
		result[i] = clonePost(post)
	}
	return result
}

func (r *Repository) UpdatePost(ctx context.Context, post *repository.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.posts[post.ID]
	if !ok || current.AuthorID != post.AuthorID {
		return repository.ErrNotFound
	}
	if post.Slug != current.Slug {
		if _, taken := r.slugs[post.Slug]; taken {
			return repository.ErrDuplicate
		}
		delete(r.slugs, current.Slug)
		r.slugs[post.Slug] = post.ID
	}
	post.Views = current.Views
	post.CreatedAt = current.CreatedAt
	post.UpdatedAt = time.Now().UTC()
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.posts[id]
	if !ok || current.AuthorID != authorID {
		return repository.ErrNotFound
	}
	delete(r.slugs, current.Slug)
	delete(r.posts, id)
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	post.Views++
	return nil
}

// === Comments ===

func (r *Repository) CreateComment(ctx context.Context, comment *repository.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[comment.PostID]; !ok {
		return repository.ErrNotFound
	}
	if comment.ParentID != nil {
		parent, ok := r.comments[*comment.ParentID]
		if !ok || parent.PostID != comment.PostID {
			return repository.ErrNotFound
		}
		if parent.ParentID != nil {
			return repository.ErrDepth
		}
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (*repository.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (r *Repository) GetComments(ctx context.Context, postID string, limit, offset int) ([]*repository.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*repository.Comment{}
	for _, comment := range r.comments {
		if comment.PostID == postID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := paginate(matched, limit, offset)
	result := make([]*repository.Comment, len(page))
	for i, comment := range page {
		clone := *comment
		result[i] = &clone
	}
	return result, nil
}

func (r *Repository) UpdateComment(ctx context.Context, id, authorID, body string) (*repository.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok || comment.AuthorID != authorID || comment.Deleted {
		return nil, repository.ErrNotFound
	}
	comment.Body = body
	comment.UpdatedAt = time.Now().UTC()
	clone := *comment
	return &clone, nil
}

func (r *Repository) SoftDeleteComment(ctx context.Context, id, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, ok := r.comments[id]
	if !ok || comment.AuthorID != authorID || comment.Deleted {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	comment.Deleted = true
	comment.DeletedAt = &now
	comment.UpdatedAt = now
	return nil
}

func (r *Repository) CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]int, len(postIDs))
	wanted := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	for _, comment := range r.comments {
		if comment.Deleted {
			continue
		}
		if _, ok := wanted[comment.PostID]; ok {
			result[comment.PostID]++
		}
	}
	return result, nil
}

// === Likes ===

func (r *Repository) AddPostLike(ctx context.Context, postID, userID string) error {
	return r.addLike(r.postLikes, postID, userID)
}

func (r *Repository) RemovePostLike(ctx context.Context, postID, userID string) error {
	return r.removeLike(r.postLikes, postID, userID)
}

func (r *Repository) PostLikeCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return r.likeCounts(r.postLikes, postIDs), nil
}

func (r *Repository) PostsLikedBy(ctx context.Context, postIDs []string, userID string) (map[string]bool, error) {
	return r.likedBy(r.postLikes, postIDs, userID), nil
}

func (r *Repository) AddCommentLike(ctx context.Context, commentID, userID string) error {
	return r.addLike(r.commentLikes, commentID, userID)
}

func (r *Repository) RemoveCommentLike(ctx context.Context, commentID, userID string) error {
	return r.removeLike(r.commentLikes, commentID, userID)
}

func (r *Repository) CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int, error) {
	return r.likeCounts(r.commentLikes, commentIDs), nil
}

func (r *Repository) CommentsLikedBy(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	return r.likedBy(r.commentLikes, commentIDs, userID), nil
}

func (r *Repository) addLike(likes map[string]map[string]struct{}, subjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := likes[subjectID]
	if !ok {
		users = make(map[string]struct{})
		likes[subjectID] = users
	}
	if _, liked := users[userID]; liked {
		return repository.ErrDuplicate
	}
	users[userID] = struct{}{}
	return nil
}

func (r *Repository) removeLike(likes map[string]map[string]struct{}, subjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := likes[subjectID]
	if _, liked := users[userID]; !liked {
		return repository.ErrNotFound
	}
	delete(users, userID)
	return nil
}

func (r *Repository) likeCounts(likes map[string]map[string]struct{}, ids []string) map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]int, len(ids))
	for _, id := range ids {
		if n := len(likes[id]); n > 0 {
			result[id] = n
		}
	}
	return result
}

func (r *Repository) likedBy(likes map[string]map[string]struct{}, ids []string, userID string) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, liked := likes[id][userID]; liked {
			result[id] = true
		}
	}
	return result
}

// === Sessions ===

func (r *Repository) CreateSession(ctx context.Context, session *repository.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.CreatedAt = time.Now().UTC()
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *Repository) GetSession(ctx context.Context, token string) (*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}

// === Search history ===

func (r *Repository) RecordSearch(ctx context.Context, userID, term string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	terms := r.searches[userID]
	next := []string{term}
	for _, t := range terms {
		if t != term && len(next) < repository.SearchHistoryLimit {
			next = append(next, t)
		}
	}
	r.searches[userID] = next
	return nil
}

func (r *Repository) RecentSearches(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.searches[userID]...), nil
}

func clonePost(post *repository.Post) *repository.Post {
	clone := *post
	clone.Tags = append([]string(nil), post.Tags...)
	return &clone
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
