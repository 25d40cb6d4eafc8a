package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/realorfakerf/myblog/internal/repository"
)

const (
	titleMinLen = 2
	bodyMinLen  = 10
	maxTags     = 5
)

type PostInput struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags"`
	Public   bool     `json:"public"`
	CoverURL string   `json:"cover_url"`
}

func validatePostInput(in PostInput) error {
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < titleMinLen {
		return validationf("title must be at least %d characters", titleMinLen)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Body)) < bodyMinLen {
		return validationf("body must be at least %d characters", bodyMinLen)
	}
	if len(in.Tags) > maxTags {
		return validationf("at most %d tags are allowed", maxTags)
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return validationf("tags cannot be empty")
		}
	}
	return nil
}

// slugify lowers the title and collapses runs of non-alphanumerics into
// single dashes.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (svc *Service) CreatePost(ctx context.Context, viewerID string, in PostInput) (*PostSummary, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	post := &repository.Post{
		AuthorID: viewerID,
		Title:    strings.TrimSpace(in.Title),
		Body:     in.Body,
		Slug:     slugify(in.Title),
		Tags:     in.Tags,
		Public:   in.Public,
	}
	if in.CoverURL != "" {
		post.CoverURL = &in.CoverURL
	}
	if err := svc.repo.CreatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("a post with this title already exists")
		}
		return nil, err
	}

	summaries, err := svc.summarize(ctx, viewerID, []*repository.Post{post})
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

// GetPost returns a single post with author and counts. Private posts are
// visible to their author only; everyone else gets not-found. Each visible
// read bumps the view counter.
func (svc *Service) GetPost(ctx context.Context, viewerID, id string) (*PostSummary, error) {
	post, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Public && post.AuthorID != viewerID {
		return nil, repository.ErrNotFound
	}

	if err := svc.repo.IncrementViews(ctx, id); err != nil {
		log.Printf("[POSTS] view counter for %s: %v", id, err)
	} else {
		post.Views++
	}

	summaries, err := svc.summarize(ctx, viewerID, []*repository.Post{post})
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

func (svc *Service) UpdatePost(ctx context.Context, viewerID, id string, in PostInput) (*PostSummary, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	current, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != viewerID {
		return nil, ErrNoPermission
	}

	post := &repository.Post{
		ID:       id,
		AuthorID: viewerID,
		Title:    strings.TrimSpace(in.Title),
		Body:     in.Body,
		Slug:     current.Slug,
		Tags:     in.Tags,
		Public:   in.Public,
	}
	if in.CoverURL != "" {
		post.CoverURL = &in.CoverURL
	}
	// The repository re-applies the author filter.
	if err := svc.repo.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}

	summaries, err := svc.summarize(ctx, viewerID, []*repository.Post{post})
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

func (svc *Service) DeletePost(ctx context.Context, viewerID, id string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	if err := svc.repo.DeletePost(ctx, id, viewerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPermission
		}
		return err
	}
	return nil
}

// LikeState is the authoritative like state read back after a toggle.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// TogglePostLike likes the post if the viewer hasn't, unlikes otherwise.
// A duplicate insert lost to a concurrent toggle surfaces as ErrDuplicate.
// The returned state is re-read from the store rather than patched.
func (svc *Service) TogglePostLike(ctx context.Context, viewerID, postID string) (*LikeState, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := svc.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := svc.repo.PostsLikedBy(ctx, []string{postID}, viewerID)
	if err != nil {
		return nil, err
	}
	if liked[postID] {
		err = svc.repo.RemovePostLike(ctx, postID, viewerID)
	} else {
		err = svc.repo.AddPostLike(ctx, postID, viewerID)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return svc.postLikeState(ctx, viewerID, postID)
}

func (svc *Service) postLikeState(ctx context.Context, viewerID, postID string) (*LikeState, error) {
	counts, err := svc.repo.PostLikeCounts(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	liked, err := svc.repo.PostsLikedBy(ctx, []string{postID}, viewerID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked[postID], Count: counts[postID]}, nil
}

// SearchPosts matches public posts by title or body and records the term
// in the viewer's recent-search history.
func (svc *Service) SearchPosts(ctx context.Context, viewerID, query string, page int) ([]*PostSummary, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*PostSummary{}, false, nil
	}
	if page < 0 {
		page = 0
	}

	if viewerID != "" {
		if err := svc.repo.RecordSearch(ctx, viewerID, query); err != nil {
			log.Printf("[SEARCH] recording term: %v", err)
		}
	}

	posts, err := svc.repo.SearchPublicPosts(ctx, query, FeedPageSize, page*FeedPageSize)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(posts) == FeedPageSize

	summaries, err := svc.summarize(ctx, viewerID, posts)
	return summaries, hasMore, err
}

// RecentSearches returns the viewer's capped, most-recent-first term list.
func (svc *Service) RecentSearches(ctx context.Context, viewerID string) ([]string, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	return svc.repo.RecentSearches(ctx, viewerID)
}
