package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/realorfakerf/myblog/internal/repository"
)

const (
	// FeedPageSize is the number of posts fetched per feed page.
	FeedPageSize = 10
	// CommentPageSize is the number of comment rows fetched per thread page.
	CommentPageSize = 20
)

type SortOrder string

const (
	SortRecent  SortOrder = "recent"
	SortPopular SortOrder = "popular"
)

// Service carries the domain operations: feed aggregation, posts,
// comment threads, profiles, and search.
type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// ProfileView is a profile as shown next to content. Email is populated
// only when the profile allows it or the viewer is the owner.
type ProfileView struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname"`
	Bio          string    `json:"bio"`
	Email        string    `json:"email,omitempty"`
	EmailVisible bool      `json:"email_visible"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// unknownProfile stands in for authors whose profile row is missing.
func unknownProfile(id string) ProfileView {
	return ProfileView{ID: id, Nickname: "unknown"}
}

func profileView(p *repository.Profile, viewerID string) ProfileView {
	view := ProfileView{
		ID:           p.ID,
		Nickname:     p.Nickname,
		Bio:          p.Bio,
		EmailVisible: p.EmailVisible,
		CreatedAt:    p.CreatedAt,
	}
	if p.EmailVisible || p.ID == viewerID {
		view.Email = p.Email
	}
	if p.AvatarURL != nil {
		view.AvatarURL = *p.AvatarURL
	}
	return view
}

// PostSummary is a post merged with its author and derived counts.
type PostSummary struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Body         string      `json:"body"`
	Slug         string      `json:"slug"`
	Tags         []string    `json:"tags"`
	Public       bool        `json:"public"`
	CoverURL     string      `json:"cover_url,omitempty"`
	Views        int         `json:"views"`
	Author       ProfileView `json:"author"`
	LikeCount    int         `json:"like_count"`
	CommentCount int         `json:"comment_count"`
	Liked        bool        `json:"liked"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// summarize resolves author profiles and derived counts for a page of
// posts. The three batched lookups (four with a signed-in viewer) are
// independent and run concurrently.
func (svc *Service) summarize(ctx context.Context, viewerID string, posts []*repository.Post) ([]*PostSummary, error) {
	if len(posts) == 0 {
		return []*PostSummary{}, nil
	}

	postIDs := make([]string, 0, len(posts))
	authorSet := make(map[string]struct{}, len(posts))
	authorIDs := []string{}
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
		if _, seen := authorSet[post.AuthorID]; !seen {
			authorSet[post.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}

	var (
		profiles      map[string]*repository.Profile
		likeCounts    map[string]int
		commentCounts map[string]int
		liked         map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = svc.repo.GetProfiles(gctx, authorIDs)
		return err
	})
	g.Go(func() (err error) {
		likeCounts, err = svc.repo.PostLikeCounts(gctx, postIDs)
		return err
	})
	g.Go(func() (err error) {
		commentCounts, err = svc.repo.CommentCounts(gctx, postIDs)
		return err
	})
	if viewerID != "" {
		g.Go(func() (err error) {
			liked, err = svc.repo.PostsLikedBy(gctx, postIDs, viewerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make([]*PostSummary, 0, len(posts))
	for _, post := range posts {
		summary := &PostSummary{
			ID:           post.ID,
			Title:        post.Title,
			Body:         post.Body,
			Slug:         post.Slug,
			Tags:         post.Tags,
			Public:       post.Public,
			Views:        post.Views,
			LikeCount:    likeCounts[post.ID],
			CommentCount: commentCounts[post.ID],
			Liked:        liked[post.ID],
			CreatedAt:    post.CreatedAt,
			UpdatedAt:    post.UpdatedAt,
		}
		if post.CoverURL != nil {
			summary.CoverURL = *post.CoverURL
		}
		if profile, ok := profiles[post.AuthorID]; ok {
			summary.Author = profileView(profile, viewerID)
		} else {
			summary.Author = unknownProfile(post.AuthorID)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
