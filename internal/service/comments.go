package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/realorfakerf/myblog/internal/repository"
)

const commentMaxLen = 1000

// CommentNode is a comment merged with its author, like state, and one
// level of replies. Soft-deleted comments keep their place in the thread
// but never expose their body.
type CommentNode struct {
	ID        string         `json:"id"`
	PostID    string         `json:"post_id"`
	ParentID  *string        `json:"parent_id,omitempty"`
	Author    ProfileView    `json:"author"`
	Body      string         `json:"body"`
	Deleted   bool           `json:"deleted"`
	LikeCount int            `json:"like_count"`
	Liked     bool           `json:"liked"`
	Replies   []*CommentNode `json:"replies"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// LoadThread fetches one page of a post's comments and assembles the
// two-level tree: rows without a parent become top-level nodes, the rest
// are grouped by parent and attached as replies. A reply whose parent is
// not in the same page is dropped from it; the parent's own page shows it.
func (svc *Service) LoadThread(ctx context.Context, viewerID, postID string, page int) ([]*CommentNode, bool, error) {
	if page < 0 {
		page = 0
	}
	rows, err := svc.repo.GetComments(ctx, postID, CommentPageSize, page*CommentPageSize)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(rows) == CommentPageSize

	nodes, err := svc.buildNodes(ctx, viewerID, rows)
	if err != nil {
		return nil, false, err
	}

	byID := make(map[string]*CommentNode, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}
	thread := []*CommentNode{}
	for _, node := range nodes {
		if node.ParentID == nil {
			thread = append(thread, node)
			continue
		}
		if parent, ok := byID[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return thread, hasMore, nil
}

// buildNodes batch-resolves authors, like counts, and the viewer's liked
// flags for a page of comment rows, concurrently.
func (svc *Service) buildNodes(ctx context.Context, viewerID string, rows []*repository.Comment) ([]*CommentNode, error) {
	if len(rows) == 0 {
		return []*CommentNode{}, nil
	}

	commentIDs := make([]string, 0, len(rows))
	authorSet := make(map[string]struct{}, len(rows))
	authorIDs := []string{}
	for _, row := range rows {
		commentIDs = append(commentIDs, row.ID)
		if _, seen := authorSet[row.AuthorID]; !seen {
			authorSet[row.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, row.AuthorID)
		}
	}

	var (
		profiles   map[string]*repository.Profile
		likeCounts map[string]int
		liked      map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = svc.repo.GetProfiles(gctx, authorIDs)
		return err
	})
	g.Go(func() (err error) {
		likeCounts, err = svc.repo.CommentLikeCounts(gctx, commentIDs)
		return err
	})
	if viewerID != "" {
		g.Go(func() (err error) {
			liked, err = svc.repo.CommentsLikedBy(gctx, commentIDs, viewerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nodes := make([]*CommentNode, 0, len(rows))
	for _, row := range rows {
		node := &CommentNode{
			ID:        row.ID,
			PostID:    row.PostID,
			ParentID:  row.ParentID,
			Body:      row.Body,
			Deleted:   row.Deleted,
			LikeCount: likeCounts[row.ID],
			Liked:     liked[row.ID],
			Replies:   []*CommentNode{},
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if row.Deleted {
			node.Body = ""
		}
		if profile, ok := profiles[row.AuthorID]; ok {
			node.Author = profileView(profile, viewerID)
		} else {
			node.Author = unknownProfile(row.AuthorID)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func validateCommentBody(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return validationf("comment cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > commentMaxLen {
		return validationf("comment cannot exceed %d characters", commentMaxLen)
	}
	return nil
}

// CreateComment adds a top-level comment, or a reply when parentID is
// set. The parent must itself be top-level; the store re-checks the depth
// cap and a violation surfaces as ErrReplyDepth.
func (svc *Service) CreateComment(ctx context.Context, viewerID, postID string, parentID *string, body string) (*CommentNode, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateCommentBody(body); err != nil {
		return nil, err
	}

	comment := &repository.Comment{
		PostID:   postID,
		AuthorID: viewerID,
		ParentID: parentID,
		Body:     strings.TrimSpace(body),
	}
	if err := svc.repo.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrDepth) {
			return nil, ErrReplyDepth
		}
		return nil, err
	}

	nodes, err := svc.buildNodes(ctx, viewerID, []*repository.Comment{comment})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// UpdateComment edits the body. Ownership is checked here as a guard and
// again by the repository's row filter.
func (svc *Service) UpdateComment(ctx context.Context, viewerID, id, body string) (*CommentNode, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateCommentBody(body); err != nil {
		return nil, err
	}

	current, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != viewerID {
		return nil, ErrNoPermission
	}

	updated, err := svc.repo.UpdateComment(ctx, id, viewerID, strings.TrimSpace(body))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}

	nodes, err := svc.buildNodes(ctx, viewerID, []*repository.Comment{updated})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// DeleteComment soft-deletes: the row stays so reply threads keep their
// shape, but the body is gone from every subsequent read.
func (svc *Service) DeleteComment(ctx context.Context, viewerID, id string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}

	current, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if current.AuthorID != viewerID {
		return ErrNoPermission
	}

	if err := svc.repo.SoftDeleteComment(ctx, id, viewerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPermission
		}
		return err
	}
	return nil
}

// ToggleCommentLike mirrors TogglePostLike for comments.
func (svc *Service) ToggleCommentLike(ctx context.Context, viewerID, commentID string) (*LikeState, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := svc.repo.GetComment(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := svc.repo.CommentsLikedBy(ctx, []string{commentID}, viewerID)
	if err != nil {
		return nil, err
	}
	if liked[commentID] {
		err = svc.repo.RemoveCommentLike(ctx, commentID, viewerID)
	} else {
		err = svc.repo.AddCommentLike(ctx, commentID, viewerID)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	counts, err := svc.repo.CommentLikeCounts(ctx, []string{commentID})
	if err != nil {
		return nil, err
	}
	liked, err = svc.repo.CommentsLikedBy(ctx, []string{commentID}, viewerID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked[commentID], Count: counts[commentID]}, nil
}
