package service

import (
	"context"
	"sort"
)

// LoadFeedPage returns one page of public posts merged with author
// profiles and derived counts. The second result reports whether another
// page may exist: a short page means the feed is exhausted.
//
// Popularity is computed over the fetched page only (likes+comments
// descending), not as a storage order clause.
func (svc *Service) LoadFeedPage(ctx context.Context, viewerID string, page int, order SortOrder) ([]*PostSummary, bool, error) {
	if page < 0 {
		page = 0
	}
	posts, err := svc.repo.GetPublicPosts(ctx, FeedPageSize, page*FeedPageSize)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(posts) == FeedPageSize

	summaries, err := svc.summarize(ctx, viewerID, posts)
	if err != nil {
		return nil, false, err
	}

	if order == SortPopular {
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].LikeCount+summaries[i].CommentCount >
				summaries[j].LikeCount+summaries[j].CommentCount
		})
	}
	return summaries, hasMore, nil
}

// LoadAuthorPage returns one page of a single author's posts, including
// private ones when the viewer is the author.
func (svc *Service) LoadAuthorPage(ctx context.Context, viewerID, authorID string, page int) ([]*PostSummary, bool, error) {
	if page < 0 {
		page = 0
	}
	posts, err := svc.repo.GetPostsByAuthor(ctx, authorID, FeedPageSize, page*FeedPageSize)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(posts) == FeedPageSize
	if viewerID != authorID {
		visible := posts[:0]
		for _, post := range posts {
			if post.Public {
				visible = append(visible, post)
			}
		}
		posts = visible
	}

	summaries, err := svc.summarize(ctx, viewerID, posts)
	return summaries, hasMore, err
}
