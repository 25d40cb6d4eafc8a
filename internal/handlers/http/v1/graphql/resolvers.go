package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/realorfakerf/myblog/internal/service"
)

type feedPage struct {
	Items   []*service.PostSummary
	HasMore bool
}

type threadPage struct {
	Items   []*service.CommentNode
	HasMore bool
}

var postInputType = graphql.NewInputObject(
	graphql.InputObjectConfig{
		Name: "PostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"body":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"tags":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
			"public":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean, DefaultValue: true},
			"coverUrl": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	},
)

var profileInputType = graphql.NewInputObject(
	graphql.InputObjectConfig{
		Name: "ProfileInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"nickname":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"bio":          &graphql.InputObjectFieldConfig{Type: graphql.String, DefaultValue: ""},
			"emailVisible": &graphql.InputObjectFieldConfig{Type: graphql.Boolean, DefaultValue: false},
			"avatarUrl":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	},
)

func postInputFromArgs(input map[string]interface{}) service.PostInput {
	in := service.PostInput{
		Title: input["title"].(string),
		Body:  input["body"].(string),
	}
	if public, ok := input["public"].(bool); ok {
		in.Public = public
	}
	if coverURL, ok := input["coverUrl"].(string); ok {
		in.CoverURL = coverURL
	}
	if tags, ok := input["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				in.Tags = append(in.Tags, s)
			}
		}
	}
	return in
}

// === Queries ===

func feedQuery(gh *gqlHandler, feedPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: feedPageType,
		Args: graphql.FieldConfigArgument{
			"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			"sort": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(service.SortRecent)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			items, hasMore, err := gh.svc.LoadFeedPage(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["page"].(int),
				service.SortOrder(p.Args["sort"].(string)),
			)
			if err != nil {
				return nil, err
			}
			return feedPage{Items: items, HasMore: hasMore}, nil
		},
	}
}

func postQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.GetPost(p.Context, service.ViewerID(p.Context), p.Args["id"].(string))
		},
	}
}

func authorPostsQuery(gh *gqlHandler, feedPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: feedPageType,
		Args: graphql.FieldConfigArgument{
			"authorId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			items, hasMore, err := gh.svc.LoadAuthorPage(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["authorId"].(string),
				p.Args["page"].(int),
			)
			if err != nil {
				return nil, err
			}
			return feedPage{Items: items, HasMore: hasMore}, nil
		},
	}
}

func commentsQuery(gh *gqlHandler, threadPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: threadPageType,
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			items, hasMore, err := gh.svc.LoadThread(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["postId"].(string),
				p.Args["page"].(int),
			)
			if err != nil {
				return nil, err
			}
			return threadPage{Items: items, HasMore: hasMore}, nil
		},
	}
}

func profileQuery(gh *gqlHandler, profileType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: profileType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.GetProfile(p.Context, service.ViewerID(p.Context), p.Args["id"].(string))
		},
	}
}

func searchPostsQuery(gh *gqlHandler, feedPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: feedPageType,
		Args: graphql.FieldConfigArgument{
			"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			items, hasMore, err := gh.svc.SearchPosts(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["query"].(string),
				p.Args["page"].(int),
			)
			if err != nil {
				return nil, err
			}
			return feedPage{Items: items, HasMore: hasMore}, nil
		},
	}
}

func recentSearchesQuery(gh *gqlHandler) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.String),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.RecentSearches(p.Context, service.ViewerID(p.Context))
		},
	}
}

// === Mutations ===

func createPostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			return gh.svc.CreatePost(p.Context, service.ViewerID(p.Context), postInputFromArgs(input))
		},
	}
}

func updatePostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			return gh.svc.UpdatePost(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["id"].(string),
				postInputFromArgs(input),
			)
		},
	}
}

func deletePostMutation(gh *gqlHandler) *graphql.Field {
	return &graphql.Field{
		Type: graphql.Boolean,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if err := gh.svc.DeletePost(p.Context, service.ViewerID(p.Context), p.Args["id"].(string)); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func createCommentMutation(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: commentType,
		Args: graphql.FieldConfigArgument{
			"postId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
			"body":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			var parentID *string
			if raw, ok := p.Args["parentId"].(string); ok {
				parentID = &raw
			}
			return gh.svc.CreateComment(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["postId"].(string),
				parentID,
				p.Args["body"].(string),
			)
		},
	}
}

func updateCommentMutation(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: commentType,
		Args: graphql.FieldConfigArgument{
			"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"body": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.UpdateComment(
				p.Context,
				service.ViewerID(p.Context),
				p.Args["id"].(string),
				p.Args["body"].(string),
			)
		},
	}
}

func deleteCommentMutation(gh *gqlHandler) *graphql.Field {
	return &graphql.Field{
		Type: graphql.Boolean,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if err := gh.svc.DeleteComment(p.Context, service.ViewerID(p.Context), p.Args["id"].(string)); err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

func togglePostLikeMutation(gh *gqlHandler, likeStateType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: likeStateType,
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.TogglePostLike(p.Context, service.ViewerID(p.Context), p.Args["postId"].(string))
		},
	}
}

func toggleCommentLikeMutation(gh *gqlHandler, likeStateType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: likeStateType,
		Args: graphql.FieldConfigArgument{
			"commentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.ToggleCommentLike(p.Context, service.ViewerID(p.Context), p.Args["commentId"].(string))
		},
	}
}

func updateProfileMutation(gh *gqlHandler, profileType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: profileType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(profileInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			in := service.ProfileInput{
				Nickname: input["nickname"].(string),
			}
			if bio, ok := input["bio"].(string); ok {
				in.Bio = bio
			}
			if visible, ok := input["emailVisible"].(bool); ok {
				in.EmailVisible = visible
			}
			if avatarURL, ok := input["avatarUrl"].(string); ok {
				in.AvatarURL = avatarURL
			}
			return gh.svc.UpdateProfile(p.Context, service.ViewerID(p.Context), in)
		},
	}
}
