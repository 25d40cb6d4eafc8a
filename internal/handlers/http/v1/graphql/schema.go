package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				return v.Format(time.RFC3339)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	profileType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Profile",
			Fields: graphql.Fields{
				"id":           &graphql.Field{Type: graphql.ID},
				"nickname":     &graphql.Field{Type: graphql.String},
				"bio":          &graphql.Field{Type: graphql.String},
				"email":        &graphql.Field{Type: graphql.String},
				"emailVisible": &graphql.Field{Type: graphql.Boolean},
				"avatarUrl":    &graphql.Field{Type: graphql.String},
				"createdAt":    &graphql.Field{Type: DateTime},
			},
		},
	)

	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":           &graphql.Field{Type: graphql.ID},
				"title":        &graphql.Field{Type: graphql.String},
				"body":         &graphql.Field{Type: graphql.String},
				"slug":         &graphql.Field{Type: graphql.String},
				"tags":         &graphql.Field{Type: graphql.NewList(graphql.String)},
				"public":       &graphql.Field{Type: graphql.Boolean},
				"coverUrl":     &graphql.Field{Type: graphql.String},
				"views":        &graphql.Field{Type: graphql.Int},
				"author":       &graphql.Field{Type: profileType},
				"likeCount":    &graphql.Field{Type: graphql.Int},
				"commentCount": &graphql.Field{Type: graphql.Int},
				"liked":        &graphql.Field{Type: graphql.Boolean},
				"createdAt":    &graphql.Field{Type: DateTime},
				"updatedAt":    &graphql.Field{Type: DateTime},
			},
		},
	)

	commentType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Comment",
			Fields: graphql.Fields{
				"id":        &graphql.Field{Type: graphql.ID},
				"postId":    &graphql.Field{Type: graphql.ID},
				"parentId":  &graphql.Field{Type: graphql.ID},
				"author":    &graphql.Field{Type: profileType},
				"body":      &graphql.Field{Type: graphql.String},
				"deleted":   &graphql.Field{Type: graphql.Boolean},
				"likeCount": &graphql.Field{Type: graphql.Int},
				"liked":     &graphql.Field{Type: graphql.Boolean},
				"createdAt": &graphql.Field{Type: DateTime},
				"updatedAt": &graphql.Field{Type: DateTime},
			},
		},
	)
	// One level deep: replies are comments with no replies of their own.
	commentType.AddFieldConfig("replies", &graphql.Field{Type: graphql.NewList(commentType)})

	feedPageType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "FeedPage",
			Fields: graphql.Fields{
				"items":   &graphql.Field{Type: graphql.NewList(postType)},
				"hasMore": &graphql.Field{Type: graphql.Boolean},
			},
		},
	)

	threadPageType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "ThreadPage",
			Fields: graphql.Fields{
				"items":   &graphql.Field{Type: graphql.NewList(commentType)},
				"hasMore": &graphql.Field{Type: graphql.Boolean},
			},
		},
	)

	likeStateType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "LikeState",
			Fields: graphql.Fields{
				"liked": &graphql.Field{Type: graphql.Boolean},
				"count": &graphql.Field{Type: graphql.Int},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"feed":           feedQuery(gh, feedPageType),
				"post":           postQuery(gh, postType),
				"authorPosts":    authorPostsQuery(gh, feedPageType),
				"comments":       commentsQuery(gh, threadPageType),
				"profile":        profileQuery(gh, profileType),
				"searchPosts":    searchPostsQuery(gh, feedPageType),
				"recentSearches": recentSearchesQuery(gh),
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"createPost":        createPostMutation(gh, postType),
				"updatePost":        updatePostMutation(gh, postType),
				"deletePost":        deletePostMutation(gh),
				"createComment":     createCommentMutation(gh, commentType),
				"updateComment":     updateCommentMutation(gh, commentType),
				"deleteComment":     deleteCommentMutation(gh),
				"togglePostLike":    togglePostLikeMutation(gh, likeStateType),
				"toggleCommentLike": toggleCommentLikeMutation(gh, likeStateType),
				"updateProfile":     updateProfileMutation(gh, profileType),
			},
		},
	)

	schemaConfig := graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
