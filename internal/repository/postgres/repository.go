package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/realorfakerf/myblog/config"
	"github.com/realorfakerf/myblog/internal/repository"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type postgresRepository struct {
	db *sql.DB
}

func New(conf config.Postgres) (*postgresRepository, error) {
	url := fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable", conf.User, conf.Pass, conf.Host, conf.Port, conf.DB)

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db.Ping: %v", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %v", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithDatabaseInstance: %v", err)
	}
	log.Println("[POSTGRES] applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[POSTGRES] nothing to migrate")
		} else {
			return nil, fmt.Errorf("error when migrating: %v", err)
		}
	} else {
		log.Println("[POSTGRES] migrated successfully")
	}

	return &postgresRepository{db: db}, nil
}

// tagsArray encodes tags as a postgres array. A nil slice would encode
// as SQL NULL, which the NOT NULL tags column rejects, so it is mapped
// to the empty array.
func tagsArray(tags []string) driver.Valuer {
	if tags == nil {
		tags = []string{}
	}
	return pq.Array(tags)
}

// wrapErr converts driver errors into the repository sentinels.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}

// === Users ===

func (pr postgresRepository) CreateUser(ctx context.Context, user *repository.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	_, err := pr.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	return wrapErr(err)
}

func (pr postgresRepository) GetUser(ctx context.Context, id string) (*repository.User, error) {
	user := &repository.User{}
	err := pr.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE id = $1", id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return user, nil
}

func (pr postgresRepository) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	user := &repository.User{}
	err := pr.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = $1", email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return user, nil
}

// === Profiles ===

func (pr postgresRepository) CreateProfile(ctx context.Context, profile *repository.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	_, err := pr.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, nickname, bio, email_visible, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		profile.ID, profile.Email, profile.Nickname, profile.Bio, profile.EmailVisible,
		profile.AvatarURL, profile.CreatedAt, profile.UpdatedAt)
	return wrapErr(err)
}

func (pr postgresRepository) GetProfile(ctx context.Context, id string) (*repository.Profile, error) {
	profile := &repository.Profile{}
	err := pr.db.QueryRowContext(ctx,
		`SELECT id, email, nickname, bio, email_visible, avatar_url, created_at, updated_at
		 FROM profiles WHERE id = $1`, id).
		Scan(&profile.ID, &profile.Email, &profile.Nickname, &profile.Bio,
			&profile.EmailVisible, &profile.AvatarURL, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return profile, nil
}

func (pr postgresRepository) GetProfiles(ctx context.Context, ids []string) (map[string]*repository.Profile, error) {
	result := make(map[string]*repository.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := pr.db.QueryContext(ctx,
		`SELECT id, email, nickname, bio, email_visible, avatar_url, created_at, updated_at
		 FROM profiles WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		profile := &repository.Profile{}
		err = rows.Scan(&profile.ID, &profile.Email, &profile.Nickname, &profile.Bio,
			&profile.EmailVisible, &profile.AvatarURL, &profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result[profile.ID] = profile
	}
	return result, rows.Err()
}

func (pr postgresRepository) UpdateProfile(ctx context.Context, profile *repository.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	res, err := pr.db.ExecContext(ctx,
		`UPDATE profiles SET nickname = $2, bio = $3, email_visible = $4, avatar_url = $5, updated_at = $6
		 WHERE id = $1`,
		profile.ID, profile.Nickname, profile.Bio, profile.EmailVisible, profile.AvatarURL, profile.UpdatedAt)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

// === Posts ===

func (pr postgresRepository) CreatePost(ctx context.Context, post *repository.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := pr.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, body, slug, tags, public, cover_url, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		post.ID, post.AuthorID, post.Title, post.Body, post.Slug, tagsArray(post.Tags),
		post.Public, post.CoverURL, post.Views, post.CreatedAt, post.UpdatedAt)
	return wrapErr(err)
}

const postColumns = "id, author_id, title, body, slug, tags, public, cover_url, views, created_at, updated_at"

func scanPost(row interface{ Scan(...any) error }) (*repository.Post, error) {
	post := &repository.Post{}
	err := row.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Body, &post.Slug,
		pq.Array(&post.Tags), &post.Public, &post.CoverURL, &post.Views,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return post, nil
}

func (pr postgresRepository) GetPost(ctx context.Context, id string) (*repository.Post, error) {
	return scanPost(pr.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = $1", id))
}

func (pr postgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*repository.Post, error) {
	rows, err := pr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	posts := []*repository.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (pr postgresRepository) GetPublicPosts(ctx context.Context, limit, offset int) ([]*repository.Post, error) {
	return pr.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts WHERE public ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
}

func (pr postgresRepository) GetPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*repository.Post, error) {
	return pr.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts WHERE author_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		authorID, limit, offset)
}

func (pr postgresRepository) SearchPublicPosts(ctx context.Context, query string, limit, offset int) ([]*repository.Post, error) {
	pattern := "%" + query + "%"
	return pr.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE public AND (title ILIKE $1 OR body ILIKE $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
}

func (pr postgresRepository) UpdatePost(ctx context.Context, post *repository.Post) error {
	post.UpdatedAt = time.Now().UTC()
	// RETURNING back-fills the columns the caller does not set, so the
	// updated struct carries the stored views and creation time.
	updated, err := scanPost(pr.db.QueryRowContext(ctx,
		`UPDATE posts SET title = $3, body = $4, slug = $5, tags = $6, public = $7, cover_url = $8, updated_at = $9
		 WHERE id = $1 AND author_id = $2
		 RETURNING `+postColumns,
		post.ID, post.AuthorID, post.Title, post.Body, post.Slug, tagsArray(post.Tags),
		post.Public, post.CoverURL, post.UpdatedAt))
	if err != nil {
		return err
	}
	*post = *updated
	return nil
}

func (pr postgresRepository) DeletePost(ctx context.Context, id, authorID string) error {
	res, err := pr.db.ExecContext(ctx,
		"DELETE FROM posts WHERE id = $1 AND author_id = $2", id, authorID)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

func (pr postgresRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := pr.db.ExecContext(ctx,
		"UPDATE posts SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

// === Comments ===

func (pr postgresRepository) CreateComment(ctx context.Context, comment *repository.Comment) error {
	if comment.ParentID != nil {
		parent, err := pr.GetComment(ctx, *comment.ParentID)
		if err != nil {
			return err
		}
		if parent.PostID != comment.PostID {
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
	_, err := pr.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, parent_id, body, deleted, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, NULL, $6, $7)`,
		comment.ID, comment.PostID, comment.AuthorID, comment.ParentID, comment.Body,
		comment.CreatedAt, comment.UpdatedAt)
	return wrapErr(err)
}

const commentColumns = "id, post_id, author_id, parent_id, body, deleted, deleted_at, created_at, updated_at"

func scanComment(row interface{ Scan(...any) error }) (*repository.Comment, error) {
	comment := &repository.Comment{}
	err := row.Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.ParentID,
		&comment.Body, &comment.Deleted, &comment.DeletedAt, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return comment, nil
}

func (pr postgresRepository) GetComment(ctx context.Context, id string) (*repository.Comment, error) {
	return scanComment(pr.db.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id))
}

func (pr postgresRepository) GetComments(ctx context.Context, postID string, limit, offset int) ([]*repository.Comment, error) {
	rows, err := pr.db.QueryContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE post_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		postID, limit, offset)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	comments := []*repository.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (pr postgresRepository) UpdateComment(ctx context.Context, id, authorID, body string) (*repository.Comment, error) {
	return scanComment(pr.db.QueryRowContext(ctx,
		`UPDATE comments SET body = $3, updated_at = NOW()
		 WHERE id = $1 AND author_id = $2 AND NOT deleted
		 RETURNING `+commentColumns,
		id, authorID, body))
}

func (pr postgresRepository) SoftDeleteComment(ctx context.Context, id, authorID string) error {
	res, err := pr.db.ExecContext(ctx,
		`UPDATE comments SET deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND author_id = $2 AND NOT deleted`,
		id, authorID)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

func (pr postgresRepository) CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return pr.countBy(ctx,
		"SELECT post_id, COUNT(*) FROM comments WHERE post_id = ANY($1) AND NOT deleted GROUP BY post_id",
		postIDs)
}

// === Likes ===

func (pr postgresRepository) AddPostLike(ctx context.Context, postID, userID string) error {
	_, err := pr.db.ExecContext(ctx,
		"INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)", postID, userID)
	return wrapErr(err)
}

func (pr postgresRepository) RemovePostLike(ctx context.Context, postID, userID string) error {
	res, err := pr.db.ExecContext(ctx,
		"DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2", postID, userID)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

func (pr postgresRepository) PostLikeCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return pr.countBy(ctx,
		"SELECT post_id, COUNT(*) FROM post_likes WHERE post_id = ANY($1) GROUP BY post_id",
		postIDs)
}

func (pr postgresRepository) PostsLikedBy(ctx context.Context, postIDs []string, userID string) (map[string]bool, error) {
	return pr.likedBy(ctx,
		"SELECT post_id FROM post_likes WHERE post_id = ANY($1) AND user_id = $2",
		postIDs, userID)
}

func (pr postgresRepository) AddCommentLike(ctx context.Context, commentID, userID string) error {
	_, err := pr.db.ExecContext(ctx,
		"INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2)", commentID, userID)
	return wrapErr(err)
}

func (pr postgresRepository) RemoveCommentLike(ctx context.Context, commentID, userID string) error {
	res, err := pr.db.ExecContext(ctx,
		"DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2", commentID, userID)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

func (pr postgresRepository) CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int, error) {
	return pr.countBy(ctx,
		"SELECT comment_id, COUNT(*) FROM comment_likes WHERE comment_id = ANY($1) GROUP BY comment_id",
		commentIDs)
}

func (pr postgresRepository) CommentsLikedBy(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	return pr.likedBy(ctx,
		"SELECT comment_id FROM comment_likes WHERE comment_id = ANY($1) AND user_id = $2",
		commentIDs, userID)
}

func (pr postgresRepository) countBy(ctx context.Context, query string, ids []string) (map[string]int, error) {
	result := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := pr.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		result[id] = count
	}
	return result, rows.Err()
}

func (pr postgresRepository) likedBy(ctx context.Context, query string, ids []string, userID string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := pr.db.QueryContext(ctx, query, pq.Array(ids), userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}

// === Sessions ===

func (pr postgresRepository) CreateSession(ctx context.Context, session *repository.Session) error {
	session.CreatedAt = time.Now().UTC()
	_, err := pr.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	return wrapErr(err)
}

func (pr postgresRepository) GetSession(ctx context.Context, token string) (*repository.Session, error) {
	session := &repository.Session{}
	err := pr.db.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1", token).
		Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return session, nil
}

func (pr postgresRepository) DeleteSession(ctx context.Context, token string) error {
	res, err := pr.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	if err != nil {
		return wrapErr(err)
	}
	return noRowsAsNotFound(res)
}

// === Search history ===

func (pr postgresRepository) RecordSearch(ctx context.Context, userID, term string) error {
	_, err := pr.db.ExecContext(ctx,
		`INSERT INTO search_history (user_id, term, searched_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, term) DO UPDATE SET searched_at = NOW()`,
		userID, term)
	if err != nil {
		return wrapErr(err)
	}
	// Trim everything beyond the most recent entries.
	_, err = pr.db.ExecContext(ctx,
		`DELETE FROM search_history WHERE user_id = $1 AND term NOT IN (
		     SELECT term FROM search_history WHERE user_id = $1
		     ORDER BY searched_at DESC LIMIT $2)`,
		userID, repository.SearchHistoryLimit)
	return wrapErr(err)
}

func (pr postgresRepository) RecentSearches(ctx context.Context, userID string) ([]string, error) {
	rows, err := pr.db.QueryContext(ctx,
		"SELECT term FROM search_history WHERE user_id = $1 ORDER BY searched_at DESC LIMIT $2",
		userID, repository.SearchHistoryLimit)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	terms := []string{}
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

func noRowsAsNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
