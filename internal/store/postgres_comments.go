package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrCommentNotFound: no comment with the given id.
var ErrCommentNotFound = errors.New("comment not found")

type PostgresCommentsRepo struct {
	db *sql.DB
}

func NewPostgresCommentsRepo(db *sql.DB) *PostgresCommentsRepo {
	return &PostgresCommentsRepo{db: db}
}

const commentColumns = `comment_id, design_id, author_id, text, mentions, created_at, updated_at`

func (r *PostgresCommentsRepo) Create(ctx context.Context, c *Comment) error {
	if c.Mentions == nil {
		c.Mentions = []string{}
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO comments (comment_id, design_id, author_id, text, mentions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.DesignID, c.AuthorID, c.Text, pq.Array(c.Mentions),
	)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *PostgresCommentsRepo) ByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE comment_id = $1`, id,
	).Scan(&c.ID, &c.DesignID, &c.AuthorID, &c.Text, pq.Array(&c.Mentions), &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch comment %s: %w", id, err)
	}
	return &c, nil
}

// ByDesign returns all comments on a design, newest first.
func (r *PostgresCommentsRepo) ByDesign(ctx context.Context, designID string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE design_id = $1
		ORDER BY created_at DESC`,
		designID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments for design %s: %w", designID, err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.DesignID, &c.AuthorID, &c.Text,
			pq.Array(&c.Mentions), &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// List pages through comments filtered by design and/or author; an empty
// string disables that filter.
func (r *PostgresCommentsRepo) List(ctx context.Context, designID, authorID string, page, limit int) ([]Comment, int, error) {
	const where = `($1 = '' OR design_id = $1) AND ($2 = '' OR author_id = $2)`

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE `+where, designID, authorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		designID, authorID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.DesignID, &c.AuthorID, &c.Text,
			pq.Array(&c.Mentions), &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// Update merges a new text and/or mentions list into the comment. nil leaves
// the stored value alone.
func (r *PostgresCommentsRepo) Update(ctx context.Context, id string, text *string, mentions []string) (*Comment, error) {
	var mentionsArg interface{}
	if mentions != nil {
		mentionsArg = pq.Array(mentions)
	}

	var c Comment
	err := r.db.QueryRowContext(ctx, `
		UPDATE comments
		SET text = COALESCE($2, text),
		    mentions = COALESCE($3, mentions),
		    updated_at = NOW()
		WHERE comment_id = $1
		RETURNING `+commentColumns,
		id, text, mentionsArg,
	).Scan(&c.ID, &c.DesignID, &c.AuthorID, &c.Text, pq.Array(&c.Mentions), &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment %s: %w", id, err)
	}
	return &c, nil
}

// CountByAuthor backs the delete-user guard: users with comments cannot be
// removed.
func (r *PostgresCommentsRepo) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE author_id = $1`, authorID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments for author %s: %w", authorID, err)
	}
	return n, nil
}

func (r *PostgresCommentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
