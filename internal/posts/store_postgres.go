// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/database/schema"
	"github.com/taibuivan/pinboard/internal/platform/dberr"
	"github.com/taibuivan/pinboard/pkg/pagination"
)

// # PostgreSQL Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres implementation of the post catalog.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanPost hydrates a single [Post] from a row scanner in [schema.PostTable.Columns] order.
func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	post := &Post{}
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Description,
		&post.TimeStart,
		&post.TimeEnd,
		&post.Images,
		&post.CreatedBy,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if post.Images == nil {
		post.Images = []string{}
	}

	return post, nil
}

func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.Post.Table,
		strings.Join(schema.Post.Columns(), ", "),
	)

	_, err := repository.pool.Exec(context, query,
		post.ID,
		post.Title,
		post.Slug,
		post.Description,
		post.TimeStart,
		post.TimeEnd,
		post.Images,
		post.CreatedBy,
		post.CreatedAt,
	)

	// If the insert fails, return an error
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_post_repo_create_failed: %w", err))
	}

	return nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		strings.Join(schema.Post.Columns(), ", "),
		schema.Post.Table,
		schema.Post.ID,
	)

	post, err := scanPost(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return post, nil
}

func (repository *PostgresRepository) FindPage(context context.Context, params pagination.Params) ([]*Post, int, error) {

	// ── 1. Total count ───────────────────────────────────────────────────
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.Post.Table)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_post_repo_count_failed: %w", err))
	}

	// ── 2. Page query ────────────────────────────────────────────────────
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		strings.Join(schema.Post.Columns(), ", "),
		schema.Post.Table,
		schema.Post.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_post_repo_list_failed: %w", err))
	}
	defer rows.Close()

	page := make([]*Post, 0, params.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err)
		}
		page = append(page, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err)
	}

	return page, total, nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Post.Table, schema.Post.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_post_repo_delete_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	return nil
}
