// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package saved

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/database/schema"
	"github.com/taibuivan/pinboard/internal/platform/dberr"
	"github.com/taibuivan/pinboard/internal/users/account"
)

// # PostgreSQL Implementation

// PostgresStore implements [Store] against the users.account savedposts column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the Postgres implementation of the saved-posts relation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// scanAccount hydrates an [account.User] from a row scanner in
// [schema.UserAccountTable.Columns] order.
func scanAccount(row interface{ Scan(...any) error }) (*account.User, error) {
	user := &account.User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.DateOfBirth,
		&user.PasswordHash,
		&user.ImagePath,
		&user.Role,
		&user.SavedPosts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if user.SavedPosts == nil {
		user.SavedPosts = []string{}
	}

	return user, nil
}

func (store *PostgresStore) AddPost(context context.Context, userID, postID string) (*account.User, error) {

	// ── 1. Guarded atomic append ─────────────────────────────────────────
	// The membership check and the append happen in ONE statement, so two
	// concurrent saves of the same post cannot both pass the guard. The
	// updated record comes back in the same round trip.
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_append(%s, $2), %s = now()
		WHERE %s = $1 AND NOT ($2 = ANY (%s))
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.SavedPosts, schema.UserAccount.SavedPosts, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.SavedPosts,
		strings.Join(schema.UserAccount.Columns(), ", "),
	)

	user, err := scanAccount(store.pool.QueryRow(context, query, userID, postID))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, dberr.Wrap(fmt.Errorf("postgres_saved_store_add_failed: %w", err))
	}

	// ── 2. Disambiguate the zero-row case ────────────────────────────────
	// Either the post was already saved (idempotent success, return the
	// current record) or the user does not exist.
	user, err = store.findAccount(context, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(fmt.Errorf("postgres_saved_store_add_failed: %w", err))
	}

	return user, nil
}

func (store *PostgresStore) RemovePost(context context.Context, userID, postID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_remove(%s, $2), %s = now()
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.SavedPosts, schema.UserAccount.SavedPosts, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	// array_remove on an absent element is a no-op, and an unmatched WHERE
	// (unknown user) is equally a successful no-op, matching the pull
	// semantics of the delete endpoint.
	if _, err := store.pool.Exec(context, query, userID, postID); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_saved_store_remove_failed: %w", err))
	}

	return nil
}

func (store *PostgresStore) FindSavers(context context.Context, userID, postID string) ([]*account.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND $2 = ANY (%s)`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.SavedPosts,
	)

	rows, err := store.pool.Query(context, query, userID, postID)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_saved_store_find_failed: %w", err))
	}
	defer rows.Close()

	savers := make([]*account.User, 0, 1)
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, dberr.Wrap(err)
		}
		savers = append(savers, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err)
	}

	return savers, nil
}

// findAccount fetches an account row by id without a membership predicate.
func (store *PostgresStore) findAccount(context context.Context, userID string) (*account.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		schema.UserAccount.ID,
	)

	return scanAccount(store.pool.QueryRow(context, query, userID))
}
