// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for the user directory.

# Schema Table Mapping
  - users.account: Master identity and profile data, including the embedded
    saved-posts set (TEXT[] column).
*/
package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/database/schema"
	"github.com/taibuivan/pinboard/internal/platform/dberr"
)

// # Repository Implementation

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates the Postgres implementation of the user directory.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser hydrates a single [User] from a row scanner in [schema.UserAccountTable.Columns] order.
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
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

	// pgx decodes an empty TEXT[] as a nil slice; keep the JSON shape stable.
	if user.SavedPosts == nil {
		user.SavedPosts = []string{}
	}

	return user, nil
}

func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.UserAccount.Table,
		strings.Join(schema.UserAccount.Columns(), ", "),
	)

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Email,
		user.Phone,
		user.DateOfBirth,
		user.PasswordHash,
		user.ImagePath,
		user.Role,
		user.SavedPosts,
		user.CreatedAt,
		user.UpdatedAt,
	)

	// If the insert fails, map the unique-index race to the public error
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.EmailExists()
		}
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err))
	}

	return nil
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		schema.UserAccount.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return user, nil
}

func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {

	// The unique index is on lower(email); the lookup must match it.
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE lower(%s) = lower($1)`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		schema.UserAccount.Email,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return user, nil
}

func (repository *PostgresUserRepository) FindAll(context context.Context) ([]*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
		schema.UserAccount.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_user_repo_find_all_failed: %w", err))
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dberr.Wrap(err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err)
	}

	return users, nil
}

func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.FullName, schema.UserAccount.Email, schema.UserAccount.Phone,
		schema.UserAccount.DateOfBirth, schema.UserAccount.PasswordHash, schema.UserAccount.ImagePath,
		schema.UserAccount.Role, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Email,
		user.Phone,
		user.DateOfBirth,
		user.PasswordHash,
		user.ImagePath,
		user.Role,
		user.UpdatedAt,
	)

	// If the update fails, map the unique-index race to the public error
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.EmailExists()
		}
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_update_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {

	// Hard delete: the embedded saved-posts set disappears with the row.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_delete_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
