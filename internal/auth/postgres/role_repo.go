// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/malinatrash/msg/internal/auth"
)

// RoleRepository implements auth.RoleRepository using PostgreSQL. Roles are
// seeded by migration and read-only from this core.
type RoleRepository struct {
	pool pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetByID retrieves a role by ID.
func (r *RoleRepository) GetByID(ctx context.Context, id int32) (*auth.Role, error) {
	var (
		role        auth.Role
		description *string
		createdAt   time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM roles
		WHERE id = $1
	`, id).Scan(&role.ID, &role.Name, &description, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_BY_ID_FAILED").
			With("operation", "get role by id").
			With("id", id).
			Wrap(err)
	}
	role.Description = description
	role.CreatedAt = createdAt
	return &role, nil
}

// List returns all roles ordered by ID.
func (r *RoleRepository) List(ctx context.Context) ([]auth.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM roles
		ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").
			With("operation", "list roles").
			Wrap(err)
	}
	defer rows.Close()

	var roles []auth.Role
	for rows.Next() {
		var role auth.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, oops.Code("ROLE_SCAN_FAILED").
				With("operation", "scan role").
				Wrap(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").
			With("operation", "iterate roles").
			Wrap(err)
	}
	return roles, nil
}

// Compile-time interface check.
var _ auth.RoleRepository = (*RoleRepository)(nil)
