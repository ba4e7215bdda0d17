package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

// UserStore reads the directory projection kept in sync by the identity
// system. This core never writes user rows.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, first_name, last_name, email, phone, roles, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u     model.User
		roles []string
	)
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Phone,
		&roles,
		&u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Directory rows may carry stray role strings; only the known enum
	// survives normalization.
	u.Roles = make(model.RoleSet, len(roles))
	for _, r := range roles {
		if role := model.Role(r); role.Valid() {
			u.Roles[role] = struct{}{}
		}
	}

	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetMany returns the users for the given ids, keyed by id. Missing ids are
// simply absent from the map.
func (s *UserStore) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*model.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*model.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}

	return out, rows.Err()
}

// ListByRole returns users holding the role, newest first.
func (s *UserStore) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1 = ANY(roles)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
