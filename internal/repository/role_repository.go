package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// RoleRepository defines persistence access for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByCode(ctx context.Context, code string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	CountUsers(ctx context.Context, roleID string) (int, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (code, name, description, level, unrestricted, is_default, permissions)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		role.Code,
		role.Name,
		role.Description,
		role.Level,
		role.Unrestricted,
		role.IsDefault,
		permissionsToText(role.Permissions),
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET code=$1, name=$2, description=$3, level=$4, unrestricted=$5, permissions=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		role.Code,
		role.Name,
		role.Description,
		role.Level,
		role.Unrestricted,
		permissionsToText(role.Permissions),
		role.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	const query = `
        SELECT id, code, name, description, level, unrestricted, is_default, permissions, created_at, updated_at
        FROM roles WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	const query = `
        SELECT id, code, name, description, level, unrestricted, is_default, permissions, created_at, updated_at
        FROM roles WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *roleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var role domain.Role
	var perms []string
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&role.ID,
		&role.Code,
		&role.Name,
		&role.Description,
		&role.Level,
		&role.Unrestricted,
		&role.IsDefault,
		&perms,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	role.Permissions = permissionsFromText(perms)
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `
        SELECT id, code, name, description, level, unrestricted, is_default, permissions, created_at, updated_at
        FROM roles ORDER BY level DESC, name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		var perms []string
		if err := rows.Scan(
			&role.ID,
			&role.Code,
			&role.Name,
			&role.Description,
			&role.Level,
			&role.Unrestricted,
			&role.IsDefault,
			&perms,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, err
		}
		role.Permissions = permissionsFromText(perms)
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *roleRepository) CountUsers(ctx context.Context, roleID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id=$1`, roleID).Scan(&count)
	return count, err
}

func permissionsToText(perms []domain.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

func permissionsFromText(values []string) []domain.Permission {
	out := make([]domain.Permission, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Permission(v))
	}
	return out
}
