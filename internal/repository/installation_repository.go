package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// InstallationFilter captures listing parameters.
type InstallationFilter struct {
	CustomerID   *string
	TechnicianID *string
	Statuses     []domain.InstallationStatus
	Limit        int
	Offset       int
}

// InstallationRepository defines persistence for installation requests.
type InstallationRepository interface {
	Create(ctx context.Context, req *domain.InstallationRequest) error
	Update(ctx context.Context, req *domain.InstallationRequest) error
	GetByID(ctx context.Context, id string) (*domain.InstallationRequest, error)
	List(ctx context.Context, filter InstallationFilter) ([]domain.InstallationRequest, error)
}

type installationRepository struct {
	pool *pgxpool.Pool
}

// NewInstallationRepository instantiates repository.
func NewInstallationRepository(pool *pgxpool.Pool) InstallationRepository {
	return &installationRepository{pool: pool}
}

const installationColumns = `id, request_number, customer_id, item_id, description, status,
               technician_id, scheduled_for, completed_at, photo_url, photo_key, created_by,
               created_at, updated_at`

func (r *installationRepository) Create(ctx context.Context, req *domain.InstallationRequest) error {
	const query = `
        INSERT INTO installation_requests (request_number, customer_id, item_id, description, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.RequestNumber,
		req.CustomerID,
		req.ItemID,
		req.Description,
		req.Status,
		req.CreatedBy,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *installationRepository) Update(ctx context.Context, req *domain.InstallationRequest) error {
	const query = `
        UPDATE installation_requests SET description=$1, status=$2, technician_id=$3,
            scheduled_for=$4, completed_at=$5, photo_url=$6, photo_key=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		req.Description,
		req.Status,
		req.TechnicianID,
		req.ScheduledFor,
		req.CompletedAt,
		req.PhotoURL,
		req.PhotoKey,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *installationRepository) GetByID(ctx context.Context, id string) (*domain.InstallationRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM installation_requests WHERE id=$1`, installationColumns)
	var req domain.InstallationRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.RequestNumber,
		&req.CustomerID,
		&req.ItemID,
		&req.Description,
		&req.Status,
		&req.TechnicianID,
		&req.ScheduledFor,
		&req.CompletedAt,
		&req.PhotoURL,
		&req.PhotoKey,
		&req.CreatedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *installationRepository) List(ctx context.Context, filter InstallationFilter) ([]domain.InstallationRequest, error) {
	base := fmt.Sprintf(`SELECT %s FROM installation_requests`, installationColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InstallationRequest
	for rows.Next() {
		var req domain.InstallationRequest
		if err := rows.Scan(
			&req.ID,
			&req.RequestNumber,
			&req.CustomerID,
			&req.ItemID,
			&req.Description,
			&req.Status,
			&req.TechnicianID,
			&req.ScheduledFor,
			&req.CompletedAt,
			&req.PhotoURL,
			&req.PhotoKey,
			&req.CreatedBy,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
