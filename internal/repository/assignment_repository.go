package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AssignmentRepository stores the append-only assignment history, separate
// from the audit log.
type AssignmentRepository interface {
	Create(ctx context.Context, record *domain.AssignmentRecord) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.AssignmentRecord, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Create(ctx context.Context, record *domain.AssignmentRecord) error {
	const query = `
        INSERT INTO ticket_assignments (ticket_id, assigner_id, assignee_id, note)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.TicketID,
		record.AssignerID,
		record.AssigneeID,
		record.Note,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.AssignmentRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, assigner_id, assignee_id, note, created_at
        FROM ticket_assignments WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentRecord
	for rows.Next() {
		var record domain.AssignmentRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.AssignerID,
			&record.AssigneeID,
			&record.Note,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
