package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-ir/storefront-service/internal/domain"
)

// TicketUpdateRepository manages the append-only ticket thread.
type TicketUpdateRepository interface {
	Create(ctx context.Context, update *domain.TicketUpdate) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketUpdate, error)
}

type ticketUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewTicketUpdateRepository builds repository.
func NewTicketUpdateRepository(pool *pgxpool.Pool) TicketUpdateRepository {
	return &ticketUpdateRepository{pool: pool}
}

func (r *ticketUpdateRepository) Create(ctx context.Context, update *domain.TicketUpdate) error {
	const query = `
        INSERT INTO ticket_updates (ticket_id, author_id, message, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		update.TicketID,
		update.AuthorID,
		update.Message,
		update.IsInternal,
	).Scan(&update.ID, &update.CreatedAt)
}

func (r *ticketUpdateRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketUpdate, error) {
	const query = `
        SELECT tu.id, tu.ticket_id, tu.author_id, u.name, tu.message, tu.is_internal, tu.created_at
        FROM ticket_updates tu JOIN users u ON u.id = tu.author_id
        WHERE tu.ticket_id=$1 ORDER BY tu.created_at ASC, tu.seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketUpdate{}
	for rows.Next() {
		var update domain.TicketUpdate
		if err := rows.Scan(
			&update.ID,
			&update.TicketID,
			&update.AuthorID,
			&update.AuthorName,
			&update.Message,
			&update.IsInternal,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
