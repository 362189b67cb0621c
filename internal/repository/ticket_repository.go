package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/query"
)

// TicketStats aggregates tickets for the admin dashboard.
type TicketStats struct {
	Total      int
	ByStatus   map[domain.TicketStatus]int
	ByPriority map[domain.TicketPriority]int
}

// TicketRepository encapsulates ticket persistence. Updates live in TicketUpdateRepository.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, ticket *domain.Ticket) error
	Touch(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, q query.TicketQuery) ([]domain.Ticket, error)
	Stats(ctx context.Context) (TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.owner_id, u.name, u.email, t.order_id, t.subject, t.description,
               t.status, t.priority, t.created_at, t.updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, order_id, subject, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.OrderID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticket *domain.Ticket) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, ticket.Status, ticket.ID).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) Touch(ctx context.Context, ticket *domain.Ticket) error {
	const query = `UPDATE tickets SET updated_at=NOW() WHERE id=$1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, ticket.ID).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN users u ON u.id = t.owner_id
        WHERE t.id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, q query.TicketQuery) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if q.OwnerID != nil {
		args = append(args, *q.OwnerID)
		clauses = append(clauses, fmt.Sprintf("t.owner_id=$%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, *q.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if q.Priority != nil {
		args = append(args, *q.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if query.Normalize(q.Search) != "" {
		args = append(args, likePattern(q.Search))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.subject) LIKE %s OR LOWER(u.name) LIKE %s OR LOWER(u.email) LIKE %s)", p, p, p))
	}

	sql := `SELECT ` + ticketColumns + `
        FROM tickets t JOIN users u ON u.id = t.owner_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY t.updated_at DESC`
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Stats(ctx context.Context) (TicketStats, error) {
	stats := TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int),
		ByPriority: make(map[domain.TicketPriority]int),
	}
	rows, err := r.pool.Query(ctx, `SELECT status, priority, COUNT(*) FROM tickets GROUP BY status, priority`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status   domain.TicketStatus
			priority domain.TicketPriority
			count    int
		)
		if err := rows.Scan(&status, &priority, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.Total += count
	}
	return stats, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Owner.Name,
		&ticket.Owner.Email,
		&ticket.OrderID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Owner.ID = ticket.OwnerID
	return &ticket, nil
}
