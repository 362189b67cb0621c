package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/query"
)

// OrderStats aggregates orders for the admin dashboard.
type OrderStats struct {
	Total        int
	ByStatus     map[domain.OrderStatus]int
	Revenue      decimal.Decimal
	PricePending int
}

// OpenOrderError reports that the owner already has a PENDING or CONFIRMED order for ProductID.
type OpenOrderError struct {
	ProductID string
}

func (e *OpenOrderError) Error() string {
	return "open order already exists for product " + e.ProductID
}

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	// Create inserts the order and its items. It fails with *OpenOrderError when the owner has an
	// open order for any of the products; the check and the insert are atomic per owner.
	Create(ctx context.Context, order *domain.Order) error
	// Update writes status, total and description. A non-nil expectedVersion must match the stored
	// version or ErrVersionConflict is returned; nil means last write wins.
	Update(ctx context.Context, order *domain.Order, expectedVersion *int) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, q query.OrderQuery, now time.Time) ([]domain.Order, error)
	Stats(ctx context.Context) (OrderStats, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `o.id, o.owner_id, u.name, u.email, o.status, o.total::text, o.description,
               o.shipping_address, o.version, o.created_at, o.updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the owner row so concurrent placements for one user run one after another.
		if _, err := tx.Exec(ctx, `SELECT 1 FROM users WHERE id=$1 FOR UPDATE`, order.OwnerID); err != nil {
			return err
		}
		if err := checkOpenOrders(ctx, tx, order); err != nil {
			return err
		}

		const insertOrder = `
            INSERT INTO orders (owner_id, status, total, description, shipping_address)
            VALUES ($1,$2,$3::numeric,$4,$5)
            RETURNING id, version, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.OwnerID,
			order.Status,
			order.Total.String(),
			order.Description,
			order.ShippingAddress,
		).Scan(&order.ID, &order.Version, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return err
		}

		const insertItem = `
            INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, position)
            VALUES ($1,$2,$3,$4,$5::numeric,$6)
            RETURNING id`
		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.QueryRow(ctx, insertItem,
				order.ID,
				item.ProductID,
				item.ProductName,
				item.Quantity,
				item.UnitPrice.String(),
				i,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order, expectedVersion *int) error {
	args := []any{order.Status, order.Total.String(), order.Description, order.ID}
	query := `
        UPDATE orders SET status=$1, total=$2::numeric, description=$3,
            version=version+1, updated_at=NOW()
        WHERE id=$4`
	if expectedVersion != nil {
		args = append(args, *expectedVersion)
		query += ` AND version=$5`
	}
	query += ` RETURNING version, updated_at`

	err := r.pool.QueryRow(ctx, query, args...).Scan(&order.Version, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) && expectedVersion != nil {
		var exists bool
		if existsErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, order.ID).Scan(&exists); existsErr != nil {
			return existsErr
		}
		if exists {
			return ErrVersionConflict
		}
	}
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
        FROM orders o JOIN users u ON u.id = o.owner_id
        WHERE o.id=$1`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) List(ctx context.Context, q query.OrderQuery, now time.Time) ([]domain.Order, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if q.OwnerID != nil {
		args = append(args, *q.OwnerID)
		clauses = append(clauses, fmt.Sprintf("o.owner_id=$%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, *q.Status)
		clauses = append(clauses, fmt.Sprintf("o.status=$%d", len(args)))
	}
	if from, to, ok := q.Range.Window(now); ok {
		args = append(args, from)
		clauses = append(clauses, fmt.Sprintf("o.created_at >= $%d", len(args)))
		if !to.IsZero() {
			args = append(args, to)
			clauses = append(clauses, fmt.Sprintf("o.created_at < $%d", len(args)))
		}
	}
	if query.Normalize(q.Search) != "" {
		args = append(args, likePattern(q.Search))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(o.id::text) LIKE %s OR LOWER(u.name) LIKE %s OR LOWER(u.email) LIKE %s)", p, p, p))
	}

	sql := `SELECT ` + orderColumns + `
        FROM orders o JOIN users u ON u.id = o.owner_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY o.created_at DESC`
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

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func checkOpenOrders(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if len(order.Items) == 0 {
		return nil
	}
	productIDs := make([]string, len(order.Items))
	for i, item := range order.Items {
		productIDs[i] = item.ProductID
	}
	const query = `
        SELECT i.product_id FROM orders o JOIN order_items i ON i.order_id = o.id
        WHERE o.owner_id=$1 AND i.product_id = ANY($2::uuid[]) AND o.status IN ($3,$4)
        LIMIT 1`
	var productID string
	err := tx.QueryRow(ctx, query, order.OwnerID, productIDs, domain.OrderStatusPending, domain.OrderStatusConfirmed).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return &OpenOrderError{ProductID: productID}
}

func (r *orderRepository) Stats(ctx context.Context) (OrderStats, error) {
	stats := OrderStats{ByStatus: make(map[domain.OrderStatus]int), Revenue: decimal.Zero}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status domain.OrderStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	const totals = `
        SELECT COALESCE(SUM(total) FILTER (WHERE status <> $1), 0)::text,
               COUNT(*) FILTER (WHERE total <= 0)
        FROM orders`
	var revenue string
	if err := r.pool.QueryRow(ctx, totals, domain.OrderStatusCancelled).Scan(&revenue, &stats.PricePending); err != nil {
		return stats, err
	}
	stats.Revenue, err = decimal.NewFromString(revenue)
	return stats, err
}

func (r *orderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	const query = `
        SELECT id, order_id, product_id, product_name, quantity, unit_price::text
        FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &price); err != nil {
			return err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return err
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order domain.Order
		total string
	)
	if err := row.Scan(
		&order.ID,
		&order.OwnerID,
		&order.Owner.Name,
		&order.Owner.Email,
		&order.Status,
		&total,
		&order.Description,
		&order.ShippingAddress,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	order.Owner.ID = order.OwnerID
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	order.Total = parsed
	return &order, nil
}
