// Package memory implements the repositories on top of process memory. It backs the service when
// no Postgres DSN or Redis address is configured.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/query"
	"github.com/storefront-ir/storefront-service/internal/repository"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// Store holds every record kept in memory. Repositories obtained from it share one lock.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	maxPerUser    int
	users         map[string]*domain.User
	emails        map[string]string
	products      map[string]*domain.Product
	orders        map[string]*domain.Order
	tickets       map[string]*domain.Ticket
	updates       map[string][]domain.TicketUpdate
	notifications map[string][]domain.Notification
	readAt        map[string]time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxNotifications caps each user's inbox.
func WithMaxNotifications(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxPerUser = n
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		maxPerUser:    100,
		users:         make(map[string]*domain.User),
		emails:        make(map[string]string),
		products:      make(map[string]*domain.Product),
		orders:        make(map[string]*domain.Order),
		tickets:       make(map[string]*domain.Ticket),
		updates:       make(map[string][]domain.TicketUpdate),
		notifications: make(map[string][]domain.Notification),
		readAt:        make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Products() repository.ProductRepository           { return productRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return orderRepo{s} }
func (s *Store) Tickets() repository.TicketRepository             { return ticketRepo{s} }
func (s *Store) TicketUpdates() repository.TicketUpdateRepository { return updateRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

func (s *Store) ownerSummary(id string) domain.UserSummary {
	if u, ok := s.users[id]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: id}
}

// users

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := r.s.emails[email]; taken {
		return apperrors.NewConflict("email already registered", nil)
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	r.s.users[user.ID] = &stored
	r.s.emails[email] = user.ID
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.emails, existing.Email)
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = r.s.now()
	stored := *user
	r.s.users[user.ID] = &stored
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.emails[strings.ToLower(email)]
	r.s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// products

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	product.ID = uuid.NewString()
	product.CreatedAt, product.UpdatedAt = now, now
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r productRepo) List(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	slices.SortStableFunc(out, func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// orders

type orderRepo struct{ s *Store }

func cloneOrder(o *domain.Order) domain.Order {
	out := *o
	out.Items = slices.Clone(o.Items)
	if out.Items == nil {
		out.Items = []domain.OrderItem{}
	}
	return out
}

func (r orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range order.Items {
		if r.hasOpenOrder(order.OwnerID, item.ProductID) {
			return &repository.OpenOrderError{ProductID: item.ProductID}
		}
	}
	now := r.s.now()
	order.ID = uuid.NewString()
	order.Version = 1
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
	}
	order.Owner = r.s.ownerSummary(order.OwnerID)
	stored := cloneOrder(order)
	r.s.orders[order.ID] = &stored
	return nil
}

func (r orderRepo) Update(_ context.Context, order *domain.Order, expectedVersion *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.orders[order.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if expectedVersion != nil && existing.Version != *expectedVersion {
		return repository.ErrVersionConflict
	}
	existing.Status = order.Status
	existing.Total = order.Total
	existing.Description = order.Description
	existing.Version++
	existing.UpdatedAt = r.s.now()
	order.Version = existing.Version
	order.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneOrder(o)
	out.Owner = r.s.ownerSummary(o.OwnerID)
	return &out, nil
}

func (r orderRepo) snapshot() []domain.Order {
	all := make([]domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out := cloneOrder(o)
		out.Owner = r.s.ownerSummary(o.OwnerID)
		all = append(all, out)
	}
	slices.SortStableFunc(all, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return all
}

func (r orderRepo) List(_ context.Context, q query.OrderQuery, now time.Time) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return query.FilterOrders(r.snapshot(), q, now), nil
}

// hasOpenOrder must be called with the store lock held.
func (r orderRepo) hasOpenOrder(ownerID, productID string) bool {
	for _, o := range r.s.orders {
		if o.OwnerID == ownerID && o.Status.Open() && o.HasProduct(productID) {
			return true
		}
	}
	return false
}

func (r orderRepo) Stats(_ context.Context) (repository.OrderStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stats := repository.OrderStats{ByStatus: make(map[domain.OrderStatus]int), Revenue: decimal.Zero}
	for _, o := range r.s.orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		if o.Status != domain.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
		if o.PricePending() {
			stats.PricePending++
		}
	}
	return stats, nil
}

// tickets

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	ticket.Owner = r.s.ownerSummary(ticket.OwnerID)
	stored := *ticket
	stored.Updates = nil
	r.s.tickets[ticket.ID] = &stored
	return nil
}

func (r ticketRepo) UpdateStatus(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Status = ticket.Status
	existing.UpdatedAt = r.s.now()
	ticket.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r ticketRepo) Touch(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.UpdatedAt = r.s.now()
	ticket.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *t
	out.Owner = r.s.ownerSummary(t.OwnerID)
	return &out, nil
}

func (r ticketRepo) List(_ context.Context, q query.TicketQuery) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, t := range r.s.tickets {
		out := *t
		out.Owner = r.s.ownerSummary(t.OwnerID)
		all = append(all, out)
	}
	slices.SortStableFunc(all, func(a, b domain.Ticket) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return query.FilterTickets(all, q), nil
}

func (r ticketRepo) Stats(_ context.Context) (repository.TicketStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stats := repository.TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int),
		ByPriority: make(map[domain.TicketPriority]int),
	}
	for _, t := range r.s.tickets {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats, nil
}

// ticket updates

type updateRepo struct{ s *Store }

func (r updateRepo) Create(_ context.Context, update *domain.TicketUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[update.TicketID]; !ok {
		return apperrors.ErrNotFound
	}
	update.ID = uuid.NewString()
	update.CreatedAt = r.s.now()
	if u, ok := r.s.users[update.AuthorID]; ok {
		update.AuthorName = u.Name
	}
	r.s.updates[update.TicketID] = append(r.s.updates[update.TicketID], *update)
	return nil
}

func (r updateRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketUpdate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := slices.Clone(r.s.updates[ticketID])
	if out == nil {
		out = []domain.TicketUpdate{}
	}
	return out, nil
}

// notifications

type notificationRepo struct{ s *Store }

func (r notificationRepo) Push(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inbox := append([]domain.Notification{*n}, r.s.notifications[n.UserID]...)
	if len(inbox) > r.s.maxPerUser {
		inbox = inbox[:r.s.maxPerUser]
	}
	r.s.notifications[n.UserID] = inbox
	return nil
}

func (r notificationRepo) List(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	readAt := r.s.readAt[userID]
	out := query.Page(slices.Clone(r.s.notifications[userID]), limit, 0)
	for i := range out {
		out[i].Read = !readAt.IsZero() && !out[i].CreatedAt.After(readAt)
	}
	if out == nil {
		out = []domain.Notification{}
	}
	return out, nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.readAt[userID] = at
	return nil
}
