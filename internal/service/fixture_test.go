package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/repository"
	"github.com/storefront-ir/storefront-service/internal/repository/memory"
)

type fixture struct {
	ctx           context.Context
	now           time.Time
	store         *memory.Store
	updates       *countingUpdates
	orders        *OrderService
	tickets       *TicketService
	products      *ProductService
	notifications *NotificationService
	analytics     *AnalyticsService
	admin         *domain.User
	user          *domain.User
	other         *domain.User
}

// countingUpdates records calls so tests can assert the store was never reached.
type countingUpdates struct {
	repository.TicketUpdateRepository
	creates int
}

func (c *countingUpdates) Create(ctx context.Context, update *domain.TicketUpdate) error {
	c.creates++
	return c.TicketUpdateRepository.Create(ctx, update)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.store = memory.New(memory.WithClock(clock))
	f.updates = &countingUpdates{TicketUpdateRepository: f.store.TicketUpdates()}

	dispatcher := events.NewInMemoryDispatcher(nil)
	f.notifications = NewNotificationService(NotificationDependencies{Store: f.store.Notifications(), Clock: clock})
	f.notifications.RegisterHandlers(dispatcher)

	f.orders = NewOrderService(OrderDependencies{
		OrderRepo:   f.store.Orders(),
		ProductRepo: f.store.Products(),
		Dispatcher:  dispatcher,
		Clock:       clock,
	})
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo: f.store.Tickets(),
		UpdateRepo: f.updates,
		OrderRepo:  f.store.Orders(),
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	f.products = NewProductService(f.store.Products())
	f.analytics = NewAnalyticsService(f.store.Orders(), f.store.Tickets())

	f.admin = f.addUser(t, "مدیر", "admin@example.com", domain.RoleAdmin)
	f.user = f.addUser(t, "Sara Ahmadi", "sara@example.com", domain.RoleUser)
	f.other = f.addUser(t, "Reza", "reza@example.com", domain.RoleUser)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Role: role}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) addProduct(t *testing.T, name string, price int64) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(f.ctx, f.admin, ProductCreateInput{Name: name, Price: decimal.NewFromInt(price)})
	require.NoError(t, err)
	return p
}

func (f *fixture) placeOrder(t *testing.T, owner *domain.User, product *domain.Product, qty int) *domain.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(f.ctx, owner, PlaceOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: qty}},
		ShippingAddress: "تهران، خیابان ولیعصر",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) inbox(t *testing.T, user *domain.User) []domain.Notification {
	t.Helper()
	got, err := f.notifications.List(f.ctx, user, 0)
	require.NoError(t, err)
	return got
}
