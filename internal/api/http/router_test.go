package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-ir/storefront-service/internal/api/http/handlers"
	"github.com/storefront-ir/storefront-service/internal/auth"
	"github.com/storefront-ir/storefront-service/internal/config"
	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/observability"
	"github.com/storefront-ir/storefront-service/internal/persistence"
	"github.com/storefront-ir/storefront-service/internal/repository/memory"
	"github.com/storefront-ir/storefront-service/internal/service"
)

type testServer struct {
	app        *fiber.App
	adminToken string
	userToken  string
	otherToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}}
	store := memory.New()
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users()})
	notifications := service.NewNotificationService(service.NotificationDependencies{Store: store.Notifications()})
	notifications.RegisterHandlers(dispatcher)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("storefront", "test", &persistence.Postgres{}, &persistence.Redis{}, metrics),
		Users:    handlers.NewUsersHandler(authService),
		Products: handlers.NewProductsHandler(service.NewProductService(store.Products())),
		Orders: handlers.NewOrdersHandler(service.NewOrderService(service.OrderDependencies{
			OrderRepo: store.Orders(), ProductRepo: store.Products(), Dispatcher: dispatcher,
		})),
		Tickets: handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{
			TicketRepo: store.Tickets(), UpdateRepo: store.TicketUpdates(), OrderRepo: store.Orders(), Dispatcher: dispatcher,
		})),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Analytics:      handlers.NewAnalyticsHandler(service.NewAnalyticsService(store.Orders(), store.Tickets())),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
	})

	_, err := authService.EnsureAdmin(ctx, config.AdminConfig{Name: "مدیر", Email: "admin@example.com", Password: "admin-password"})
	require.NoError(t, err)

	s := &testServer{app: app}
	s.adminToken = s.login(t, "admin@example.com", "admin-password")
	s.userToken = s.register(t, "Sara", "sara@example.com")
	s.otherToken = s.register(t, "Reza", "reza@example.com")
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) (int, map[string]any, nethttp.Header) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	status, body, _ := s.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{"name": name, "email": email, "password": "password1"})
	require.Equal(t, nethttp.StatusCreated, status, body)
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body, _ := s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, nethttp.StatusOK, status, body)
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func dataOf(body map[string]any) map[string]any {
	return body["data"].(map[string]any)
}

func errorCode(body map[string]any) string {
	return body["error"].(map[string]any)["code"].(string)
}

func (s *testServer) createProduct(t *testing.T, name string, price any) string {
	t.Helper()
	status, body, _ := s.do(t, nethttp.MethodPost, "/products", s.adminToken, map[string]any{"name": name, "price": price})
	require.Equal(t, nethttp.StatusCreated, status, body)
	return dataOf(body)["id"].(string)
}

func (s *testServer) createOrder(t *testing.T, token, productID string) map[string]any {
	t.Helper()
	status, body, _ := s.do(t, nethttp.MethodPost, "/orders", token, map[string]any{
		"items":           []map[string]any{{"productId": productID, "quantity": 1}},
		"shippingAddress": "تهران",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	return dataOf(body)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	status, body, _ := s.do(t, nethttp.MethodGet, "/orders", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _, _ = s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{"email": "sara@example.com", "password": "nope"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestOrderFlow(t *testing.T) {
	s := newTestServer(t)
	pending := s.createProduct(t, "Custom app", 0)
	priced := s.createProduct(t, "Hosting", 1250000)

	order := s.createOrder(t, s.userToken, pending)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "قیمت در انتظار تعیین", order["totalLabel"])
	assert.Equal(t, true, order["pricePending"])

	status, body, _ := s.do(t, nethttp.MethodPost, "/orders", s.userToken, map[string]any{
		"items":           []map[string]any{{"productId": pending, "quantity": 1}},
		"shippingAddress": "تهران",
	})
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	s.createOrder(t, s.otherToken, priced)

	status, body, _ = s.do(t, nethttp.MethodGet, "/orders", s.userToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, body, _ = s.do(t, nethttp.MethodGet, "/orders?status=PENDING&date=today&search=reza", s.adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	require.Len(t, body["orders"], 1)

	status, _, _ = s.do(t, nethttp.MethodGet, "/orders?date=decade", s.adminToken, nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	id := order["id"].(string)
	status, body, _ = s.do(t, nethttp.MethodPut, "/orders/"+id, s.userToken, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body, headers := s.do(t, nethttp.MethodPut, "/orders/"+id, s.adminToken, map[string]any{"status": "delivered", "total": 990000})
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Equal(t, "DELIVERED", dataOf(body)["status"])
	assert.Equal(t, `"2"`, headers.Get("ETag"))
	assert.Contains(t, dataOf(body)["totalLabel"], "تومان")

	status, body, _ = s.do(t, nethttp.MethodPut, "/orders/"+id, s.adminToken, map[string]any{"status": "PENDING"}, "If-Match", `"1"`)
	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body, _ = s.do(t, nethttp.MethodPut, "/orders/"+id, s.adminToken, map[string]any{"status": "PENDING"}, "If-Match", `"2"`)
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Equal(t, "PENDING", dataOf(body)["status"])

	status, _, _ = s.do(t, nethttp.MethodPut, "/orders/"+id, s.adminToken, map[string]any{"status": "LOST"})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _, _ = s.do(t, nethttp.MethodGet, "/orders/"+id, s.otherToken, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, body, _ = s.do(t, nethttp.MethodGet, "/notifications", s.userToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["notifications"], 4)
	assert.EqualValues(t, 4, body["unread"])

	status, _, _ = s.do(t, nethttp.MethodPost, "/notifications/read", s.userToken, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
	_, body, _ = s.do(t, nethttp.MethodGet, "/notifications", s.userToken, nil)
	assert.EqualValues(t, 0, body["unread"])
}

func TestTicketFlow(t *testing.T) {
	s := newTestServer(t)

	status, body, _ := s.do(t, nethttp.MethodPost, "/tickets", s.userToken, map[string]any{"subject": "test", "description": "test", "orderId": nil})
	require.Equal(t, nethttp.StatusCreated, status, body)
	ticket := dataOf(body)
	assert.Equal(t, "MEDIUM", ticket["priority"])
	assert.Equal(t, "OPEN", ticket["status"])
	id := ticket["id"].(string)

	status, _, _ = s.do(t, nethttp.MethodPost, "/tickets/"+id+"/messages", s.userToken, map[string]any{"message": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _, _ = s.do(t, nethttp.MethodPost, "/tickets/"+id+"/messages", s.userToken, map[string]any{"message": "hi", "isInternal": true})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _, _ = s.do(t, nethttp.MethodPost, "/tickets/"+id+"/messages", s.adminToken, map[string]any{"message": "VIP", "isInternal": true})
	require.Equal(t, nethttp.StatusCreated, status)
	status, body, _ = s.do(t, nethttp.MethodPost, "/tickets/"+id+"/messages", s.adminToken, map[string]any{"message": "on it"})
	require.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, "on it", dataOf(body)["message"])

	_, body, _ = s.do(t, nethttp.MethodGet, "/tickets/"+id, s.userToken, nil)
	assert.Len(t, dataOf(body)["updates"], 1)
	_, body, _ = s.do(t, nethttp.MethodGet, "/tickets/"+id, s.adminToken, nil)
	assert.Len(t, dataOf(body)["updates"], 2)

	status, _, _ = s.do(t, nethttp.MethodPut, "/tickets/"+id, s.userToken, map[string]any{"status": "CLOSED"})
	assert.Equal(t, nethttp.StatusForbidden, status)
	status, body, _ = s.do(t, nethttp.MethodPut, "/tickets/"+id, s.adminToken, map[string]any{"status": "closed"})
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Equal(t, "CLOSED", dataOf(body)["status"])

	status, _, _ = s.do(t, nethttp.MethodPost, "/tickets/"+id+"/messages", s.userToken, map[string]any{"message": "thanks"})
	assert.Equal(t, nethttp.StatusCreated, status)

	_, body, _ = s.do(t, nethttp.MethodGet, "/tickets?status=CLOSED", s.adminToken, nil)
	assert.Len(t, body["tickets"], 1)
	_, body, _ = s.do(t, nethttp.MethodGet, "/tickets", s.otherToken, nil)
	assert.Len(t, body["tickets"], 0)
	status, _, _ = s.do(t, nethttp.MethodGet, "/tickets/"+id, s.otherToken, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestAnalyticsAndHealth(t *testing.T) {
	s := newTestServer(t)
	product := s.createProduct(t, "Hosting", 100)
	s.createOrder(t, s.userToken, product)

	status, _, _ := s.do(t, nethttp.MethodGet, "/admin/analytics", s.userToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body, _ := s.do(t, nethttp.MethodGet, "/admin/analytics", s.adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	orders := dataOf(body)["orders"].(map[string]any)
	assert.EqualValues(t, 1, orders["total"])
	assert.Equal(t, "100", orders["revenue"])

	status, body, _ = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "memory", body["dependencies"].(map[string]any)["postgres"])

	status, body, _ = s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = s.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
