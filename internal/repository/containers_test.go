package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/config"
	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/persistence"
)

// Postgres and Redis are started once for the package and shared by every test.
var (
	pgOnce    sync.Once
	pgPool    *pgxpool.Pool
	pgErr     error
	redisOnce sync.Once
	redisCli  *redis.Client
	redisErr  error

	startedMu sync.Mutex
	started   []tc.Container
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgPool != nil {
		pgPool.Close()
	}
	if redisCli != nil {
		_ = redisCli.Close()
	}
	for _, c := range started {
		_ = c.Terminate(context.Background())
	}
	os.Exit(code)
}

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)
}

// startContainer runs req and returns host:port of its exposed port.
func startContainer(ctx context.Context, req tc.ContainerRequest) (string, error) {
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if c != nil {
		startedMu.Lock()
		started = append(started, c)
		startedMu.Unlock()
	}
	if err != nil {
		return "", err
	}
	return c.Endpoint(ctx, "")
}

func startPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	addr, err := startContainer(ctx, tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "storefront",
			"POSTGRES_PASSWORD": "storefront",
			"POSTGRES_DB":       "storefront",
		},
		// the entrypoint restarts the server once after initdb
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	dsn := fmt.Sprintf("postgres://storefront:storefront@%s/storefront?sslmode=disable", addr)
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 8}, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := persistence.RunMigrations(ctx, pg.Pool, "../../migrations", zap.NewNop()); err != nil {
		pg.Close()
		return nil, err
	}
	return pg.Pool, nil
}

// postgresPool returns the shared pool with every table emptied.
func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	skipWithoutDocker(t)
	pgOnce.Do(func() { pgPool, pgErr = startPostgres(context.Background()) })
	require.NoError(t, pgErr)

	_, err := pgPool.Exec(context.Background(),
		`TRUNCATE ticket_updates, tickets, order_items, orders, products, users CASCADE`)
	require.NoError(t, err)
	return pgPool
}

// redisClient returns the shared client with the database flushed.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	skipWithoutDocker(t)
	redisOnce.Do(func() {
		ctx := context.Background()
		addr, err := startContainer(ctx, tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		})
		if err != nil {
			redisErr = fmt.Errorf("start redis: %w", err)
			return
		}
		r := persistence.NewRedis(config.RedisConfig{Addr: addr}, zap.NewNop())
		redisCli, redisErr = r.Client, r.Ping(ctx)
	})
	require.NoError(t, redisErr)
	require.NoError(t, redisCli.FlushDB(context.Background()).Err())
	return redisCli
}

func seedUser(t *testing.T, pool *pgxpool.Pool, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, NewUserRepository(pool).Create(context.Background(), u))
	return u
}

// setCreatedAt backdates a row so date range filters can be checked against fixed times.
func setCreatedAt(t *testing.T, pool *pgxpool.Pool, table, id string, at time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `UPDATE `+table+` SET created_at=$1, updated_at=$1 WHERE id=$2`, at, id)
	require.NoError(t, err)
}
