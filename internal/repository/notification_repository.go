package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront-ir/storefront-service/internal/domain"
)

// NotificationRepository stores per-user notification inboxes, newest first.
type NotificationRepository interface {
	Push(ctx context.Context, notification *domain.Notification) error
	List(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
}

type notificationRepository struct {
	client     *redis.Client
	maxPerUser int64
}

// NewNotificationRepository returns a Redis-backed inbox that keeps at most maxPerUser entries.
func NewNotificationRepository(client *redis.Client, maxPerUser int) NotificationRepository {
	if maxPerUser <= 0 {
		maxPerUser = 100
	}
	return &notificationRepository{client: client, maxPerUser: int64(maxPerUser)}
}

func inboxKey(userID string) string {
	return "notifications:" + userID
}

func readMarkerKey(userID string) string {
	return "notifications:" + userID + ":read_at"
}

func (r *notificationRepository) Push(ctx context.Context, notification *domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := inboxKey(notification.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, r.maxPerUser-1)
		return nil
	})
	return err
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := r.client.LRange(ctx, inboxKey(userID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	readAt, err := r.readMarker(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		n.Read = !readAt.IsZero() && !n.CreatedAt.After(readAt)
		result = append(result, n)
	}
	return result, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	return r.client.Set(ctx, readMarkerKey(userID), strconv.FormatInt(at.UnixNano(), 10), 0).Err()
}

func (r *notificationRepository) readMarker(ctx context.Context, userID string) (time.Time, error) {
	val, err := r.client.Get(ctx, readMarkerKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, val), nil
}
