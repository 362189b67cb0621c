package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/domain"
	"github.com/storefront-ir/storefront-service/internal/events"
	apperrors "github.com/storefront-ir/storefront-service/pkg/util/errorutil"
)

// publisher stamps and publishes events once the change they describe has been committed.
type publisher struct {
	dispatcher events.Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func requireUser(caller *domain.User) error {
	if caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func requireAdmin(caller *domain.User) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}

// canSee reports whether caller may read a record owned by ownerID.
func canSee(caller *domain.User, ownerID string) bool {
	return caller.IsAdmin() || caller.ID == ownerID
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
