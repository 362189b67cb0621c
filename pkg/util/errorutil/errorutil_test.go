package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain error passes through", NewConflict("duplicate", nil), http.StatusConflict, "CONFLICT"},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewForbidden("no")), http.StatusForbidden, "FORBIDDEN"},
		{"pgx no rows", pgx.ErrNoRows, http.StatusNotFound, "NOT_FOUND"},
		{"memory not found", fmt.Errorf("get order: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"fiber error", fiber.NewError(http.StatusForbidden, "admin required"), http.StatusForbidden, "FORBIDDEN"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestMapErrorKeepsNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}

func TestNotFoundOr(t *testing.T) {
	err := NotFoundOr(ErrNotFound, "order", "o-1")
	de := ToDomainError(err)
	assert.Equal(t, "order not found", de.Message)
	assert.Equal(t, "o-1", de.Details["id"])

	assert.NoError(t, NotFoundOr(nil, "order", "o-1"))
	assert.Equal(t, http.StatusInternalServerError, ToDomainError(NotFoundOr(errors.New("down"), "order", "o-1")).HTTPStatus)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	err := fmt.Errorf("get: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(&pgconn.PgError{Code: "23505"}))
}
