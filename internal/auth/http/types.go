package http

import (
	"context"

	"github.com/folio-review/folio-backend/internal/users"
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

type Handler struct {
	users UserReader
}

func New(users UserReader) *Handler {
	return &Handler{users: users}
}
