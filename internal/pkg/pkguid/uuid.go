package pkguid

import (
	"log/slog"

	"github.com/google/uuid"
)

// UUID generates UUIDv7 strings, falling back to v4 when the v7 clock
// source fails.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		slog.Warn("uuid v7 unavailable, using v4", "error", err)
		return uuid.NewString()
	}
	return id.String()
}
