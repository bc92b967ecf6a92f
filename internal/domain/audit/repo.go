package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	ListByResource(ctx context.Context, resource string, resourceID uuid.UUID, limit, offset int) ([]*Entry, int, error)
}
