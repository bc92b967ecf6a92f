package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/platform/auth"
)

// Service exposes read access to the audit trail. Only administrators may
// inspect it.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(ctx context.Context, actor auth.Actor, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, 0, apperr.Forbidden("only administrators may read the audit trail")
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByResource(ctx context.Context, actor auth.Actor, resource string, resourceID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, 0, apperr.Forbidden("only administrators may read the audit trail")
	}
	if !validResources[resource] {
		return nil, 0, apperr.Validation("unknown resource %q", resource)
	}
	return s.repo.ListByResource(ctx, resource, resourceID, limit, offset)
}
