package analytics

import (
	"context"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/platform/auth"
)

const (
	frequentPatientLimit = 10
	newPatientWindowDays = 30
)

// Service exposes reporting aggregates to admins and doctors.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) allowed(actor auth.Actor) bool {
	return actor.Role == auth.RoleAdmin || actor.Role == auth.RoleDoctor
}

func (s *Service) Overview(ctx context.Context, actor auth.Actor) (*Overview, error) {
	if !s.allowed(actor) {
		return nil, apperr.Forbidden("not authorized to view analytics")
	}
	return s.repo.Overview(ctx)
}

func (s *Service) AppointmentBreakdown(ctx context.Context, actor auth.Actor, r DateRange) (*AppointmentBreakdown, error) {
	if !s.allowed(actor) {
		return nil, apperr.Forbidden("not authorized to view analytics")
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return nil, apperr.Validation("end date precedes start date")
	}
	return s.repo.AppointmentBreakdown(ctx, r)
}

func (s *Service) PatientStats(ctx context.Context, actor auth.Actor) (*PatientStats, error) {
	if !s.allowed(actor) {
		return nil, apperr.Forbidden("not authorized to view analytics")
	}
	return s.repo.PatientStats(ctx, frequentPatientLimit, newPatientWindowDays)
}
