package analytics

import "context"

type Repository interface {
	Overview(ctx context.Context) (*Overview, error)
	AppointmentBreakdown(ctx context.Context, r DateRange) (*AppointmentBreakdown, error)
	PatientStats(ctx context.Context, frequentLimit int, newSince int) (*PatientStats, error)
}
