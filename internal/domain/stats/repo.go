package stats

import "context"

// Repository counts rows per entity. Each method is a single COUNT query so
// the service can fan them out concurrently.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountDoctors(ctx context.Context) (int, error)
	CountParticipants(ctx context.Context) (int, error)
	CountAppointments(ctx context.Context) (int, error)
	CountPrograms(ctx context.Context) (int, error)
}
