package stats

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard issues the five counts concurrently and fails fast on the first
// error.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Users, err = s.repo.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Doctors, err = s.repo.CountDoctors(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Participants, err = s.repo.CountParticipants(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Appointments, err = s.repo.CountAppointments(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Programs, err = s.repo.CountPrograms(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
