package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

var validWeekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

type Service struct {
	doctors         DoctorRepository
	specializations SpecializationRepository
	insurances      InsuranceRepository
}

func NewService(doctors DoctorRepository, specializations SpecializationRepository, insurances InsuranceRepository) *Service {
	return &Service{doctors: doctors, specializations: specializations, insurances: insurances}
}

// -- Doctors --

func (s *Service) ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, f, limit, offset)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	if d.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if d.SpecializationID == uuid.Nil {
		return nil, apperr.Validationf("specialization_id is required")
	}
	if _, err := s.specializations.GetByID(ctx, d.SpecializationID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validationf("unknown specialization_id")
		}
		return nil, err
	}
	for _, day := range d.Schedule {
		if !validWeekdays[day] {
			return nil, apperr.Validationf("invalid schedule day: %s", day)
		}
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in UpdateDoctorInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		d.Name = *in.Name
	}
	if in.SpecializationID != nil {
		if _, err := s.specializations.GetByID(ctx, *in.SpecializationID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validationf("unknown specialization_id")
			}
			return nil, err
		}
		d.SpecializationID = *in.SpecializationID
	}
	if in.Email != nil {
		d.Email = in.Email
	}
	if in.Phone != nil {
		d.Phone = in.Phone
	}
	if in.Schedule != nil {
		for _, day := range in.Schedule {
			if !validWeekdays[day] {
				return nil, apperr.Validationf("invalid schedule day: %s", day)
			}
		}
		d.Schedule = in.Schedule
	}

	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, id)
}

// -- Specializations --

func (s *Service) ListSpecializations(ctx context.Context, isActive *bool, limit, offset int) ([]*Specialization, int, error) {
	return s.specializations.List(ctx, isActive, limit, offset)
}

func (s *Service) GetSpecialization(ctx context.Context, id uuid.UUID) (*Specialization, error) {
	return s.specializations.GetByID(ctx, id)
}

func (s *Service) CreateSpecialization(ctx context.Context, sp *Specialization) (*Specialization, error) {
	if sp.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if _, err := s.specializations.GetByName(ctx, sp.Name); err == nil {
		return nil, apperr.Conflictf("specialization %q already exists", sp.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	sp.IsActive = true
	if err := s.specializations.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *Service) UpdateSpecialization(ctx context.Context, id uuid.UUID, in UpdateSpecializationInput) (*Specialization, error) {
	sp, err := s.specializations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != sp.Name {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		if _, err := s.specializations.GetByName(ctx, *in.Name); err == nil {
			return nil, apperr.Conflictf("specialization %q already exists", *in.Name)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		sp.Name = *in.Name
	}
	if in.IsActive != nil {
		sp.IsActive = *in.IsActive
	}
	if err := s.specializations.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *Service) DeleteSpecialization(ctx context.Context, id uuid.UUID) error {
	if _, err := s.specializations.GetByID(ctx, id); err != nil {
		return err
	}
	return s.specializations.Delete(ctx, id)
}

// -- Insurances --

func (s *Service) ListInsurances(ctx context.Context, isActive *bool, limit, offset int) ([]*Insurance, int, error) {
	return s.insurances.List(ctx, isActive, limit, offset)
}

func (s *Service) GetInsurance(ctx context.Context, id uuid.UUID) (*Insurance, error) {
	return s.insurances.GetByID(ctx, id)
}

func (s *Service) CreateInsurance(ctx context.Context, ins *Insurance) (*Insurance, error) {
	if ins.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if _, err := s.insurances.GetByName(ctx, ins.Name); err == nil {
		return nil, apperr.Conflictf("insurance %q already exists", ins.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	ins.IsActive = true
	if err := s.insurances.Create(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *Service) UpdateInsurance(ctx context.Context, id uuid.UUID, in UpdateInsuranceInput) (*Insurance, error) {
	ins, err := s.insurances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != ins.Name {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		if _, err := s.insurances.GetByName(ctx, *in.Name); err == nil {
			return nil, apperr.Conflictf("insurance %q already exists", *in.Name)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		ins.Name = *in.Name
	}
	if in.Description != nil {
		ins.Description = in.Description
	}
	if in.Coverage != nil {
		ins.Coverage = in.Coverage
	}
	if in.IsActive != nil {
		ins.IsActive = *in.IsActive
	}
	if err := s.insurances.Update(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *Service) DeleteInsurance(ctx context.Context, id uuid.UUID) error {
	if _, err := s.insurances.GetByID(ctx, id); err != nil {
		return err
	}
	return s.insurances.Delete(ctx, id)
}
