package trainer

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type CreateRequest struct {
	Name      string
	Specialty string
	Available *bool // defaults to true
}

type UpdateRequest struct {
	Name      *string
	Specialty *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Trainer, error)
	GetByID(ctx context.Context, id string) (*Trainer, error)
	List(ctx context.Context, filter Filter) ([]*Trainer, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Trainer, error)
	SetAvailability(ctx context.Context, id string, available bool) (*Trainer, error)

	// TrainerExists and IsAvailable form the directory view used by scheduling.
	TrainerExists(ctx context.Context, id string) (bool, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Trainer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Trainer{
		Name:      name,
		Specialty: strings.TrimSpace(req.Specialty),
		Available: true,
	}
	if req.Available != nil {
		t.Available = *req.Available
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("trainer created", zap.String("trainer_id", t.ID))
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Trainer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Trainer, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Trainer, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		t.Name = name
	}
	if req.Specialty != nil {
		t.Specialty = strings.TrimSpace(*req.Specialty)
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) SetAvailability(ctx context.Context, id string, available bool) (*Trainer, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Available == available {
		return t, nil
	}

	t.Available = available
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("trainer availability changed",
		zap.String("trainer_id", id),
		zap.Bool("available", available),
	)
	return t, nil
}

func (s *service) TrainerExists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) IsAvailable(ctx context.Context, id string) (bool, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return t.Available, nil
}
