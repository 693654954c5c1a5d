package boat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/owt-boats/app/observability/metrics"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the boat lifecycle. Callers are expected to have passed the
// authorization gate already.
type Service interface {
	ListBoats(ctx context.Context) ([]types.Boat, error)
	GetBoat(ctx context.Context, id int64) (*types.Boat, error)
	CreateBoat(ctx context.Context, in types.BoatInput) (*types.Boat, error)
	UpdateBoat(ctx context.Context, id int64, in types.BoatInput) (*types.Boat, error)
	DeleteBoat(ctx context.Context, id int64) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

// NewServiceImpl creates a new instance of ServiceImpl
func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *ServiceImpl) WithClock(now func() time.Time) *ServiceImpl {
	s.now = now
	return s
}

func tracer() trace.Tracer {
	return otel.Tracer("BoatService")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func finish(ctx context.Context, span trace.Span, op string, err error) {
	metrics.RecordBoatOperation(ctx, op, outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, op+" succeeded")
}

func validate(in types.BoatInput) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrValidation, err)
	}
	return nil
}

func (s *ServiceImpl) ListBoats(ctx context.Context) (boats []types.Boat, err error) {
	ctx, span := tracer().Start(ctx, "ListBoats")
	defer span.End()
	defer func() { finish(ctx, span, "list", err) }()

	boats, err = s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list boats", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list boats: %w", err)
	}
	span.SetAttributes(attribute.Int("boats.count", len(boats)))
	return boats, nil
}

func (s *ServiceImpl) GetBoat(ctx context.Context, id int64) (boat *types.Boat, err error) {
	ctx, span := tracer().Start(ctx, "GetBoat", trace.WithAttributes(attribute.Int64("boat.id", id)))
	defer span.End()
	defer func() { finish(ctx, span, "get", err) }()

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBoat validates the input before touching the store.
func (s *ServiceImpl) CreateBoat(ctx context.Context, in types.BoatInput) (boat *types.Boat, err error) {
	ctx, span := tracer().Start(ctx, "CreateBoat", trace.WithAttributes(attribute.String("boat.name", in.Name)))
	defer span.End()
	defer func() { finish(ctx, span, "create", err) }()

	l := s.logger.With(slog.String("method", "CreateBoat"))

	if err = validate(in); err != nil {
		l.DebugContext(ctx, "Rejected boat input", slog.Any("error", err))
		return nil, err
	}

	saved, err := s.repo.Save(ctx, types.NewBoat(in, s.now()))
	if err != nil {
		l.ErrorContext(ctx, "Failed to save boat", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create boat: %w", err)
	}

	l.InfoContext(ctx, "Boat created", slog.Int64("id", saved.ID))
	span.SetAttributes(attribute.Int64("boat.id", saved.ID))
	return &saved, nil
}

// UpdateBoat is a full replace of the editable fields. A missing boat is
// reported before the input is validated.
func (s *ServiceImpl) UpdateBoat(ctx context.Context, id int64, in types.BoatInput) (boat *types.Boat, err error) {
	ctx, span := tracer().Start(ctx, "UpdateBoat", trace.WithAttributes(attribute.Int64("boat.id", id)))
	defer span.End()
	defer func() { finish(ctx, span, "update", err) }()

	l := s.logger.With(slog.String("method", "UpdateBoat"), slog.Int64("id", id))

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = validate(in); err != nil {
		l.DebugContext(ctx, "Rejected boat input", slog.Any("error", err))
		return nil, err
	}

	saved, err := s.repo.Save(ctx, types.Merge(existing, in, s.now()))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// deleted between the read and the write
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to save boat", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update boat: %w", err)
	}

	l.InfoContext(ctx, "Boat updated")
	return &saved, nil
}

func (s *ServiceImpl) DeleteBoat(ctx context.Context, id int64) (err error) {
	ctx, span := tracer().Start(ctx, "DeleteBoat", trace.WithAttributes(attribute.Int64("boat.id", id)))
	defer span.End()
	defer func() { finish(ctx, span, "delete", err) }()

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete boat: %w", err)
	}
	if !exists {
		return fmt.Errorf("boat %d: %w", id, types.ErrNotFound)
	}
	if err = s.repo.DeleteByID(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete boat", slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("failed to delete boat: %w", err)
	}
	s.logger.InfoContext(ctx, "Boat deleted", slog.Int64("id", id))
	return nil
}
