package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"barbearia/internal/model"
	"barbearia/internal/repository"
	"barbearia/internal/service/notification"
	apperrors "barbearia/pkg/errors"
	"barbearia/pkg/logger"
	"barbearia/pkg/messaging"
	"barbearia/pkg/metrics"
)

const (
	statsCacheKey = "statistics"
	statsCacheTTL = 30 * time.Second
	recentCount   = 5

	dateLayout = "2006-01-02"
)

// Event channels published after each committed mutation.
const (
	EventCreated = "agendamentos.created"
	EventUpdated = "agendamentos.updated"
	EventDeleted = "agendamentos.deleted"
)

// Service owns the appointment lifecycle: validation, defaulting,
// persistence through the repository and the post-commit side effects
// (confirmation email, broker event). Side effects run after the write is
// durable and never influence the result returned to the caller.
type Service struct {
	repo       repository.AppointmentRepository
	dispatcher notification.Service
	broker     messaging.Broker
	logger     *logger.Logger
	metrics    *metrics.Metrics
	statsCache *cache.Cache
	now        func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	dispatcher notification.Service,
	broker messaging.Broker,
	l *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		broker:     broker,
		logger:     l,
		metrics:    m,
		statsCache: cache.New(statsCacheTTL, 2*statsCacheTTL),
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Appointment, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	appointments, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

// Create validates and persists a new appointment, then hands it to the
// dispatcher. The confirmation email is best effort; by the time it is
// attempted the record is already durable.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	nowTs := s.now()
	apt := &model.Appointment{
		ID:           req.ID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Service:      req.Service,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
		Status:       model.AppointmentStatusPending,
		ServicePrice: req.ServicePrice,
		CreatedAt:    nowTs,
		UpdatedAt:    nowTs,
	}
	if apt.ID == "" {
		apt.ID = uuid.NewString()
	}
	if req.Status != "" {
		apt.Status = model.AppointmentStatus(req.Status)
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, apperrors.Validation("appointment id already exists", err)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	s.statsCache.Delete(statsCacheKey)

	s.dispatcher.SendConfirmation(apt)
	s.publish(EventCreated, apt)

	return apt, nil
}

// Update merges the patch onto the stored record. id and createdAt are
// immutable; fields absent from the patch keep their current values. The
// merge runs inside the repository's lock, so concurrent patches to
// different fields of one record both land.
func (s *Service) Update(ctx context.Context, id string, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperrors.Validation("invalid status: "+string(*req.Status), nil)
	}

	updated, err := s.repo.Update(ctx, id, func(apt *model.Appointment) {
		applyPatch(apt, req)
		apt.UpdatedAt = s.now()
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	s.statsCache.Delete(statsCacheKey)

	s.publish(EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*model.Appointment, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to delete appointment: %w", err)
	}
	s.statsCache.Delete(statsCacheKey)

	s.publish(EventDeleted, removed)
	return removed, nil
}

func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete appointments: %w", err)
	}
	s.statsCache.Delete(statsCacheKey)
	return count, nil
}

// Statistics aggregates over the whole collection. The result is cached
// briefly and invalidated by every mutation.
func (s *Service) Statistics(ctx context.Context) (*model.Statistics, error) {
	if cached, ok := s.statsCache.Get(statsCacheKey); ok {
		return cached.(*model.Statistics), nil
	}

	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	stats := computeStatistics(appointments, s.now().Format(dateLayout))
	s.statsCache.Set(statsCacheKey, stats, cache.DefaultExpiration)
	return stats, nil
}

func computeStatistics(appointments []model.Appointment, today string) *model.Statistics {
	stats := &model.Statistics{
		Total:          len(appointments),
		CountByService: map[string]int{},
		Recent:         []model.Appointment{},
	}

	for _, apt := range appointments {
		if apt.Date == today {
			stats.TodayCount++
		}
		stats.CountByService[apt.Service]++
	}

	for i := len(appointments) - 1; i >= 0 && len(stats.Recent) < recentCount; i-- {
		stats.Recent = append(stats.Recent, appointments[i])
	}
	return stats
}

func validateCreate(req *model.CreateAppointmentRequest) error {
	var missing []string
	for field, value := range map[string]string{
		"name":    req.Name,
		"phone":   req.Phone,
		"email":   req.Email,
		"service": req.Service,
		"date":    req.Date,
		"time":    req.Time,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.Validation("missing fields: "+strings.Join(missing, ", "), nil)
	}

	if req.Status != "" && !model.AppointmentStatus(req.Status).Valid() {
		return apperrors.Validation("invalid status: "+req.Status, nil)
	}
	return nil
}

func applyPatch(apt *model.Appointment, req *model.UpdateAppointmentRequest) {
	if req.Name != nil {
		apt.Name = *req.Name
	}
	if req.Phone != nil {
		apt.Phone = *req.Phone
	}
	if req.Email != nil {
		apt.Email = *req.Email
	}
	if req.Service != nil {
		apt.Service = *req.Service
	}
	if req.Date != nil {
		apt.Date = *req.Date
	}
	if req.Time != nil {
		apt.Time = *req.Time
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.ServicePrice != nil {
		apt.ServicePrice = *req.ServicePrice
	}
}

// publish reports the mutation to the broker without tying its outcome to
// the API response.
func (s *Service) publish(eventType string, apt *model.Appointment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.broker.Publish(ctx, eventType, apt); err != nil {
			s.metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
			s.logger.Error(err, "failed to publish appointment event",
				"event_type", eventType, "appointment_id", apt.ID)
			return
		}
		s.metrics.EventsPublished.WithLabelValues(eventType, "success").Inc()
	}()
}
