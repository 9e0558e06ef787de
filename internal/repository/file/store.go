// Package file implements the appointment repository on top of a single
// JSON file. The whole collection is kept in memory and rewritten to disk
// wholesale on every mutation, with an atomic temp-and-rename replace so
// concurrent readers never observe a torn file.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"barbearia/internal/model"
	"barbearia/internal/repository"
	apperrors "barbearia/pkg/errors"
	"barbearia/pkg/logger"
	"barbearia/pkg/metrics"
)

// Store is the file-backed appointment repository. Mutations hold the write
// lock across the full read-modify-write-persist span, so the history of
// writes is serialized and a failed persist can roll the in-memory state
// back before anyone observes it.
//
// An empty path selects the in-memory mode: same semantics, nothing written
// to disk, every record lost on restart. Development only.
type Store struct {
	path    string
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	records []model.Appointment
}

// Open loads the collection from path. A missing file is first-ever
// initialization and starts an empty collection; a file that exists but
// does not parse is reported as corrupt, never silently emptied.
func Open(path string, l *logger.Logger, m *metrics.Metrics) (*Store, error) {
	s := &Store{
		path:    path,
		logger:  l,
		metrics: m,
		records: []model.Appointment{},
	}

	if path == "" {
		l.Warn("appointment store running in-memory, data will not survive a restart")
		return s, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, apperrors.StorageUnavailable(err)
	default:
		if err := json.Unmarshal(data, &s.records); err != nil {
			return nil, apperrors.StorageCorrupt(err)
		}
	}

	s.metrics.StoreRecords.Set(float64(len(s.records)))
	s.logger.Info("appointment store opened", "path", path, "records", len(s.records))
	return s, nil
}

func (s *Store) List(ctx context.Context) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *Store) Get(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			apt := s.records[i]
			return &apt, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []model.Appointment{}
	for _, apt := range s.records {
		if apt.Date == date {
			matched = append(matched, apt)
		}
	}
	return matched, nil
}

func (s *Store) Create(ctx context.Context, appointment *model.Appointment) error {
	timer := prometheus.NewTimer(s.metrics.StoreLatency.WithLabelValues("create"))
	defer timer.ObserveDuration()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == appointment.ID {
			s.metrics.StoreOperations.WithLabelValues("create", "error").Inc()
			return repository.ErrDuplicateID
		}
	}

	s.records = append(s.records, *appointment)
	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		s.metrics.StoreOperations.WithLabelValues("create", "error").Inc()
		return err
	}

	s.metrics.StoreOperations.WithLabelValues("create", "success").Inc()
	s.metrics.StoreRecords.Set(float64(len(s.records)))
	return nil
}

// Update applies mutate to the live record while the write lock is held,
// then persists. Two concurrent partial updates therefore compose instead
// of the later one clobbering the earlier. The returned record is the state
// after mutate.
func (s *Store) Update(ctx context.Context, id string, mutate func(*model.Appointment)) (*model.Appointment, error) {
	timer := prometheus.NewTimer(s.metrics.StoreLatency.WithLabelValues("update"))
	defer timer.ObserveDuration()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		prev := s.records[i]
		mutate(&s.records[i])
		// Mutators cannot reassign the id.
		s.records[i].ID = id
		if err := s.persistLocked(); err != nil {
			s.records[i] = prev
			s.metrics.StoreOperations.WithLabelValues("update", "error").Inc()
			return nil, err
		}
		updated := s.records[i]
		s.metrics.StoreOperations.WithLabelValues("update", "success").Inc()
		return &updated, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, id string) (*model.Appointment, error) {
	timer := prometheus.NewTimer(s.metrics.StoreLatency.WithLabelValues("delete"))
	defer timer.ObserveDuration()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		removed := s.records[i]
		s.records = append(s.records[:i], s.records[i+1:]...)
		if err := s.persistLocked(); err != nil {
			// Reinsert at the original position so rollback preserves order.
			s.records = append(s.records[:i], append([]model.Appointment{removed}, s.records[i:]...)...)
			s.metrics.StoreOperations.WithLabelValues("delete", "error").Inc()
			return nil, err
		}
		s.metrics.StoreOperations.WithLabelValues("delete", "success").Inc()
		s.metrics.StoreRecords.Set(float64(len(s.records)))
		return &removed, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records
	s.records = []model.Appointment{}
	if err := s.persistLocked(); err != nil {
		s.records = prev
		s.metrics.StoreOperations.WithLabelValues("delete_all", "error").Inc()
		return 0, err
	}

	s.metrics.StoreOperations.WithLabelValues("delete_all", "success").Inc()
	s.metrics.StoreRecords.Set(0)
	return len(prev), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *Store) snapshotLocked() []model.Appointment {
	out := make([]model.Appointment, len(s.records))
	copy(out, s.records)
	return out
}

// persistLocked writes the full collection to a temp file in the target
// directory and renames it over the real one. Callers must hold the write
// lock.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return apperrors.StorageWrite(err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".agendamentos-*.json")
	if err != nil {
		return apperrors.StorageWrite(err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperrors.StorageWrite(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperrors.StorageWrite(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperrors.StorageWrite(err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return apperrors.StorageWrite(err)
	}
	return nil
}

var _ repository.AppointmentRepository = (*Store)(nil)
