package repository

import (
	"context"
	"errors"

	"barbearia/internal/model"
)

// ErrNotFound is returned by point operations when no record carries the
// given id.
var ErrNotFound = errors.New("appointment not found")

// ErrDuplicateID is returned by Create when a record with the same id is
// already live.
var ErrDuplicateID = errors.New("appointment id already exists")

// AppointmentRepository owns the persisted appointment collection. All
// mutations go through it; no other component touches the backing store.
//
// Update takes a mutator instead of a replacement record so the
// read-modify-write span runs inside the repository's own lock; callers
// never merge against a stale read.
type AppointmentRepository interface {
	List(ctx context.Context) ([]model.Appointment, error)
	Get(ctx context.Context, id string) (*model.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]model.Appointment, error)
	Create(ctx context.Context, appointment *model.Appointment) error
	Update(ctx context.Context, id string, mutate func(*model.Appointment)) (*model.Appointment, error)
	Delete(ctx context.Context, id string) (*model.Appointment, error)
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}
