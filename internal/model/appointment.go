package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// Valid reports whether s is one of the declared statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Appointment is a single client booking. Field names on the wire follow
// the web client (camelCase).
type Appointment struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Service      string            `json:"service"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	Notes        string            `json:"notes"`
	Status       AppointmentStatus `json:"status"`
	ServicePrice float64           `json:"servicePrice"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt,omitempty"`
}

type CreateAppointmentRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email" binding:"omitempty,email"`
	Service      string  `json:"service"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Notes        string  `json:"notes"`
	Status       string  `json:"status"`
	ServicePrice float64 `json:"servicePrice"`
}

// UpdateAppointmentRequest carries a partial patch. Nil fields are left
// untouched; id and createdAt are not representable here and therefore
// immutable.
type UpdateAppointmentRequest struct {
	Name         *string            `json:"name"`
	Phone        *string            `json:"phone"`
	Email        *string            `json:"email" binding:"omitempty,email"`
	Service      *string            `json:"service"`
	Date         *string            `json:"date"`
	Time         *string            `json:"time"`
	Notes        *string            `json:"notes"`
	Status       *AppointmentStatus `json:"status"`
	ServicePrice *float64           `json:"servicePrice"`
}

// Statistics is the read-only aggregation served by /api/estatisticas.
type Statistics struct {
	Total          int            `json:"total"`
	TodayCount     int            `json:"todayCount"`
	CountByService map[string]int `json:"countByService"`
	Recent         []Appointment  `json:"recent"`
}

// BulkSendResult aggregates per-recipient outcomes of a campaign send.
type BulkSendResult struct {
	Success int `json:"successCount"`
	Failed  int `json:"failureCount"`
	Total   int `json:"total"`
}
