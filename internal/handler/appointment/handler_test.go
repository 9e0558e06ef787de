package appointment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbearia/internal/email"
	appointmentHandler "barbearia/internal/handler/appointment"
	healthHandler "barbearia/internal/handler/health"
	"barbearia/internal/middleware"
	"barbearia/internal/model"
	"barbearia/internal/repository/file"
	appointmentService "barbearia/internal/service/appointment"
	"barbearia/internal/service/notification"
	"barbearia/pkg/logger"
	"barbearia/pkg/messaging"
	"barbearia/pkg/metrics"
)

// failingSender simulates a broken SMTP relay.
type failingSender struct{}

func (failingSender) Send(ctx context.Context, msg *email.Message) error {
	return errors.New("transport down")
}

func newTestServer(t *testing.T, sender email.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	m := metrics.NewUnregistered("test")

	store, err := file.Open(filepath.Join(t.TempDir(), "agendamentos.json"), l, m)
	require.NoError(t, err)

	dispatcher := notification.NewDispatcher(sender, notification.Config{
		QueueSize:     8,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go dispatcher.Start(ctx)

	svc := appointmentService.NewService(store, dispatcher, messaging.NewNopBroker(), l, m)

	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	api := engine.Group("/api")
	appointmentHandler.NewHandler(svc, dispatcher).RegisterRoutes(api)
	healthHandler.NewHandler(store).RegisterRoutes(api)

	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func validPayload() map[string]any {
	return map[string]any{
		"name":         "João Silva",
		"phone":        "(31) 99999-9999",
		"email":        "joao@email.com",
		"service":      "Corte + Barba",
		"date":         "2025-01-01",
		"time":         "14:00",
		"servicePrice": 70,
	}
}

func decodeAppointment(t *testing.T, rec *httptest.ResponseRecorder) model.Appointment {
	t.Helper()
	var apt model.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apt))
	return apt
}

func TestCreateAppointment(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	rec := doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	apt := decodeAppointment(t, rec)
	assert.NotEmpty(t, apt.ID)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.False(t, apt.CreatedAt.IsZero())
}

func TestCreateAppointmentMissingFields(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	payload := validPayload()
	delete(payload, "name")
	delete(payload, "phone")

	rec := doRequest(t, engine, http.MethodPost, "/api/agendamentos", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "missing fields")
	assert.Contains(t, resp["error"], "name")
	assert.Contains(t, resp["error"], "phone")

	list := doRequest(t, engine, http.MethodGet, "/api/agendamentos", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, "[]", list.Body.String())
}

func TestCreateAppointmentRejectsUnknownStatus(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	payload := validPayload()
	payload["status"] = "WHATEVER"

	rec := doRequest(t, engine, http.MethodPost, "/api/agendamentos", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "invalid status")
}

func TestCreateAppointmentRejectsDuplicateID(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	payload := validPayload()
	payload["id"] = "dup-1"

	first := doRequest(t, engine, http.MethodPost, "/api/agendamentos", payload)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(t, engine, http.MethodPost, "/api/agendamentos", payload)
	assert.Equal(t, http.StatusBadRequest, second.Code)

	list := doRequest(t, engine, http.MethodGet, "/api/agendamentos", nil)
	var appointments []model.Appointment
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &appointments))
	assert.Len(t, appointments, 1)
}

func TestGetAppointmentNotFound(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	rec := doRequest(t, engine, http.MethodGet, "/api/agendamentos/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "appointment not found", resp["error"])
}

func TestUpdateAppointmentMergesFields(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	created := decodeAppointment(t, doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload()))

	rec := doRequest(t, engine, http.MethodPut, "/api/agendamentos/"+created.ID, map[string]any{
		"status": "CONFIRMED",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeAppointment(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	assert.Equal(t, created.Name, updated.Name)
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	rec := doRequest(t, engine, http.MethodPut, "/api/agendamentos/missing", map[string]any{
		"status": "CONFIRMED",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAppointment(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	created := decodeAppointment(t, doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload()))

	rec := doRequest(t, engine, http.MethodDelete, "/api/agendamentos/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	removed := decodeAppointment(t, rec)
	assert.Equal(t, created.ID, removed.ID)

	again := doRequest(t, engine, http.MethodDelete, "/api/agendamentos/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestDeleteAllAppointments(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	for i := 0; i < 2; i++ {
		doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload())
	}

	rec := doRequest(t, engine, http.MethodDelete, "/api/agendamentos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["deleted"])

	list := doRequest(t, engine, http.MethodGet, "/api/agendamentos", nil)
	assert.JSONEq(t, "[]", list.Body.String())
}

func TestListAppointmentsByDate(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload())
	other := validPayload()
	other["date"] = "2025-01-02"
	doRequest(t, engine, http.MethodPost, "/api/agendamentos", other)

	rec := doRequest(t, engine, http.MethodGet, "/api/agendamentos/data/2025-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appointments []model.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appointments))
	require.Len(t, appointments, 1)
	assert.Equal(t, "2025-01-02", appointments[0].Date)
}

func TestStatisticsEndpoint(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload())

	rec := doRequest(t, engine, http.MethodGet, "/api/estatisticas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.CountByService["Corte + Barba"])
}

func TestStatusEndpoint(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	rec := doRequest(t, engine, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "online", resp["status"])
	assert.EqualValues(t, 0, resp["totalAgendamentos"])
}

func TestConfirmationFailureDoesNotAffectBooking(t *testing.T) {
	engine := newTestServer(t, failingSender{})

	rec := doRequest(t, engine, http.MethodPost, "/api/agendamentos", validPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeAppointment(t, rec)

	// give the dispatcher time to fail the delivery
	time.Sleep(50 * time.Millisecond)

	got := doRequest(t, engine, http.MethodGet, "/api/agendamentos/"+created.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created.ID, decodeAppointment(t, got).ID)
}

func TestSendCampaign(t *testing.T) {
	engine := newTestServer(t, notification.NopSender{})

	rec := doRequest(t, engine, http.MethodPost, "/api/campanhas", map[string]any{
		"recipients": []string{"a@email.com", "not-an-address"},
		"subject":    "Promoção",
		"body":       "<p>Oferta para {{.Email}}</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.BulkSendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
}
