package notification

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbearia/internal/email"
	"barbearia/internal/model"
	"barbearia/pkg/logger"
	"barbearia/pkg/metrics"
)

// fakeSender records outgoing messages and can fail on demand.
type fakeSender struct {
	mu       sync.Mutex
	sent     []*email.Message
	failFor  map[string]error
	failAll  error
	delivery chan *email.Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		failFor:  map[string]error{},
		delivery: make(chan *email.Message, 16),
	}
}

func (f *fakeSender) Send(ctx context.Context, msg *email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll != nil {
		return f.failAll
	}
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}

	f.sent = append(f.sent, msg)
	f.delivery <- msg
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testDispatcher(t *testing.T, sender email.Service) *Dispatcher {
	t.Helper()

	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	return NewDispatcher(sender, Config{
		QueueSize:     8,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, l, metrics.NewUnregistered("test"))
}

func sampleAppointment() *model.Appointment {
	return &model.Appointment{
		ID:      "apt-1",
		Name:    "João Silva",
		Phone:   "(31) 99999-9999",
		Email:   "joao@email.com",
		Service: "Corte + Barba",
		Date:    "2025-01-01",
		Time:    "14:00",
		Notes:   "Primeiro cliente",
	}
}

func TestConfirmationIsDelivered(t *testing.T) {
	sender := newFakeSender()
	d := testDispatcher(t, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	d.SendConfirmation(sampleAppointment())

	select {
	case msg := <-sender.delivery:
		assert.Equal(t, "joao@email.com", msg.To)
		assert.Contains(t, msg.Subject, "Corte + Barba")
		assert.Contains(t, msg.HTMLBody, "14:00")
		assert.Contains(t, msg.HTMLBody, "Primeiro cliente")
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was never delivered")
	}
}

func TestConfirmationFailureIsSwallowed(t *testing.T) {
	sender := newFakeSender()
	sender.failAll = errors.New("transport down")
	d := testDispatcher(t, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	// Must not panic, block, or surface anywhere; the booking response has
	// already been written by the time delivery is attempted.
	d.SendConfirmation(sampleAppointment())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sender.sentCount())
}

func TestConfirmationSkipsInvalidRecipient(t *testing.T) {
	sender := newFakeSender()
	d := testDispatcher(t, sender)

	apt := sampleAppointment()
	apt.Email = "not-an-address"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	d.SendConfirmation(apt)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sender.sentCount())
}

func TestQueueFullDropsInsteadOfBlocking(t *testing.T) {
	sender := newFakeSender()
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	d := NewDispatcher(sender, Config{QueueSize: 1, RetryAttempts: 1}, l, metrics.NewUnregistered("test"))

	// Worker never started: the second enqueue must drop, not block.
	done := make(chan struct{})
	go func() {
		d.SendConfirmation(sampleAppointment())
		d.SendConfirmation(sampleAppointment())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendConfirmation blocked on a full queue")
	}
}

func TestSendBulkIsolatesFailures(t *testing.T) {
	sender := newFakeSender()
	sender.failFor["broken@email.com"] = errors.New("mailbox unavailable")
	d := testDispatcher(t, sender)

	recipients := []string{
		"a@email.com",
		"not-an-address",
		"broken@email.com",
		"b@email.com",
	}

	result := d.SendBulk(context.Background(), recipients, "Promoção", "<p>Oferta para {{.Email}}</p>")

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)

	for _, msg := range sender.sent {
		assert.True(t, strings.Contains(msg.HTMLBody, msg.To))
	}
}

func TestSendBulkBadTemplateCountsAsFailure(t *testing.T) {
	sender := newFakeSender()
	d := testDispatcher(t, sender)

	result := d.SendBulk(context.Background(), []string{"a@email.com"}, "Promoção", "{{.Missing")

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Failed)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	var mu sync.Mutex
	sender := senderFunc(func(ctx context.Context, msg *email.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("temporary failure")
		}
		return nil
	})

	d := testDispatcher(t, sender)
	err := d.sendWithRetry(context.Background(), &email.Message{To: "a@email.com"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

type senderFunc func(ctx context.Context, msg *email.Message) error

func (f senderFunc) Send(ctx context.Context, msg *email.Message) error {
	return f(ctx, msg)
}
