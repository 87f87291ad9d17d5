package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"omnisuite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator replays a scripted reply (or error) and counts calls.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeNotifier records deliveries and signals each one on a channel.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.AppointmentNotification
	err  error
	done chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (f *fakeNotifier) SendAppointmentConfirmation(_ context.Context, n models.AppointmentNotification) error {
	f.mu.Lock()
	f.sent = append(f.sent, n)
	err := f.err
	f.mu.Unlock()
	f.done <- struct{}{}
	return err
}

func (f *fakeNotifier) waitForDelivery(t *testing.T) models.AppointmentNotification {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never attempted")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTestService(t *testing.T, gen *fakeGenerator, notifier *fakeNotifier) (*DefaultChatService, *MemorySessionStore) {
	t.Helper()
	store := NewMemorySessionStore(time.Hour)
	t.Cleanup(store.Close)
	return &DefaultChatService{Store: store, Generator: gen, Notifier: notifier}, store
}

func TestHandleTurn_FreshSessionWelcome(t *testing.T) {
	gen := &fakeGenerator{reply: WelcomeMessage}
	svc, _ := newTestService(t, gen, newFakeNotifier())

	resp, err := svc.HandleTurn(context.Background(), "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, WelcomeMessage, resp.Message)
	assert.Equal(t, ServiceCatalog, resp.Suggestions)
	assert.Equal(t, 1, gen.callCount())
}

func TestHandleTurn_InvalidServiceSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{reply: "should not be used"}
	svc, store := newTestService(t, gen, newFakeNotifier())

	first, err := svc.HandleTurn(context.Background(), "", "")
	require.NoError(t, err)

	resp, err := svc.HandleTurn(context.Background(), "I want a pony", first.SessionID)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Please select one of the following")
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 1, gen.callCount(), "no generative call on rejected intake input")

	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageInitial, sess.Stage)
}

func TestHandleTurn_ValidServiceSelection(t *testing.T) {
	gen := &fakeGenerator{reply: "Happy to help with your brand."}
	svc, store := newTestService(t, gen, newFakeNotifier())

	first, err := svc.HandleTurn(context.Background(), "", "")
	require.NoError(t, err)

	resp, err := svc.HandleTurn(context.Background(), "brand", first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Happy to help with your brand.", resp.Message)
	assert.Empty(t, resp.Suggestions)

	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageConversational, sess.Stage)
	assert.Equal(t, "Brand", sess.Service)
}

func TestHandleTurn_ErrorClearedOnNextTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, store := newTestService(t, gen, newFakeNotifier())

	first, err := svc.HandleTurn(context.Background(), "", "")
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), "nope", first.SessionID)
	require.NoError(t, err)

	_, err = svc.HandleTurn(context.Background(), "Brand", first.SessionID)
	require.NoError(t, err)
	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.Empty(t, sess.LastError)
}

func TestHandleTurn_UnknownSessionSoftFails(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, _ := newTestService(t, gen, newFakeNotifier())

	resp, err := svc.HandleTurn(context.Background(), "hello", "missing-id")
	require.NoError(t, err)
	assert.Equal(t, SessionNotFoundReply, resp.Message)
	assert.Equal(t, "missing-id", resp.SessionID)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 0, gen.callCount())
}

func TestHandleTurn_UpstreamFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream exploded")}
	svc, store := newTestService(t, gen, newFakeNotifier())

	resp, err := svc.HandleTurn(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, resp.Message)

	// The fallback reply is still recorded so history stays consistent.
	sess, err := store.Get(resp.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.History, 1)
	assert.Equal(t, models.RoleAssistant, sess.History[0].Role)
	assert.Equal(t, FallbackReply, sess.History[0].Text)
	assert.Equal(t, 1, gen.callCount(), "failed calls are never retried")
}

func TestHandleTurn_HistoryStaysBounded(t *testing.T) {
	gen := &fakeGenerator{reply: "reply"}
	svc, store := newTestService(t, gen, newFakeNotifier())

	first, err := svc.HandleTurn(context.Background(), "Brand", "")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := svc.HandleTurn(context.Background(), fmt.Sprintf("question-%d", i), first.SessionID)
		require.NoError(t, err)
	}

	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sess.History), 15)
	// Most recent exchange is retained in order.
	assert.Equal(t, "question-19", sess.History[len(sess.History)-2].Text)
	assert.Equal(t, "reply", sess.History[len(sess.History)-1].Text)
}

func TestHandleTurn_ConcurrentSessionsDoNotInterleave(t *testing.T) {
	gen := &fakeGenerator{reply: "reply"}
	svc, store := newTestService(t, gen, newFakeNotifier())

	a, err := svc.HandleTurn(context.Background(), "Brand", "")
	require.NoError(t, err)
	b, err := svc.HandleTurn(context.Background(), "Website Design", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, c := range []struct{ id, prefix string }{
		{a.SessionID, "alpha"},
		{b.SessionID, "beta"},
	} {
		wg.Add(1)
		go func(id, prefix string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := svc.HandleTurn(context.Background(), fmt.Sprintf("%s-%d", prefix, i), id)
				assert.NoError(t, err)
			}
		}(c.id, c.prefix)
	}
	wg.Wait()

	sessA, err := store.Get(a.SessionID)
	require.NoError(t, err)
	for _, turn := range sessA.History {
		if turn.Role == models.RoleUser {
			assert.Contains(t, turn.Text, "alpha")
		}
	}
	sessB, err := store.Get(b.SessionID)
	require.NoError(t, err)
	for _, turn := range sessB.History {
		if turn.Role == models.RoleUser {
			assert.Contains(t, turn.Text, "beta")
		}
	}
}

func TestBookAppointment_InvalidDate(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{reply: "ok"}, newFakeNotifier())

	_, err := svc.BookAppointment(context.Background(), models.AppointmentRequest{
		SessionID:    "whatever",
		PreferredDay: "2025-13-40",
		Email:        "client@example.com",
	})
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "invalidDateFormat", validation.Code)
}

func TestBookAppointment_InvalidEmail(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{reply: "ok"}, newFakeNotifier())

	_, err := svc.BookAppointment(context.Background(), models.AppointmentRequest{
		SessionID:    "whatever",
		PreferredDay: "2025-06-01",
		Email:        "not-an-email",
	})
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "invalidEmail", validation.Code)
}

func TestBookAppointment_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{reply: "ok"}, newFakeNotifier())

	_, err := svc.BookAppointment(context.Background(), models.AppointmentRequest{
		SessionID:    "missing-id",
		PreferredDay: "2025-06-01",
		Email:        "client@example.com",
	})
	assert.ErrorAs(t, err, &SessionNotFoundError{})
}

func TestBookAppointment_RecordsContactAndConfirmation(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	notifier := newFakeNotifier()
	svc, store := newTestService(t, gen, notifier)

	first, err := svc.HandleTurn(context.Background(), "Brand", "")
	require.NoError(t, err)

	resp, err := svc.BookAppointment(context.Background(), models.AppointmentRequest{
		SessionID:     first.SessionID,
		PreferredDay:  "2025-06-01",
		PreferredTime: "10:00",
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "Appointment booked for 2025-06-01 at 10:00. We'll contact you to confirm!", resp.Message)

	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	require.NotNil(t, sess.Contact)
	assert.Equal(t, "Ada Lovelace", sess.Contact.FullName)
	assert.Equal(t, models.StageBooked, sess.Stage)

	confirmations := 0
	for _, turn := range sess.History {
		if turn.Text == resp.Message {
			confirmations++
		}
	}
	assert.Equal(t, 1, confirmations, "exactly one confirmation turn")

	sent := notifier.waitForDelivery(t)
	assert.Equal(t, first.SessionID, sent.SessionID)
	assert.Equal(t, "Brand", sent.Service)
	assert.Equal(t, "2025-06-01", sent.PreferredDay)
}

func TestBookAppointment_NotifierFailureDoesNotSurface(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	notifier := newFakeNotifier()
	notifier.err = errors.New("smtp down")
	svc, store := newTestService(t, gen, notifier)

	first, err := svc.HandleTurn(context.Background(), "Brand", "")
	require.NoError(t, err)

	resp, err := svc.BookAppointment(context.Background(), models.AppointmentRequest{
		SessionID:     first.SessionID,
		PreferredDay:  "2025-06-01",
		PreferredTime: "10:00",
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "555-0101",
	})
	require.NoError(t, err, "notification failures never reach the caller")
	assert.Contains(t, resp.Message, "Appointment booked")
	notifier.waitForDelivery(t)

	sess, err := store.Get(first.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, sess.Contact)
}
