package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/platform/auth"
)

type mockRepo struct {
	mu         sync.Mutex
	entries    []*Entry
	insertErr  error
	byUser     map[uuid.UUID][]*Entry
	byResource map[string][]*Entry
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byUser:     make(map[uuid.UUID][]*Entry),
		byResource: make(map[string][]*Entry),
	}
}

func (m *mockRepo) Insert(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, entry)
	m.byUser[entry.UserID] = append(m.byUser[entry.UserID], entry)
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.byUser[userID]
	return items, len(items), nil
}

func (m *mockRepo) ListByResource(_ context.Context, resource string, resourceID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Entry
	for _, e := range m.entries {
		if e.Resource == resource && e.ResourceID != nil && *e.ResourceID == resourceID {
			items = append(items, e)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) stored() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func TestRecorder_RecordPersistsEntry(t *testing.T) {
	repo := newMockRepo()
	rec := NewRecorder(repo, zerolog.Nop())

	userID := uuid.New()
	apptID := uuid.New()
	rec.Record(RecordInput{
		UserID:     userID,
		Action:     ActionCreate,
		Resource:   ResourceAppointment,
		ResourceID: &apptID,
		Changes:    map[string]interface{}{"status": "scheduled"},
		IPAddress:  "10.0.0.1",
	})
	rec.Drain()

	entries := repo.stored()
	if len(entries) != 1 {
		t.Fatalf("stored = %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.UserID != userID || e.Action != ActionCreate || e.Resource != ResourceAppointment {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.ID == uuid.Nil {
		t.Error("expected generated entry id")
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("connection refused")
	rec := NewRecorder(repo, zerolog.Nop())

	rec.Record(RecordInput{
		UserID:   uuid.New(),
		Action:   ActionLogin,
		Resource: ResourceAuth,
	})
	rec.Drain()

	if len(repo.stored()) != 0 {
		t.Error("expected no entries stored")
	}
}

func TestRecorder_DropsInvalidInput(t *testing.T) {
	repo := newMockRepo()
	rec := NewRecorder(repo, zerolog.Nop())

	rec.Record(RecordInput{UserID: uuid.New(), Action: "explode", Resource: ResourceAuth})
	rec.Record(RecordInput{UserID: uuid.New(), Action: ActionCreate, Resource: "spaceship"})
	rec.Record(RecordInput{Action: ActionCreate, Resource: ResourceAppointment})
	rec.Drain()

	if len(repo.stored()) != 0 {
		t.Errorf("stored = %d entries, want 0", len(repo.stored()))
	}
}

func TestRecorder_ConcurrentRecords(t *testing.T) {
	repo := newMockRepo()
	rec := NewRecorder(repo, zerolog.Nop())

	userID := uuid.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record(RecordInput{UserID: userID, Action: ActionUpdate, Resource: ResourceAppointment})
		}()
	}
	wg.Wait()
	rec.Drain()

	if got := len(repo.stored()); got != 20 {
		t.Errorf("stored = %d entries, want 20", got)
	}
}

func TestService_ListRequiresAdmin(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	if _, _, err := svc.ListByUser(context.Background(), doctor, uuid.New(), 20, 0); !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}

	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	if _, _, err := svc.ListByUser(context.Background(), admin, uuid.New(), 20, 0); err != nil {
		t.Errorf("admin list failed: %v", err)
	}
}

func TestService_ListByResourceValidatesResource(t *testing.T) {
	svc := NewService(newMockRepo())
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	if _, _, err := svc.ListByResource(context.Background(), admin, "spaceship", uuid.New(), 20, 0); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
