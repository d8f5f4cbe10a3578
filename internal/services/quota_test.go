package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"qwikstudi-backend/internal/models"
)

// memoryProfileStore mirrors the upsert semantics of the Postgres repo so
// quota logic can be exercised without a database.
type memoryProfileStore struct {
	profiles map[uuid.UUID]*models.UserProfile
}

func newMemoryProfileStore() *memoryProfileStore {
	return &memoryProfileStore{profiles: make(map[uuid.UUID]*models.UserProfile)}
}

func (m *memoryProfileStore) GetOrCreate(_ context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.UserProfile{UserID: userID}
		m.profiles[userID] = p
	}
	clone := *p
	return &clone, nil
}

func (m *memoryProfileStore) SetPremium(_ context.Context, userID uuid.UUID, expiry time.Time) error {
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.UserProfile{UserID: userID}
		m.profiles[userID] = p
	}
	p.IsPremium = true
	p.PremiumExpiry = &expiry
	return nil
}

func (m *memoryProfileStore) Downgrade(_ context.Context, userID uuid.UUID) error {
	if p, ok := m.profiles[userID]; ok {
		p.IsPremium = false
		p.PremiumExpiry = nil
	}
	return nil
}

func (m *memoryProfileStore) AddQuestionsGenerated(_ context.Context, userID uuid.UUID, count int) error {
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.UserProfile{UserID: userID}
		m.profiles[userID] = p
	}
	p.QuestionsGenerated += count
	return nil
}

func (m *memoryProfileStore) AddAudioMinutes(_ context.Context, userID uuid.UUID, minutes float64) error {
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.UserProfile{UserID: userID}
		m.profiles[userID] = p
	}
	p.AudioMinutesUsed += minutes
	return nil
}

func newTestQuota(store *memoryProfileStore) *QuotaService {
	return NewQuotaService(store, nil, 10, 20, 10)
}

func TestRecordQuestions_PremiumNotMetered(t *testing.T) {
	ctx := context.Background()
	store := newMemoryProfileStore()
	quota := newTestQuota(store)
	userID := uuid.New()

	expiry := time.Now().Add(24 * time.Hour)
	if err := store.SetPremium(ctx, userID, expiry); err != nil {
		t.Fatalf("SetPremium failed: %v", err)
	}

	if err := quota.RecordQuestions(ctx, userID, 50); err != nil {
		t.Fatalf("RecordQuestions failed: %v", err)
	}
	if got := store.profiles[userID].QuestionsGenerated; got != 0 {
		t.Errorf("Premium usage should not be counted, got %d", got)
	}
}

func TestRecordQuestions_FreeUserMetered(t *testing.T) {
	ctx := context.Background()
	store := newMemoryProfileStore()
	quota := newTestQuota(store)
	userID := uuid.New()

	if err := quota.RecordQuestions(ctx, userID, 5); err != nil {
		t.Fatalf("RecordQuestions failed: %v", err)
	}
	if err := quota.RecordQuestions(ctx, userID, 3); err != nil {
		t.Fatalf("RecordQuestions failed: %v", err)
	}
	if got := store.profiles[userID].QuestionsGenerated; got != 8 {
		t.Errorf("Expected counter 8, got %d", got)
	}
}

func TestQuestionAllowance_AfterPremiumLapse(t *testing.T) {
	ctx := context.Background()
	store := newMemoryProfileStore()
	quota := newTestQuota(store)
	userID := uuid.New()

	// Heavy usage during an active subscription.
	if err := store.SetPremium(ctx, userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetPremium failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := quota.RecordQuestions(ctx, userID, 10); err != nil {
			t.Fatalf("RecordQuestions failed: %v", err)
		}
	}

	// Subscription lapses; the lazy downgrade should leave the full free
	// allowance intact.
	past := time.Now().Add(-time.Hour)
	store.profiles[userID].PremiumExpiry = &past

	if err := quota.CheckQuestionAllowance(ctx, userID, "mcq", 10); err != nil {
		t.Fatalf("Expected lapsed user to keep their free allowance, got %v", err)
	}
	if store.profiles[userID].IsPremium {
		t.Error("Expected lazy downgrade to clear the premium flag")
	}

	// The free cap still applies to usage recorded after the lapse.
	if err := quota.RecordQuestions(ctx, userID, 20); err != nil {
		t.Fatalf("RecordQuestions failed: %v", err)
	}
	err := quota.CheckQuestionAllowance(ctx, userID, "mcq", 1)
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("Expected ForbiddenError over the free cap, got %v", err)
	}
}

func TestRecordAudioMinutes_PremiumNotMetered(t *testing.T) {
	ctx := context.Background()
	store := newMemoryProfileStore()
	quota := newTestQuota(store)
	userID := uuid.New()

	if err := store.SetPremium(ctx, userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetPremium failed: %v", err)
	}
	if err := quota.RecordAudioMinutes(ctx, userID, 42.5); err != nil {
		t.Fatalf("RecordAudioMinutes failed: %v", err)
	}
	if got := store.profiles[userID].AudioMinutesUsed; got != 0 {
		t.Errorf("Premium minutes should not be counted, got %f", got)
	}

	// After the lapse the meter starts from zero.
	past := time.Now().Add(-time.Hour)
	store.profiles[userID].PremiumExpiry = &past

	remaining, err := quota.CheckAudioAllowance(ctx, userID, 2.0)
	if err != nil {
		t.Fatalf("Expected lapsed user to keep their free minutes, got %v", err)
	}
	if remaining != 8.0 {
		t.Errorf("Expected 8 minutes remaining, got %f", remaining)
	}
}

func TestRecordAudioMinutes_FreeUserMetered(t *testing.T) {
	ctx := context.Background()
	store := newMemoryProfileStore()
	quota := newTestQuota(store)
	userID := uuid.New()

	if err := quota.RecordAudioMinutes(ctx, userID, 1.5); err != nil {
		t.Fatalf("RecordAudioMinutes failed: %v", err)
	}
	if got := store.profiles[userID].AudioMinutesUsed; got != 1.5 {
		t.Errorf("Expected 1.5 minutes recorded, got %f", got)
	}
}
