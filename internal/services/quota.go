package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qwikstudi-backend/internal/llmtext"
	"qwikstudi-backend/internal/models"
	"qwikstudi-backend/internal/repository"
)

// ProfileStore is the quota profile persistence QuotaService needs.
// Satisfied by repository.ProfileRepo.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	SetPremium(ctx context.Context, userID uuid.UUID, expiry time.Time) error
	Downgrade(ctx context.Context, userID uuid.UUID) error
	AddQuestionsGenerated(ctx context.Context, userID uuid.UUID, count int) error
	AddAudioMinutes(ctx context.Context, userID uuid.UUID, minutes float64) error
}

// QuotaService owns the free-tier limits: generated questions, audio
// minutes and guest chats. Premium users bypass the first two.
type QuotaService struct {
	profileRepo ProfileStore
	guestRepo   *repository.GuestRepo

	guestChatLimit   int
	freeQuestionCap  int
	freeAudioMinutes float64
}

func NewQuotaService(profileRepo ProfileStore, guestRepo *repository.GuestRepo, guestChatLimit, freeQuestionCap, freeAudioMinutes int) *QuotaService {
	return &QuotaService{
		profileRepo:      profileRepo,
		guestRepo:        guestRepo,
		guestChatLimit:   guestChatLimit,
		freeQuestionCap:  freeQuestionCap,
		freeAudioMinutes: float64(freeAudioMinutes),
	}
}

// IsPremium reports the user's subscription state, downgrading lazily when
// the premium window has lapsed.
func (s *QuotaService) IsPremium(ctx context.Context, userID uuid.UUID) (bool, *time.Time, error) {
	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return false, nil, err
	}

	if profile.IsPremium && profile.PremiumExpiry != nil && profile.PremiumExpiry.Before(time.Now()) {
		if err := s.profileRepo.Downgrade(ctx, userID); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	return profile.IsPremium, profile.PremiumExpiry, nil
}

// ExtendPremium grants days of premium, stacking on top of an unexpired
// subscription rather than restarting it.
func (s *QuotaService) ExtendPremium(ctx context.Context, userID uuid.UUID, days int) error {
	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	start := time.Now()
	if profile.IsPremium && profile.PremiumExpiry != nil && profile.PremiumExpiry.After(start) {
		start = *profile.PremiumExpiry
	}

	return s.profileRepo.SetPremium(ctx, userID, start.AddDate(0, 0, days))
}

// CheckQuestionAllowance gates quiz generation. Premium-only question types
// and the free question cap both surface as ForbiddenError so the frontend
// can show the upgrade prompt.
func (s *QuotaService) CheckQuestionAllowance(ctx context.Context, userID uuid.UUID, questionType llmtext.QuestionType, count int) error {
	premium, _, err := s.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if premium {
		return nil
	}

	if questionType.Premium() {
		return &ForbiddenError{Message: fmt.Sprintf("%s questions require a premium subscription", questionType)}
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if profile.QuestionsGenerated+count > s.freeQuestionCap {
		return &ForbiddenError{Message: fmt.Sprintf("Free tier is limited to %d generated questions. Upgrade to premium for unlimited quizzes.", s.freeQuestionCap)}
	}
	return nil
}

// RecordQuestions adds to the free-tier counter. Premium usage is not
// metered, otherwise a lapsed subscription would start over the cap.
func (s *QuotaService) RecordQuestions(ctx context.Context, userID uuid.UUID, count int) error {
	premium, _, err := s.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if premium {
		return nil
	}
	return s.profileRepo.AddQuestionsGenerated(ctx, userID, count)
}

// CheckAudioAllowance gates TTS by estimated minutes and returns the free
// minutes left after this request.
func (s *QuotaService) CheckAudioAllowance(ctx context.Context, userID uuid.UUID, estimatedMinutes float64) (float64, error) {
	premium, _, err := s.IsPremium(ctx, userID)
	if err != nil {
		return 0, err
	}
	if premium {
		return s.freeAudioMinutes, nil
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if profile.AudioMinutesUsed+estimatedMinutes > s.freeAudioMinutes {
		return 0, &ForbiddenError{Message: fmt.Sprintf("Free tier is limited to %.0f minutes of audio. Upgrade to premium for unlimited text to speech.", s.freeAudioMinutes)}
	}
	return s.freeAudioMinutes - profile.AudioMinutesUsed - estimatedMinutes, nil
}

// RecordAudioMinutes adds to the free-tier meter. Premium listening is not
// counted, matching RecordQuestions.
func (s *QuotaService) RecordAudioMinutes(ctx context.Context, userID uuid.UUID, minutes float64) error {
	premium, _, err := s.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if premium {
		return nil
	}
	return s.profileRepo.AddAudioMinutes(ctx, userID, minutes)
}

// GuestAllowance checks both the guest-ID and IP counters without
// incrementing. Remaining is computed from the higher of the two counts.
func (s *QuotaService) GuestAllowance(ctx context.Context, guestID uuid.UUID, ip string) (remaining int, err error) {
	guestCount, err := s.guestRepo.GetGuestCount(ctx, guestID)
	if err != nil {
		return 0, err
	}
	ipCount, err := s.guestRepo.GetIPCount(ctx, ip)
	if err != nil {
		return 0, err
	}

	used := guestCount
	if ipCount > used {
		used = ipCount
	}
	remaining = s.guestChatLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordGuestChat bumps both counters and returns the remaining allowance.
func (s *QuotaService) RecordGuestChat(ctx context.Context, guestID uuid.UUID, ip string) (remaining int, err error) {
	guestCount, err := s.guestRepo.IncrementGuest(ctx, guestID)
	if err != nil {
		return 0, err
	}
	ipCount, err := s.guestRepo.IncrementIP(ctx, ip)
	if err != nil {
		return 0, err
	}

	used := guestCount
	if ipCount > used {
		used = ipCount
	}
	remaining = s.guestChatLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
