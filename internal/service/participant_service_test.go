package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupParticipantServiceTest(t *testing.T) *ParticipantService {
	t.Helper()

	dsn := fmt.Sprintf("file:participant_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Participant{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewParticipantService(repository.NewParticipantRepository(db))
}

func TestSyncCreatesAndUpdatesParticipant(t *testing.T) {
	svc := setupParticipantServiceTest(t)

	created, err := svc.Sync(SyncParticipantInput{
		Code:       "AFF401",
		Tier:       constants.TierAffiliate,
		Name:       "first",
		BranchCode: "BR401",
	})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if created.Status != constants.ParticipantStatusActive {
		t.Fatalf("expected default active status, got %s", created.Status)
	}

	updated, err := svc.Sync(SyncParticipantInput{
		Code:   "AFF401",
		Tier:   constants.TierAffiliate,
		Name:   "renamed",
		Status: constants.ParticipantStatusDisabled,
	})
	if err != nil {
		t.Fatalf("re-sync failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected upsert to reuse row %d, got %d", created.ID, updated.ID)
	}
	if updated.Name != "renamed" || updated.Status != constants.ParticipantStatusDisabled {
		t.Fatalf("expected updated fields, got %+v", updated)
	}
}

func TestSyncValidatesTierAndStatus(t *testing.T) {
	svc := setupParticipantServiceTest(t)

	if _, err := svc.Sync(SyncParticipantInput{Code: "AFF402", Tier: "vip"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad tier, got %v", err)
	}
	if _, err := svc.Sync(SyncParticipantInput{
		Code: "AFF402", Tier: constants.TierAffiliate, Status: "frozen",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad status, got %v", err)
	}
}

func TestGetReturnsNotFoundForUnknownCode(t *testing.T) {
	svc := setupParticipantServiceTest(t)

	if _, err := svc.Get("AFF403"); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}
