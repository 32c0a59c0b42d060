package mock

import (
	"context"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SaveSnapshotError = errors.New("disk full")
//	store, _ := state.Open(ctx, log, mockRepo, state.Options{})
//	err := store.Update(ctx, "add school", fn)
//	// err is now an ErrIO application error and the store kept its old state
type Repository struct {
	repository.FullRepository

	// ===== Tournament Errors =====
	SaveSnapshotError     error
	LoadSnapshotError     error
	ListTournamentsError  error
	DeleteTournamentError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// Saves counts successful SaveSnapshot calls
	Saves int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Tournament Methods =====

func (m *Repository) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	if m.SaveSnapshotError != nil {
		return m.SaveSnapshotError
	}
	if err := m.FullRepository.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	m.Saves++
	return nil
}

func (m *Repository) LoadSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	if m.LoadSnapshotError != nil {
		return nil, m.LoadSnapshotError
	}
	return m.FullRepository.LoadSnapshot(ctx, id)
}

func (m *Repository) ListTournaments(ctx context.Context) ([]repository.TournamentSummary, error) {
	if m.ListTournamentsError != nil {
		return nil, m.ListTournamentsError
	}
	return m.FullRepository.ListTournaments(ctx)
}

func (m *Repository) DeleteTournament(ctx context.Context, id string) error {
	if m.DeleteTournamentError != nil {
		return m.DeleteTournamentError
	}
	return m.FullRepository.DeleteTournament(ctx, id)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}
