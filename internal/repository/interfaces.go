package repository

import (
	"context"
	"time"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// TournamentSummary lists a stored tournament without loading it
type TournamentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Entries   int       `json:"entries"`
	Rounds    int       `json:"rounds"`
}

// TournamentRepository stores whole-tournament snapshots
type TournamentRepository interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	ListTournaments(ctx context.Context) ([]TournamentSummary, error)
	DeleteTournament(ctx context.Context, id string) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	TournamentRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
