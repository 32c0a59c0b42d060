package services

import (
	"context"

	"github.com/kcoltin/SWSDITAB-sub001/internal/conflict"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/pairing"
	"github.com/kcoltin/SWSDITAB-sub001/internal/ranking"
	"github.com/kcoltin/SWSDITAB-sub001/internal/state"
)

// Store is the tournament state the services read and mutate
type Store interface {
	ID() string
	Version() uint64
	Read(fn func(t *models.Tournament) error) error
	Update(ctx context.Context, op string, fn func(t *models.Tournament) error) error
	Snapshot() models.Snapshot
	Replace(ctx context.Context, t *models.Tournament) error
}

// RegistrationServicer defines the interface for registration operations
type RegistrationServicer interface {
	ListSchools(ctx context.Context) ([]models.School, error)
	CreateSchool(ctx context.Context, name string) (*models.School, error)
	RenameSchool(ctx context.Context, id int, name string) error
	DeleteSchool(ctx context.Context, id int, cascade bool) error
	ListEntries(ctx context.Context) ([]models.Entry, error)
	GetEntry(ctx context.Context, id int) (*models.Entry, error)
	CreateEntry(ctx context.Context, competitors []Competitor) (*models.Entry, error)
	UpdateEntry(ctx context.Context, id int, competitors []Competitor) error
	SetEntryEligibility(ctx context.Context, id int, eligible bool) error
	DeleteEntry(ctx context.Context, id int, cascade bool) error
	ListJudges(ctx context.Context) ([]models.Judge, error)
	CreateJudge(ctx context.Context, j Judge) (*models.Judge, error)
	UpdateJudge(ctx context.Context, id int, j Judge) error
	SetJudgeStrikes(ctx context.Context, id int, strikes Strikes) error
	StrikeSchoolByName(ctx context.Context, judgeID int, school string) error
	SetJudgePriority(ctx context.Context, judgeID, roundID int, priority string) error
	DeleteJudge(ctx context.Context, id int, cascade bool) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, name string) (*models.Room, error)
	RenameRoom(ctx context.Context, id int, name string) error
	SetRoomPriority(ctx context.Context, roomID, roundID int, priority string) error
	DeleteRoom(ctx context.Context, id int, cascade bool) error
}

// RoundServicer defines the interface for round operations
type RoundServicer interface {
	ListRounds(ctx context.Context) ([]models.Round, error)
	GetRound(ctx context.Context, id int) (*RoundView, error)
	CreateRound(ctx context.Context, in Round) (*models.Round, error)
	StartRound(ctx context.Context, id int) (models.RoundStatus, error)
	UpdateRound(ctx context.Context, id int, u RoundUpdate) error
	DeleteRound(ctx context.Context, id int) error
	AddDebate(ctx context.Context, roundID, aff, neg, pos int) (int, error)
	AddPseudoDebate(ctx context.Context, roundID, entryID int, outcome models.Outcome, pos int) (int, error)
	AddJudgeAssignment(ctx context.Context, roundID, pos int) (int, error)
	AddJudgeRoomAssignment(ctx context.Context, roundID, pos int) (int, error)
	RemoveItem(ctx context.Context, id int) (int, error)
	MoveItem(ctx context.Context, id, pos int) error
	ToggleFlight(ctx context.Context, id int) error
	AssignJudge(ctx context.Context, itemID, judgeID int) error
	RemoveJudge(ctx context.Context, itemID, judgeID int) error
	AssignRoom(ctx context.Context, itemID, roomID int) error
	ClearRoom(ctx context.Context, itemID int) error
	LockJudge(ctx context.Context, itemID, judgeID int) error
	UnlockJudge(ctx context.Context, itemID, judgeID int) error
	LockRoom(ctx context.Context, itemID int) error
	UnlockRoom(ctx context.Context, itemID int) error
	ResolveSides(ctx context.Context, debateID, affEntryID int) error
	SetBroadcaster(b Broadcaster)
}

// BallotServicer defines the interface for ballot operations
type BallotServicer interface {
	EnterBallot(ctx context.Context, b lifecycle.Ballot) error
	RemoveBallot(ctx context.Context, debateID int) error
	SetBroadcaster(b Broadcaster)
}

// BracketServicer defines the interface for break and bracket operations
type BracketServicer interface {
	SetBreakLevel(ctx context.Context, level models.Outround, confirmDiscard bool) ([]int, error)
	SetCleanBreak(ctx context.Context, clean bool) error
	Break(ctx context.Context) (*BreakResult, error)
	FillGaps(ctx context.Context) ([]models.Round, error)
	SeedElimination(ctx context.Context, roundID int) error
	Advance(ctx context.Context, fromRoundID, toRoundID int) error
	SetBroadcaster(b Broadcaster)
}

// PairingServicer defines the interface for automated pairing
type PairingServicer interface {
	AutoAssign(ctx context.Context, roundID int, opts pairing.Options) (*pairing.Plan, error)
	Consolidate(ctx context.Context, roundID int) (int, error)
	SetBroadcaster(b Broadcaster)
}

// TournamentServicer defines the interface for tournament-wide queries
type TournamentServicer interface {
	Summary(ctx context.Context) (*Summary, error)
	Standings(ctx context.Context) ([]ranking.Standing, error)
	RoundStatus(ctx context.Context, roundID int) (*RoundState, error)
	FullyPaired(ctx context.Context, roundID int) (bool, error)
	Conflicts(ctx context.Context, roundID int) (map[int][]conflict.Conflict, error)
	Snapshot(ctx context.Context) models.Snapshot
	Export(ctx context.Context) ([]byte, string, error)
	Import(ctx context.Context, data []byte) error
}

// PostingServicer defines the interface for postings
type PostingServicer interface {
	Posting(ctx context.Context, roundID int) (*Posting, error)
	PostingURL(ctx context.Context, roundID int) (string, error)
	PostingQR(ctx context.Context, roundID int) ([]byte, error)
}

// DemoServicer defines the interface for demo data
type DemoServicer interface {
	Seed(ctx context.Context, size DemoSize) (*DemoResult, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
}

// Ensure concrete types implement interfaces
var (
	_ Store                = (*state.Store)(nil)
	_ RegistrationServicer = (*RegistrationService)(nil)
	_ RoundServicer        = (*RoundService)(nil)
	_ BallotServicer       = (*BallotService)(nil)
	_ BracketServicer      = (*BracketService)(nil)
	_ PairingServicer      = (*PairingService)(nil)
	_ TournamentServicer   = (*TournamentService)(nil)
	_ PostingServicer      = (*PostingService)(nil)
	_ DemoServicer         = (*DemoService)(nil)
	_ SettingsServicer     = (*SettingsService)(nil)
)
