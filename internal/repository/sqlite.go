package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// snapshotTables hold one tournament's rows each, children first
var snapshotTables = []string{"locks", "containers", "rounds", "rooms", "judges", "entries", "schools"}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			team_size INTEGER NOT NULL,
			random_seed INTEGER NOT NULL,
			break_level_set BOOLEAN DEFAULT 0,
			break_level TEXT,
			clean_break BOOLEAN DEFAULT 0,
			breaks TEXT,
			next_id INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS schools (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			competitors TEXT NOT NULL,
			wins INTEGER DEFAULT 0,
			losses INTEGER DEFAULT 0,
			opponent_wins INTEGER DEFAULT 0,
			tiebreak REAL NOT NULL,
			eligible BOOLEAN DEFAULT 1,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS judges (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			school_id INTEGER,
			school_strikes TEXT,      -- JSON array of school IDs
			competitor_strikes TEXT,  -- JSON array of competitor IDs
			priorities TEXT,          -- JSON object round ID -> priority
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			priorities TEXT,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			number INTEGER,
			level TEXT,
			status TEXT NOT NULL,
			judges_per_debate INTEGER NOT NULL,
			side_policy TEXT NOT NULL,
			start_at DATETIME,
			flight_b_start_at DATETIME,
			asap BOOLEAN DEFAULT 0,
			flighted BOOLEAN DEFAULT 0,
			remarks TEXT,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS containers (
			tournament_id TEXT NOT NULL,
			id INTEGER NOT NULL,
			round_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			flight TEXT,
			room_id INTEGER,
			judges TEXT,              -- JSON array of judge IDs
			aff INTEGER,
			neg INTEGER,
			aff_outcome TEXT,
			neg_outcome TEXT,
			sides_resolved BOOLEAN DEFAULT 0,
			PRIMARY KEY (tournament_id, id),
			FOREIGN KEY (tournament_id, round_id) REFERENCES rounds(tournament_id, id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS locks (
			tournament_id TEXT NOT NULL,
			container_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			resource_id INTEGER NOT NULL,
			PRIMARY KEY (tournament_id, container_id, kind, resource_id),
			FOREIGN KEY (tournament_id, container_id) REFERENCES containers(tournament_id, id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_containers_round ON containers(tournament_id, round_id, position)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Snapshot Methods ====================

// SaveSnapshot replaces the stored copy of a tournament in one transaction
func (r *Repository) SaveSnapshot(ctx context.Context, snap models.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec := snap.Tournament
	for _, table := range snapshotTables {
		// table names come from a fixed list
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE tournament_id = ?", rec.ID); err != nil {
			return err
		}
	}

	breaks, err := marshalJSON(rec.Breaks)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, team_size, random_seed, break_level_set, break_level, clean_break, breaks, next_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, team_size = excluded.team_size, random_seed = excluded.random_seed,
			break_level_set = excluded.break_level_set, break_level = excluded.break_level,
			clean_break = excluded.clean_break, breaks = excluded.breaks, next_id = excluded.next_id,
			updated_at = CURRENT_TIMESTAMP
	`, rec.ID, rec.Name, rec.TeamSize, int64(rec.RandomSeed), rec.BreakLevelSet, rec.BreakLevel.String(),
		rec.CleanBreak, breaks, rec.NextID)
	if err != nil {
		return err
	}

	for _, s := range snap.Schools {
		if _, err = tx.ExecContext(ctx, `INSERT INTO schools (tournament_id, id, name) VALUES (?, ?, ?)`,
			rec.ID, s.ID, s.Name); err != nil {
			return err
		}
	}

	for _, e := range snap.Entries {
		var competitors string
		if competitors, err = marshalJSON(e.Competitors); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO entries (tournament_id, id, competitors, wins, losses, opponent_wins, tiebreak, eligible)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, e.ID, competitors, e.Wins, e.Losses, e.OpponentWins, e.Tiebreak, e.EligibleToBreak); err != nil {
			return err
		}
	}

	for _, j := range snap.Judges {
		var schoolStrikes, competitorStrikes, priorities string
		if schoolStrikes, err = marshalJSON(j.SchoolStrikes); err != nil {
			return err
		}
		if competitorStrikes, err = marshalJSON(j.CompetitorStrikes); err != nil {
			return err
		}
		if priorities, err = marshalJSON(j.Priorities); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO judges (tournament_id, id, name, school_id, school_strikes, competitor_strikes, priorities)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, j.ID, j.Name, nullInt(j.SchoolID), schoolStrikes, competitorStrikes, priorities); err != nil {
			return err
		}
	}

	for _, room := range snap.Rooms {
		var priorities string
		if priorities, err = marshalJSON(room.Priorities); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO rooms (tournament_id, id, name, priorities) VALUES (?, ?, ?, ?)`,
			rec.ID, room.ID, room.Name, priorities); err != nil {
			return err
		}
	}

	position := make(map[int]int)
	for _, round := range snap.Rounds {
		for i, cid := range round.Items {
			position[cid] = i
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO rounds (tournament_id, id, name, kind, number, level, status, judges_per_debate,
				side_policy, start_at, flight_b_start_at, asap, flighted, remarks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, round.ID, round.Name, round.Kind.String(), round.Number, round.Level.String(),
			round.Status.String(), round.JudgesPerDebate, round.SidePolicy.String(),
			nullTime(round.Start), nullTime(round.FlightBStart), round.ASAP, round.Flighted, round.Remarks); err != nil {
			return err
		}
	}

	for _, c := range snap.Containers {
		var judges string
		if judges, err = marshalJSON(c.JudgeIDs); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO containers (tournament_id, id, round_id, position, kind, flight, room_id, judges,
				aff, neg, aff_outcome, neg_outcome, sides_resolved)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, c.ID, c.RoundID, position[c.ID], c.Kind.String(), c.Flight.String(), nullInt(c.RoomID), judges,
			nullInt(c.Aff), nullInt(c.Neg), c.AffOutcome.String(), c.NegOutcome.String(), c.SidesResolved); err != nil {
			return err
		}
	}

	for _, l := range snap.Locks {
		if _, err = tx.ExecContext(ctx, `INSERT INTO locks (tournament_id, container_id, kind, resource_id) VALUES (?, ?, ?, ?)`,
			rec.ID, l.ContainerID, l.Kind.String(), l.ResourceID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads a tournament's stored snapshot
func (r *Repository) LoadSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	rec := &snap.Tournament

	var seed int64
	var level, breaks sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, team_size, random_seed, break_level_set, break_level, clean_break, breaks, next_id
		FROM tournaments WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &rec.TeamSize, &seed, &rec.BreakLevelSet, &level, &rec.CleanBreak, &breaks, &rec.NextID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.RandomSeed = uint64(seed)
	if rec.BreakLevel, err = parseColumn("break_level", level, models.ParseOutround); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(breaks, &rec.Breaks); err != nil {
		return nil, err
	}

	if snap.Schools, err = r.loadSchools(ctx, id); err != nil {
		return nil, err
	}
	if snap.Entries, err = r.loadEntries(ctx, id); err != nil {
		return nil, err
	}
	if snap.Judges, err = r.loadJudges(ctx, id); err != nil {
		return nil, err
	}
	if snap.Rooms, err = r.loadRooms(ctx, id); err != nil {
		return nil, err
	}
	if snap.Rounds, err = r.loadRounds(ctx, id); err != nil {
		return nil, err
	}
	if snap.Containers, err = r.loadContainers(ctx, id); err != nil {
		return nil, err
	}
	// containers arrive in round, position order
	roundIndex := make(map[int]int, len(snap.Rounds))
	for i, round := range snap.Rounds {
		roundIndex[round.ID] = i
	}
	for _, c := range snap.Containers {
		i, ok := roundIndex[c.RoundID]
		if !ok {
			return nil, fmt.Errorf("container %d references missing round %d", c.ID, c.RoundID)
		}
		snap.Rounds[i].Items = append(snap.Rounds[i].Items, c.ID)
	}
	if snap.Locks, err = r.loadLocks(ctx, id); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Repository) loadSchools(ctx context.Context, id string) ([]models.School, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM schools WHERE tournament_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (r *Repository) loadEntries(ctx context.Context, id string) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, competitors, wins, losses, opponent_wins, tiebreak, eligible
		FROM entries WHERE tournament_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var competitors sql.NullString
		if err := rows.Scan(&e.ID, &competitors, &e.Wins, &e.Losses, &e.OpponentWins, &e.Tiebreak, &e.EligibleToBreak); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(competitors, &e.Competitors); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) loadJudges(ctx context.Context, id string) ([]models.Judge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, school_id, school_strikes, competitor_strikes, priorities
		FROM judges WHERE tournament_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var judges []models.Judge
	for rows.Next() {
		var j models.Judge
		var schoolID sql.NullInt64
		var schoolStrikes, competitorStrikes, priorities sql.NullString
		if err := rows.Scan(&j.ID, &j.Name, &schoolID, &schoolStrikes, &competitorStrikes, &priorities); err != nil {
			return nil, err
		}
		j.SchoolID = int(schoolID.Int64)
		if err := unmarshalJSON(schoolStrikes, &j.SchoolStrikes); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(competitorStrikes, &j.CompetitorStrikes); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(priorities, &j.Priorities); err != nil {
			return nil, err
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

func (r *Repository) loadRooms(ctx context.Context, id string) ([]models.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, priorities FROM rooms WHERE tournament_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		var priorities sql.NullString
		if err := rows.Scan(&room.ID, &room.Name, &priorities); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(priorities, &room.Priorities); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *Repository) loadRounds(ctx context.Context, id string) ([]models.Round, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, number, level, status, judges_per_debate, side_policy,
		       start_at, flight_b_start_at, asap, flighted, remarks
		FROM rounds WHERE tournament_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		var round models.Round
		var kind, status, sidePolicy string
		var number sql.NullInt64
		var level, remarks sql.NullString
		var start, flightB sql.NullTime
		if err := rows.Scan(&round.ID, &round.Name, &kind, &number, &level, &status, &round.JudgesPerDebate,
			&sidePolicy, &start, &flightB, &round.ASAP, &round.Flighted, &remarks); err != nil {
			return nil, err
		}
		var err error
		if round.Kind, err = parseColumn("kind", valid(kind), models.ParseRoundKind); err != nil {
			return nil, err
		}
		if round.Status, err = parseColumn("status", valid(status), models.ParseRoundStatus); err != nil {
			return nil, err
		}
		if round.SidePolicy, err = parseColumn("side_policy", valid(sidePolicy), models.ParseSidePolicy); err != nil {
			return nil, err
		}
		if round.Level, err = parseColumn("level", level, models.ParseOutround); err != nil {
			return nil, err
		}
		round.Number = int(number.Int64)
		round.Remarks = remarks.String
		if start.Valid {
			round.Start = start.Time
		}
		if flightB.Valid {
			round.FlightBStart = flightB.Time
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *Repository) loadContainers(ctx context.Context, id string) ([]models.ContainerRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, round_id, kind, flight, room_id, judges, aff, neg, aff_outcome, neg_outcome, sides_resolved
		FROM containers WHERE tournament_id = ? ORDER BY round_id, position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var containers []models.ContainerRecord
	for rows.Next() {
		var c models.ContainerRecord
		var kind string
		var flight, judges, affOutcome, negOutcome sql.NullString
		var roomID, aff, neg sql.NullInt64
		if err := rows.Scan(&c.ID, &c.RoundID, &kind, &flight, &roomID, &judges, &aff, &neg,
			&affOutcome, &negOutcome, &c.SidesResolved); err != nil {
			return nil, err
		}
		var err error
		if c.Kind, err = parseColumn("kind", valid(kind), models.ParseContainerKind); err != nil {
			return nil, err
		}
		if c.Flight, err = parseColumn("flight", flight, models.ParseFlight); err != nil {
			return nil, err
		}
		if c.AffOutcome, err = parseColumn("aff_outcome", affOutcome, models.ParseOutcome); err != nil {
			return nil, err
		}
		if c.NegOutcome, err = parseColumn("neg_outcome", negOutcome, models.ParseOutcome); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(judges, &c.JudgeIDs); err != nil {
			return nil, err
		}
		c.RoomID, c.Aff, c.Neg = int(roomID.Int64), int(aff.Int64), int(neg.Int64)
		containers = append(containers, c)
	}
	return containers, rows.Err()
}

func (r *Repository) loadLocks(ctx context.Context, id string) ([]models.LockRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT container_id, kind, resource_id FROM locks WHERE tournament_id = ?
		ORDER BY container_id, kind, resource_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locks []models.LockRecord
	for rows.Next() {
		var l models.LockRecord
		var kind string
		if err := rows.Scan(&l.ContainerID, &kind, &l.ResourceID); err != nil {
			return nil, err
		}
		var err error
		if l.Kind, err = parseColumn("kind", valid(kind), models.ParseResourceKind); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, rows.Err()
}

// ListTournaments returns every stored tournament, most recently saved first
func (r *Repository) ListTournaments(ctx context.Context) ([]TournamentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.updated_at,
		       (SELECT COUNT(*) FROM entries e WHERE e.tournament_id = t.id),
		       (SELECT COUNT(*) FROM rounds r WHERE r.tournament_id = t.id)
		FROM tournaments t
		ORDER BY t.updated_at DESC, t.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TournamentSummary
	for rows.Next() {
		var s TournamentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt, &s.Entries, &s.Rounds); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteTournament removes a tournament and all of its rows
func (r *Repository) DeleteTournament(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Helpers ====================

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalJSON leaves dst untouched for NULL and "null" columns
func unmarshalJSON(s sql.NullString, dst any) error {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}

// parseColumn decodes an enum column; NULL and empty text yield the zero value
func parseColumn[T any](column string, s sql.NullString, parse func(string) (T, bool)) (T, error) {
	var zero T
	if !s.Valid || s.String == "" {
		return zero, nil
	}
	v, ok := parse(s.String)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrCorrupt, column, s.String)
	}
	return v, nil
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
