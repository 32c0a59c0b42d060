package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// RegistrationService handles schools, entries, judges and rooms
type RegistrationService struct {
	log   logger.Logger
	store Store
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(log logger.Logger, store Store) *RegistrationService {
	return &RegistrationService{log: log, store: store}
}

// Competitor is one member of an entry being registered
type Competitor struct {
	Name     string `json:"name"`
	SchoolID int    `json:"school_id,omitempty"`
}

// Judge represents a judge for create/update operations
type Judge struct {
	Name     string `json:"name"`
	SchoolID int    `json:"school_id,omitempty"`
}

// Strikes lists the schools and competitors a judge may not hear
type Strikes struct {
	Schools     []int `json:"schools"`
	Competitors []int `json:"competitors"`
}

// normalizeName folds a display name for case-insensitive comparison.
// A Caser keeps state, so each call gets its own.
func normalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func sameName(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// happenedUsage returns the containers in already-happened rounds that hold the resource
func happenedUsage(t *models.Tournament, kind models.ResourceKind, id int) []int {
	var out []int
	for _, cid := range t.Usage(kind, id) {
		c, _ := t.Container(cid)
		if r, ok := t.Round(c.RoundID()); ok && r.Status.HasHappened() {
			out = append(out, cid)
		}
	}
	return out
}

// decidedUsage reports whether a decided debate holds the resource
func decidedUsage(t *models.Tournament, kind models.ResourceKind, id int) bool {
	for _, cid := range t.Usage(kind, id) {
		if d, ok := t.Debate(cid); ok && d.IsDecided() {
			return true
		}
	}
	return false
}

// ==================== Schools ====================

// ListSchools returns every school
func (s *RegistrationService) ListSchools(ctx context.Context) ([]models.School, error) {
	var out []models.School
	err := s.store.Read(func(t *models.Tournament) error {
		for _, sc := range t.Schools() {
			out = append(out, *sc)
		}
		return nil
	})
	return out, err
}

// CreateSchool registers a school. Names are unique ignoring case.
func (s *RegistrationService) CreateSchool(ctx context.Context, name string) (*models.School, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var created models.School
	err = s.store.Update(ctx, "create school", func(t *models.Tournament) error {
		for _, sc := range t.Schools() {
			if sameName(sc.Name, name) {
				return errors.Conflictf("school %q already exists", sc.Name)
			}
		}
		created = *t.AddSchool(name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("School created", "school_id", created.ID, "name", created.Name)
	return &created, nil
}

// RenameSchool changes a school's name
func (s *RegistrationService) RenameSchool(ctx context.Context, id int, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, "rename school", func(t *models.Tournament) error {
		sc, ok := t.School(id)
		if !ok {
			return errors.NotFoundf("school %d not found", id)
		}
		for _, other := range t.Schools() {
			if other.ID != id && sameName(other.Name, name) {
				return errors.Conflictf("school %q already exists", other.Name)
			}
		}
		sc.Name = name
		return nil
	})
}

// DeleteSchool removes a school. A school still named by a competitor or a
// judge is only deleted with cascade, which clears those references.
func (s *RegistrationService) DeleteSchool(ctx context.Context, id int, cascade bool) error {
	return s.store.Update(ctx, "delete school", func(t *models.Tournament) error {
		sc, ok := t.School(id)
		if !ok {
			return errors.NotFoundf("school %d not found", id)
		}

		refs := 0
		for _, e := range t.Entries() {
			for i := range e.Competitors {
				if e.Competitors[i].SchoolID == id {
					refs++
					if cascade {
						e.Competitors[i].SchoolID = 0
					}
				}
			}
		}
		for _, j := range t.Judges() {
			if j.SchoolID == id || slices.Contains(j.SchoolStrikes, id) {
				refs++
				if cascade {
					if j.SchoolID == id {
						j.SchoolID = 0
					}
					j.SchoolStrikes = slices.DeleteFunc(j.SchoolStrikes, func(x int) bool { return x == id })
				}
			}
		}
		if refs > 0 && !cascade {
			return errors.Preconditionf("school %q is referenced %d times; delete with cascade", sc.Name, refs)
		}
		t.DeleteSchool(id)
		s.log.Info("School deleted", "school_id", id, "references_cleared", refs)
		return nil
	})
}

// ==================== Entries ====================

// ListEntries returns every entry with its current record
func (s *RegistrationService) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var out []models.Entry
	err := s.store.Read(func(t *models.Tournament) error {
		for _, e := range t.Entries() {
			out = append(out, *e.Clone())
		}
		return nil
	})
	return out, err
}

// GetEntry returns one entry
func (s *RegistrationService) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	var out *models.Entry
	err := s.store.Read(func(t *models.Tournament) error {
		e, ok := t.Entry(id)
		if !ok {
			return errors.NotFoundf("entry %d not found", id)
		}
		out = e.Clone()
		return nil
	})
	return out, err
}

func validateCompetitors(t *models.Tournament, competitors []Competitor) ([]models.Competitor, error) {
	if len(competitors) != t.TeamSize {
		return nil, errors.Validationf("an entry has %d competitors, got %d", t.TeamSize, len(competitors))
	}
	out := make([]models.Competitor, len(competitors))
	for i, c := range competitors {
		name, err := cleanName(c.Name)
		if err != nil {
			return nil, errors.Validationf("competitor %d has no name", i+1)
		}
		if c.SchoolID != 0 {
			if _, ok := t.School(c.SchoolID); !ok {
				return nil, errors.NotFoundf("school %d not found", c.SchoolID)
			}
		}
		out[i] = models.Competitor{Name: name, SchoolID: c.SchoolID}
	}
	return out, nil
}

// CreateEntry registers an entry. The competitor count must match the team size.
func (s *RegistrationService) CreateEntry(ctx context.Context, competitors []Competitor) (*models.Entry, error) {
	var created *models.Entry
	err := s.store.Update(ctx, "create entry", func(t *models.Tournament) error {
		comps, err := validateCompetitors(t, competitors)
		if err != nil {
			return err
		}
		created = t.AddEntry(comps).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Entry created", "entry_id", created.ID, "name", created.Name())
	return created, nil
}

// UpdateEntry replaces the names and schools of an entry's competitors.
// Competitor IDs, and so any strikes against them, are kept.
func (s *RegistrationService) UpdateEntry(ctx context.Context, id int, competitors []Competitor) error {
	return s.store.Update(ctx, "update entry", func(t *models.Tournament) error {
		e, ok := t.Entry(id)
		if !ok {
			return errors.NotFoundf("entry %d not found", id)
		}
		comps, err := validateCompetitors(t, competitors)
		if err != nil {
			return err
		}
		for i := range comps {
			e.Competitors[i].Name = comps[i].Name
			e.Competitors[i].SchoolID = comps[i].SchoolID
		}
		return nil
	})
}

// SetEntryEligibility sets whether an entry may break
func (s *RegistrationService) SetEntryEligibility(ctx context.Context, id int, eligible bool) error {
	return s.store.Update(ctx, "set entry eligibility", func(t *models.Tournament) error {
		e, ok := t.Entry(id)
		if !ok {
			return errors.NotFoundf("entry %d not found", id)
		}
		e.EligibleToBreak = eligible
		return nil
	})
}

// DeleteEntry removes an entry. A decided debate always blocks deletion.
// Undecided debates in started rounds block it unless cascade is set, in
// which case they are removed with the entry. Debates in rounds that have not
// started are always removed.
func (s *RegistrationService) DeleteEntry(ctx context.Context, id int, cascade bool) error {
	return s.store.Update(ctx, "delete entry", func(t *models.Tournament) error {
		e, ok := t.Entry(id)
		if !ok {
			return errors.NotFoundf("entry %d not found", id)
		}

		var remove []int
		for _, r := range t.Rounds() {
			for _, d := range t.Debates(r.ID) {
				if !d.HasEntry(id) {
					continue
				}
				if d.IsDecided() && r.Status.HasHappened() {
					return errors.Preconditionf("%s has a result in %q and cannot be deleted", e.Name(), r.Name)
				}
				if r.Status.HasHappened() && !cascade {
					return errors.Preconditionf("%s is paired in %q; delete with cascade", e.Name(), r.Name)
				}
				remove = append(remove, d.ID())
			}
		}
		for _, cid := range remove {
			if _, err := t.RemoveContainer(cid); err != nil {
				return errors.Internal(err)
			}
		}
		for _, j := range t.Judges() {
			j.CompetitorStrikes = slices.DeleteFunc(j.CompetitorStrikes, e.HasCompetitor)
		}
		t.DeleteEntry(id)
		recompute(t)
		s.log.Info("Entry deleted", "entry_id", id, "debates_removed", len(remove))
		return nil
	})
}

// ==================== Judges ====================

// ListJudges returns every judge
func (s *RegistrationService) ListJudges(ctx context.Context) ([]models.Judge, error) {
	var out []models.Judge
	err := s.store.Read(func(t *models.Tournament) error {
		for _, j := range t.Judges() {
			out = append(out, *j.Clone())
		}
		return nil
	})
	return out, err
}

func validateJudge(t *models.Tournament, id int, j Judge) (string, error) {
	name, err := cleanName(j.Name)
	if err != nil {
		return "", err
	}
	if j.SchoolID != 0 {
		if _, ok := t.School(j.SchoolID); !ok {
			return "", errors.NotFoundf("school %d not found", j.SchoolID)
		}
	}
	for _, other := range t.Judges() {
		if other.ID != id && sameName(other.Name, name) {
			return "", errors.Conflictf("judge %q already exists", other.Name)
		}
	}
	return name, nil
}

// CreateJudge registers a judge
func (s *RegistrationService) CreateJudge(ctx context.Context, j Judge) (*models.Judge, error) {
	var created *models.Judge
	err := s.store.Update(ctx, "create judge", func(t *models.Tournament) error {
		name, err := validateJudge(t, 0, j)
		if err != nil {
			return err
		}
		created = t.AddJudge(name, j.SchoolID).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Judge created", "judge_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateJudge changes a judge's name and affiliation
func (s *RegistrationService) UpdateJudge(ctx context.Context, id int, j Judge) error {
	return s.store.Update(ctx, "update judge", func(t *models.Tournament) error {
		judge, ok := t.Judge(id)
		if !ok {
			return errors.NotFoundf("judge %d not found", id)
		}
		name, err := validateJudge(t, id, j)
		if err != nil {
			return err
		}
		judge.Name, judge.SchoolID = name, j.SchoolID
		return nil
	})
}

// SetJudgeStrikes replaces a judge's school and competitor strikes
func (s *RegistrationService) SetJudgeStrikes(ctx context.Context, id int, strikes Strikes) error {
	return s.store.Update(ctx, "set judge strikes", func(t *models.Tournament) error {
		judge, ok := t.Judge(id)
		if !ok {
			return errors.NotFoundf("judge %d not found", id)
		}
		for _, sid := range strikes.Schools {
			if _, ok := t.School(sid); !ok {
				return errors.NotFoundf("school %d not found", sid)
			}
		}
		for _, cid := range strikes.Competitors {
			if _, ok := t.CompetitorEntry(cid); !ok {
				return errors.NotFoundf("competitor %d not found", cid)
			}
		}
		judge.SchoolStrikes = dedupe(strikes.Schools)
		judge.CompetitorStrikes = dedupe(strikes.Competitors)
		return nil
	})
}

// StrikeSchoolByName adds a school strike looked up by name, ignoring case
func (s *RegistrationService) StrikeSchoolByName(ctx context.Context, judgeID int, school string) error {
	return s.store.Update(ctx, "strike school", func(t *models.Tournament) error {
		judge, ok := t.Judge(judgeID)
		if !ok {
			return errors.NotFoundf("judge %d not found", judgeID)
		}
		for _, sc := range t.Schools() {
			if sameName(sc.Name, school) {
				judge.SchoolStrikes = dedupe(append(judge.SchoolStrikes, sc.ID))
				return nil
			}
		}
		return errors.NotFoundf("school %q not found", school)
	})
}

func dedupe(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func parsePriority(p string) (models.Priority, error) {
	pr, ok := models.ParsePriority(strings.ToLower(strings.TrimSpace(p)))
	if !ok {
		return 0, errors.InvalidInputf("unknown priority %q", p)
	}
	return pr, nil
}

func setPriority(m map[int]models.Priority, roundID int, p models.Priority) map[int]models.Priority {
	if p == models.PriorityNormal {
		delete(m, roundID)
		return m
	}
	if m == nil {
		m = make(map[int]models.Priority)
	}
	m[roundID] = p
	return m
}

// SetJudgePriority sets a judge's priority for one round
func (s *RegistrationService) SetJudgePriority(ctx context.Context, judgeID, roundID int, priority string) error {
	p, err := parsePriority(priority)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, "set judge priority", func(t *models.Tournament) error {
		judge, ok := t.Judge(judgeID)
		if !ok {
			return errors.NotFoundf("judge %d not found", judgeID)
		}
		if _, ok := t.Round(roundID); !ok {
			return errors.NotFoundf("round %d not found", roundID)
		}
		judge.Priorities = setPriority(judge.Priorities, roundID, p)
		return nil
	})
}

// DeleteJudge removes a judge. A judge on a decided debate cannot be deleted.
// A judge placed in a started round is only deleted with cascade; the judge
// is then unlinked from every container.
func (s *RegistrationService) DeleteJudge(ctx context.Context, id int, cascade bool) error {
	return s.store.Update(ctx, "delete judge", func(t *models.Tournament) error {
		judge, ok := t.Judge(id)
		if !ok {
			return errors.NotFoundf("judge %d not found", id)
		}
		if decidedUsage(t, models.ResourceJudge, id) {
			return errors.Preconditionf("%s judged a decided debate and cannot be deleted", judge.Name)
		}
		if used := happenedUsage(t, models.ResourceJudge, id); len(used) > 0 && !cascade {
			return errors.Preconditionf("%s judged in a started round; delete with cascade", judge.Name)
		}
		t.DeleteJudge(id)
		s.log.Info("Judge deleted", "judge_id", id)
		return nil
	})
}

// ==================== Rooms ====================

// ListRooms returns every room
func (s *RegistrationService) ListRooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	err := s.store.Read(func(t *models.Tournament) error {
		for _, r := range t.Rooms() {
			out = append(out, *r.Clone())
		}
		return nil
	})
	return out, err
}

func uniqueRoomName(t *models.Tournament, id int, name string) error {
	for _, other := range t.Rooms() {
		if other.ID != id && sameName(other.Name, name) {
			return errors.Conflictf("room %q already exists", other.Name)
		}
	}
	return nil
}

// CreateRoom registers a room
func (s *RegistrationService) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var created *models.Room
	err = s.store.Update(ctx, "create room", func(t *models.Tournament) error {
		if err := uniqueRoomName(t, 0, name); err != nil {
			return err
		}
		created = t.AddRoom(name).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Room created", "room_id", created.ID, "name", created.Name)
	return created, nil
}

// RenameRoom changes a room's name
func (s *RegistrationService) RenameRoom(ctx context.Context, id int, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, "rename room", func(t *models.Tournament) error {
		room, ok := t.Room(id)
		if !ok {
			return errors.NotFoundf("room %d not found", id)
		}
		if err := uniqueRoomName(t, id, name); err != nil {
			return err
		}
		room.Name = name
		return nil
	})
}

// SetRoomPriority sets a room's priority for one round
func (s *RegistrationService) SetRoomPriority(ctx context.Context, roomID, roundID int, priority string) error {
	p, err := parsePriority(priority)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, "set room priority", func(t *models.Tournament) error {
		room, ok := t.Room(roomID)
		if !ok {
			return errors.NotFoundf("room %d not found", roomID)
		}
		if _, ok := t.Round(roundID); !ok {
			return errors.NotFoundf("round %d not found", roundID)
		}
		room.Priorities = setPriority(room.Priorities, roundID, p)
		return nil
	})
}

// DeleteRoom removes a room. A room holding a decided debate cannot be
// deleted. A room used in a started round is only deleted with cascade; the
// room is then cleared from every container.
func (s *RegistrationService) DeleteRoom(ctx context.Context, id int, cascade bool) error {
	return s.store.Update(ctx, "delete room", func(t *models.Tournament) error {
		room, ok := t.Room(id)
		if !ok {
			return errors.NotFoundf("room %d not found", id)
		}
		if decidedUsage(t, models.ResourceRoom, id) {
			return errors.Preconditionf("room %s hosted a decided debate and cannot be deleted", room.Name)
		}
		if used := happenedUsage(t, models.ResourceRoom, id); len(used) > 0 && !cascade {
			return errors.Preconditionf("room %s was used in a started round; delete with cascade", room.Name)
		}
		t.DeleteRoom(id)
		s.log.Info("Room deleted", "room_id", id)
		return nil
	})
}

// describe names a resource for log and error messages
func describe(t *models.Tournament, res models.ResourceKey) string {
	if res.Kind == models.ResourceRoom {
		if r, ok := t.Room(res.ID); ok {
			return "room " + r.Name
		}
	} else if j, ok := t.Judge(res.ID); ok {
		return j.Name
	}
	return fmt.Sprintf("%s %d", res.Kind, res.ID)
}
