package services

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// DemoService fills a tournament with generated registrations
type DemoService struct {
	log   logger.Logger
	store Store
}

// NewDemoService creates a new DemoService
func NewDemoService(log logger.Logger, store Store) *DemoService {
	return &DemoService{log: log, store: store}
}

// DemoSize says how much to generate
type DemoSize struct {
	Schools int    `json:"schools"`
	Entries int    `json:"entries"`
	Judges  int    `json:"judges"`
	Rooms   int    `json:"rooms"`
	Seed    uint64 `json:"seed"`
}

// DemoResult counts what was generated
type DemoResult struct {
	SchoolsCreated int `json:"schools_created"`
	EntriesCreated int `json:"entries_created"`
	JudgesCreated  int `json:"judges_created"`
	RoomsCreated   int `json:"rooms_created"`
}

func (d DemoSize) validate() error {
	for _, n := range []int{d.Schools, d.Entries, d.Judges, d.Rooms} {
		if n < 0 || n > 500 {
			return ErrInvalidDemoSize
		}
	}
	return nil
}

// uniqueName draws names until one is unused, ignoring case
func uniqueName(used map[string]bool, draw func() string) string {
	for i := 0; ; i++ {
		name := draw()
		if i >= 10 {
			name = fmt.Sprintf("%s %d", name, i)
		}
		key := normalizeName(name)
		if !used[key] {
			used[key] = true
			return name
		}
	}
}

// Seed adds generated schools, entries, judges and rooms. The same seed
// generates the same names. Competitors and judges are spread over the
// schools; every third judge also strikes a random school.
func (s *DemoService) Seed(ctx context.Context, size DemoSize) (*DemoResult, error) {
	if err := size.validate(); err != nil {
		return nil, err
	}
	faker := gofakeit.New(size.Seed)

	var res DemoResult
	err := s.store.Update(ctx, "seed demo", func(t *models.Tournament) error {
		used := make(map[string]bool)
		for _, sc := range t.Schools() {
			used[normalizeName(sc.Name)] = true
		}
		var schools []int
		for range size.Schools {
			name := uniqueName(used, func() string { return faker.City() + " High School" })
			schools = append(schools, t.AddSchool(name).ID)
			res.SchoolsCreated++
		}
		if len(schools) == 0 {
			for _, sc := range t.Schools() {
				schools = append(schools, sc.ID)
			}
		}
		pick := func() int {
			if len(schools) == 0 {
				return 0
			}
			return schools[faker.Number(0, len(schools)-1)]
		}

		for range size.Entries {
			school := pick()
			comps := make([]models.Competitor, t.TeamSize)
			for i := range comps {
				comps[i] = models.Competitor{Name: faker.Name(), SchoolID: school}
			}
			t.AddEntry(comps)
			res.EntriesCreated++
		}

		clear(used)
		for _, j := range t.Judges() {
			used[normalizeName(j.Name)] = true
		}
		for i := range size.Judges {
			j := t.AddJudge(uniqueName(used, faker.Name), pick())
			if i%3 == 2 {
				if strike := pick(); strike != 0 && strike != j.SchoolID {
					j.SchoolStrikes = []int{strike}
				}
			}
			res.JudgesCreated++
		}

		clear(used)
		for _, r := range t.Rooms() {
			used[normalizeName(r.Name)] = true
		}
		for range size.Rooms {
			t.AddRoom(uniqueName(used, func() string { return fmt.Sprintf("Room %d", faker.Number(100, 399)) }))
			res.RoomsCreated++
		}
		recompute(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Demo data seeded",
		"schools", res.SchoolsCreated,
		"entries", res.EntriesCreated,
		"judges", res.JudgesCreated,
		"rooms", res.RoomsCreated)
	return &res, nil
}
