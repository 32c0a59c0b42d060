package services

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/skip2/go-qrcode"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// BaseURLProvider supplies the public address postings link to
type BaseURLProvider interface {
	GetBaseURL(ctx context.Context) (string, error)
}

// PostingService prepares the printable pairing of a round
type PostingService struct {
	log      logger.Logger
	store    Store
	settings BaseURLProvider
}

// NewPostingService creates a new PostingService
func NewPostingService(log logger.Logger, store Store, settings BaseURLProvider) *PostingService {
	return &PostingService{log: log, store: store, settings: settings}
}

// PostedDebate is one line of a posting
type PostedDebate struct {
	DebateID int           `json:"debate_id"`
	Flight   models.Flight `json:"flight,omitempty"`
	Room     string        `json:"room"`
	Aff      string        `json:"aff"`
	Neg      string        `json:"neg"`
	Sides    bool          `json:"sides_resolved"`
	Judges   []string      `json:"judges"`
}

// PostedBye is an entry sitting the round out
type PostedBye struct {
	Entry   string         `json:"entry"`
	Outcome models.Outcome `json:"outcome"`
}

// Posting is the finalized pairing of a fully paired round
type Posting struct {
	RoundID  int            `json:"round_id"`
	Round    string         `json:"round"`
	Filename string         `json:"filename"`
	Remarks  string         `json:"remarks,omitempty"`
	Debates  []PostedDebate `json:"debates"`
	Byes     []PostedBye    `json:"byes"`
}

func entryName(t *models.Tournament, id int) string {
	if e, ok := t.Entry(id); ok {
		return e.Name()
	}
	return fmt.Sprintf("entry %d", id)
}

// Posting returns a round's true debates and byes. A round that is not fully
// paired cannot be posted.
func (s *PostingService) Posting(ctx context.Context, roundID int) (*Posting, error) {
	var out *Posting
	err := s.store.Read(func(t *models.Tournament) error {
		r, ok := t.Round(roundID)
		if !ok {
			return errors.NotFoundf("round %d not found", roundID)
		}
		if !lifecycle.FullyPaired(t, roundID) {
			return errors.Preconditionf("%q is not fully paired", r.Name)
		}
		p := &Posting{
			RoundID:  roundID,
			Round:    r.Name,
			Filename: slug.Make(t.Name+" "+r.Name) + ".json",
			Remarks:  r.Remarks,
		}
		for _, d := range lifecycle.TrueDebates(t, roundID) {
			pd := PostedDebate{
				DebateID: d.ID(),
				Flight:   d.Flight(),
				Aff:      entryName(t, d.Aff),
				Neg:      entryName(t, d.Neg),
				Sides:    d.SidesResolved,
			}
			if room, ok := t.Room(d.RoomID()); ok {
				pd.Room = room.Name
			}
			for _, jid := range d.JudgeIDs() {
				if j, ok := t.Judge(jid); ok {
					pd.Judges = append(pd.Judges, j.Name)
				}
			}
			p.Debates = append(p.Debates, pd)
		}
		for _, d := range lifecycle.PseudoDebates(t, roundID) {
			id := d.EntryIDs()[0]
			p.Byes = append(p.Byes, PostedBye{Entry: entryName(t, id), Outcome: d.OutcomeFor(id)})
		}
		out = p
		return nil
	})
	return out, err
}

// PostingURL is where a round's posting is published
func (s *PostingService) PostingURL(ctx context.Context, roundID int) (string, error) {
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return "", ErrBaseURLNotConfigured
	}
	return fmt.Sprintf("%s/postings/%d", baseURL, roundID), nil
}

// PostingQR renders a PNG QR code linking to a fully paired round's posting
func (s *PostingService) PostingQR(ctx context.Context, roundID int) ([]byte, error) {
	if _, err := s.Posting(ctx, roundID); err != nil {
		return nil, err
	}
	url, err := s.PostingURL(ctx, roundID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}
