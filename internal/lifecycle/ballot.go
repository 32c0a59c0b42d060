package lifecycle

import (
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Ballot records one debate's result. Outcome is for EntryID; on a true
// debate the opponent receives the complement. A non-zero Aff also fixes
// which entry takes the affirmative side.
type Ballot struct {
	DebateID int            `json:"debate_id"`
	EntryID  int            `json:"entry_id"`
	Outcome  models.Outcome `json:"outcome"`
	Aff      int            `json:"aff,omitempty"`
}

func startedDebate(t *models.Tournament, debateID int) (*models.Debate, error) {
	d, ok := t.Debate(debateID)
	if !ok {
		return nil, errors.NotFoundf("debate %d not found", debateID)
	}
	r, ok := t.Round(d.RoundID())
	if !ok {
		return nil, errors.Internalf("debate %d has no round", debateID)
	}
	if !r.Status.HasHappened() {
		return nil, errors.Preconditionf("round %q has not started", r.Name)
	}
	return d, nil
}

// EnterBallot applies a ballot. The debate keeps the pairwise invariant: a
// decided true debate always holds WIN/LOSS or BYE/FORFEIT.
// Nothing changes when the ballot is rejected.
func EnterBallot(t *models.Tournament, b Ballot) error {
	d, err := startedDebate(t, b.DebateID)
	if err != nil {
		return err
	}
	if !d.HasEntry(b.EntryID) {
		return errors.Validationf("entry %d is not in debate %d", b.EntryID, b.DebateID)
	}
	if b.Aff != 0 && !d.HasEntry(b.Aff) {
		return errors.Validationf("entry %d is not in debate %d", b.Aff, b.DebateID)
	}

	if !d.IsTrue() {
		if !b.Outcome.IsPseudo() {
			return errors.InvalidInputf("a single-entry debate takes bye, forfeit or non_competing, not %s", b.Outcome)
		}
		setOutcome(d, b.EntryID, b.Outcome)
		return nil
	}

	other := b.Outcome.Complement()
	if other == models.NoDecision {
		return errors.InvalidInputf("a contested debate takes win, loss, bye or forfeit, not %s", b.Outcome)
	}
	if b.Aff != 0 {
		resolve(d, b.Aff)
	}
	setOutcome(d, b.EntryID, b.Outcome)
	setOutcome(d, d.Opponent(b.EntryID), other)
	return nil
}

// RemoveBallot clears a true debate's result. Once a later round has
// started the result stays; it can still be corrected with EnterBallot.
func RemoveBallot(t *models.Tournament, debateID int) error {
	d, err := startedDebate(t, debateID)
	if err != nil {
		return err
	}
	if !d.IsTrue() {
		return errors.Validationf("debate %d is a placeholder and has no ballot", debateID)
	}
	if !d.IsDecided() {
		return errors.Preconditionf("debate %d has no result", debateID)
	}
	if LaterRoundStarted(t, d.RoundID()) {
		return errors.Preconditionf("a later round has started; enter a corrected ballot for debate %d instead", debateID)
	}
	d.AffOutcome, d.NegOutcome = models.NoDecision, models.NoDecision
	return nil
}

// ResolveSides fixes which entry is affirmative
func ResolveSides(t *models.Tournament, debateID, affEntryID int) error {
	d, ok := t.Debate(debateID)
	if !ok {
		return errors.NotFoundf("debate %d not found", debateID)
	}
	if !d.IsTrue() {
		return errors.Validationf("debate %d needs two entries to resolve sides", debateID)
	}
	if !d.HasEntry(affEntryID) {
		return errors.Validationf("entry %d is not in debate %d", affEntryID, debateID)
	}
	resolve(d, affEntryID)
	return nil
}

func resolve(d *models.Debate, aff int) {
	if d.Neg == aff {
		d.Aff, d.Neg = d.Neg, d.Aff
		d.AffOutcome, d.NegOutcome = d.NegOutcome, d.AffOutcome
	}
	d.SidesResolved = true
}

func setOutcome(d *models.Debate, entryID int, o models.Outcome) {
	if d.Aff == entryID {
		d.AffOutcome = o
	} else if d.Neg == entryID {
		d.NegOutcome = o
	}
}
