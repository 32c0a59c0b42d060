package services

import "github.com/kcoltin/SWSDITAB-sub001/internal/models"

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastRoundStatus(roundID int, status models.RoundStatus)
	BroadcastPairingUpdated(roundID int)
	BroadcastBallotEntered(roundID, debateID int)
}

// notifier is embedded by services that push changes. A nil broadcaster
// drops every message.
type notifier struct {
	broadcaster Broadcaster
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (n *notifier) SetBroadcaster(b Broadcaster) {
	n.broadcaster = b
}

func (n *notifier) pairingUpdated(roundID int) {
	if n.broadcaster != nil {
		n.broadcaster.BroadcastPairingUpdated(roundID)
	}
}

func (n *notifier) statusChanges(changes []statusChange) {
	if n.broadcaster == nil {
		return
	}
	for _, c := range changes {
		n.broadcaster.BroadcastRoundStatus(c.RoundID, c.Status)
	}
}

func (n *notifier) ballotEntered(roundID, debateID int) {
	if n.broadcaster != nil {
		n.broadcaster.BroadcastBallotEntered(roundID, debateID)
	}
}

type statusChange struct {
	RoundID int
	Status  models.RoundStatus
}

// statuses records every round's status so changes can be found afterwards
func statuses(t *models.Tournament) map[int]models.RoundStatus {
	out := make(map[int]models.RoundStatus)
	for _, r := range t.Rounds() {
		out[r.ID] = r.Status
	}
	return out
}

func changedStatuses(t *models.Tournament, before map[int]models.RoundStatus) []statusChange {
	var out []statusChange
	for _, r := range t.Rounds() {
		if prev, ok := before[r.ID]; !ok || prev != r.Status {
			out = append(out, statusChange{RoundID: r.ID, Status: r.Status})
		}
	}
	return out
}
