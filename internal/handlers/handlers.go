package handlers

import (
	"net/http"

	"github.com/kcoltin/SWSDITAB-sub001/internal/auth"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// Services groups the use-cases the API exposes
type Services struct {
	Registration services.RegistrationServicer
	Round        services.RoundServicer
	Ballot       services.BallotServicer
	Bracket      services.BracketServicer
	Pairing      services.PairingServicer
	Tournament   services.TournamentServicer
	Posting      services.PostingServicer
	Demo         services.DemoServicer
	Settings     services.SettingsServicer
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Services
	Auth    *auth.Auth
	Log     logger.Logger
	ws      http.HandlerFunc
	metrics http.Handler
}

// New creates a new Handlers instance with all dependencies. ws and metrics
// may be nil, in which case their routes are not mounted.
func New(svc Services, adminAuth *auth.Auth, ws http.HandlerFunc, metrics http.Handler, log logger.Logger) *Handlers {
	return &Handlers{
		Services: svc,
		Auth:     adminAuth,
		Log:      log,
		ws:       ws,
		metrics:  metrics,
	}
}

// NewForTesting creates a Handlers instance whose operator password is
// "test-password"
func NewForTesting(svc Services, log logger.Logger) *Handlers {
	testAuth, err := auth.NewWithPassword("test-password")
	if err != nil {
		panic(err)
	}
	return New(svc, testAuth, nil, nil, log)
}
