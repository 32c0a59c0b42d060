package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/kcoltin/SWSDITAB-sub001/internal/auth"
	"github.com/kcoltin/SWSDITAB-sub001/internal/config"
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/handlers"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
	"github.com/kcoltin/SWSDITAB-sub001/internal/state"
	"github.com/kcoltin/SWSDITAB-sub001/internal/websocket"
)

// shutdownTimeout bounds how long in-flight requests may finish on exit
const shutdownTimeout = 5 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	repo     *repository.Repository
	store    *state.Store
	hub      *websocket.Hub
	services handlers.Services
	handlers *handlers.Handlers
	settings *services.SettingsService

	// password is set when one was generated for this run
	password string
}

// New opens the database and the tournament and wires every service
func New(ctx context.Context, log logger.Logger, cfg *config.Config) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	m := metrics.New()
	store, err := openStore(ctx, log, repo, m, cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	settingsService := services.NewSettingsService(log, repo)
	roundService := services.NewRoundService(log, store)
	ballotService := services.NewBallotService(log, store, m)
	bracketService := services.NewBracketService(log, store)
	pairingService := services.NewPairingService(log, store, m, cfg.SearchNodeBudget, cfg.SearchTimeout)

	// Initialize WebSocket hub; it reads the rounds to greet new clients
	hub := websocket.New(log, roundService)
	roundService.SetBroadcaster(hub)
	ballotService.SetBroadcaster(hub)
	bracketService.SetBroadcaster(hub)
	pairingService.SetBroadcaster(hub)

	svc := handlers.Services{
		Registration: services.NewRegistrationService(log, store),
		Round:        roundService,
		Ballot:       ballotService,
		Bracket:      bracketService,
		Pairing:      pairingService,
		Tournament:   services.NewTournamentService(log, store),
		Posting:      services.NewPostingService(log, store, settingsService),
		Demo:         services.NewDemoService(log, store),
		Settings:     settingsService,
	}

	adminAuth, password, err := setupAuth(ctx, settingsService, cfg.AdminPassword)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	return &App{
		log:      log,
		cfg:      cfg,
		repo:     repo,
		store:    store,
		hub:      hub,
		services: svc,
		handlers: handlers.New(svc, adminAuth, hub.ServeWs, m.Handler(), log),
		settings: settingsService,
		password: password,
	}, nil
}

// openStore loads the configured tournament, or else the most recently
// saved one. When there is none it creates one from the settings file.
func openStore(ctx context.Context, log logger.Logger, repo *repository.Repository, m *metrics.Metrics, cfg *config.Config) (*state.Store, error) {
	id := cfg.TournamentID
	if id == "" {
		list, err := repo.ListTournaments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tournaments: %w", err)
		}
		if len(list) > 0 {
			id = list[0].ID
		}
	}
	if id != "" {
		store, err := state.Open(ctx, log, repo, m, id)
		if !errors.IsKind(err, errors.ErrNotFound) {
			return store, err
		}
	}

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	if settings.ID == "" {
		settings.ID = id
	}
	tour, err := services.NewTournament(settings)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		return nil, fmt.Errorf("save new tournament: %w", err)
	}
	log.Info("Tournament created", "tournament_id", tour.ID, "name", tour.Name, "rounds", len(tour.Rounds()))
	return state.New(log, repo, m, tour), nil
}

// setupAuth picks the operator password: the configured one, else the stored
// hash, else a generated one whose hash is stored. The generated password is
// returned so it can be shown once.
func setupAuth(ctx context.Context, settings *services.SettingsService, password string) (*auth.Auth, string, error) {
	if password != "" {
		a, err := auth.NewWithPassword(password)
		return a, "", err
	}

	hash, err := settings.GetSetting(ctx, services.SettingPasswordHash)
	if err == nil && hash != "" {
		return auth.New([]byte(hash)), "", nil
	}
	if err != nil && !errors.IsKind(err, errors.ErrNotFound) {
		return nil, "", err
	}

	password = auth.GeneratePassword()
	h, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	if err := settings.SetSetting(ctx, services.SettingPasswordHash, string(h)); err != nil {
		return nil, "", err
	}
	return auth.New(h), password, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Services exposes the wired use-cases for command-line tasks
func (a *App) Services() handlers.Services {
	return a.services
}

// Logger returns the application logger
func (a *App) Logger() logger.Logger {
	return a.log
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run serves HTTP and the WebSocket hub until ctx is cancelled, then shuts
// the server down gracefully
func (a *App) Run(ctx context.Context) error {
	addr := a.cfg.Addr()
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		// Set default base URL if not configured, using detected LAN IP
		baseURL = fmt.Sprintf("http://%s%s", getPreferredIP(realNetworkProvider{}), addr)
		a.setDefaultBaseURL(ctx, baseURL)
	} else if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.log.Info("Server starting", "url", baseURL, "tournament_id", a.store.ID())
		if a.password != "" {
			a.log.Warn("Generated operator password; set ADMIN_PASSWORD to choose one", "password", a.password)
		}
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(ctx context.Context, baseURL string) {
	existing, _ := a.settings.GetBaseURL(ctx)

	// Set default if empty or if current value uses localhost
	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges. Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
