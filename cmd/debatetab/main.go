package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kcoltin/SWSDITAB-sub001/internal/app"
	"github.com/kcoltin/SWSDITAB-sub001/internal/config"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var (
	version = "dev"
)

// showBanner prints the DebateTab logo in a box
func showBanner() {
	width := 44
	border := strings.Repeat("═", width)
	lines := []string{
		"",
		"   D E B A T E T A B",
		"   tournament tabulation " + version,
		"",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range lines {
		line += strings.Repeat(" ", max(0, width-len([]rune(line))))
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// loadConfig reads the environment and applies the global flags over it
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("adminpw") {
		cfg.AdminPassword = c.String("adminpw")
	}
	if c.IsSet("loglevel") {
		cfg.LogLevel = c.String("loglevel")
	}
	if c.IsSet("settings") {
		cfg.SettingsFile = c.String("settings")
	}
	if c.IsSet("tournament") {
		cfg.TournamentID = c.String("tournament")
	}
	return cfg, cfg.Validate()
}

// openApp loads the configuration and wires the application
func openApp(c *cli.Context) (*app.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	appLog := logger.NewWithOptions(os.Stderr, logger.ParseLevel(cfg.LogLevel), logger.ParseFormat(cfg.LogFormat))
	a, err := app.New(c.Context, appLog, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the tabulation server",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "nobanner", Usage: "skip the startup banner"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("nobanner") {
				showBanner()
			}
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "fill the tournament with generated demo registrations",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "schools", Value: 6},
			&cli.IntFlag{Name: "entries", Value: 24},
			&cli.IntFlag{Name: "judges", Value: 14},
			&cli.IntFlag{Name: "rooms", Value: 12},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed; 0 picks one"},
		},
		Action: func(c *cli.Context) error {
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Services().Demo.Seed(c.Context, services.DemoSize{
				Schools: c.Int("schools"),
				Entries: c.Int("entries"),
				Judges:  c.Int("judges"),
				Rooms:   c.Int("rooms"),
				Seed:    c.Uint64("seed"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %d schools, %d entries, %d judges and %d rooms\n",
				res.SchoolsCreated, res.EntriesCreated, res.JudgesCreated, res.RoomsCreated)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the tournament snapshot as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: named after the tournament)"},
		},
		Action: func(c *cli.Context) error {
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			data, filename, err := a.Services().Tournament.Export(c.Context)
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				filename = out
			}
			if filename == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(filename, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", filename)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace the tournament with an exported snapshot",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("import needs a snapshot file", 2)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Services().Tournament.Import(c.Context, data); err != nil {
				return err
			}
			fmt.Printf("Imported %s\n", path)
			return nil
		},
	}
}

func main() {
	cliApp := &cli.App{
		Name:    "debatetab",
		Usage:   "debate tournament tabulation",
		Version: version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (env PORT, default 8080)"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (env DB_PATH)"},
			&cli.StringFlag{Name: "adminpw", Usage: "operator password (env ADMIN_PASSWORD; generated if unset)"},
			&cli.StringFlag{Name: "loglevel", Usage: "debug, info, warn or error (env LOG_LEVEL)"},
			&cli.StringFlag{Name: "settings", Usage: "YAML event settings for a new tournament (env SETTINGS_FILE)"},
			&cli.StringFlag{Name: "tournament", Usage: "tournament ID to open (env TOURNAMENT_ID)"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
			exportCommand(),
			importCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
