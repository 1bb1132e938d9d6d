package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roster/internal/commands"
	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/eventbus"
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/logging"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/data/db"
	"github.com/colonyops/roster/internal/data/stores"
	"github.com/colonyops/roster/internal/integration/firebase"
	"github.com/colonyops/roster/internal/integration/studentapi"
	"github.com/colonyops/roster/internal/roster"
	"github.com/colonyops/roster/internal/tui"
	"github.com/colonyops/roster/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func buildParts() (v, c, d string) {
	v, c, d = version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	return v, c, d
}

func build() string {
	v, c, d := buildParts()

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		rosterApp = &roster.App{}
		database  *db.DB
		bgCancel  context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "roster",
		Usage:     "Manage student records from the terminal",
		UsageText: "roster [global options] command [command options]",
		Description: `Roster is a terminal client for a student records API.

Sign in with 'roster auth login', then list, add, edit, delete and export
students. Run 'roster' with no arguments to open the interactive client.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("ROSTER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/roster.log)",
				Sources:     cli.EnvVars("ROSTER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ROSTER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("ROSTER_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// A .env next to the working directory may carry ROSTER_* settings.
			// Missing is fine.
			_ = godotenv.Load()

			// Always log to a file; use explicit path or default to <datadir>/roster.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "roster.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, err
			}

			kvStore := stores.NewKVStore(database)
			notifyStore := stores.NewNotifyStore(database)

			bgCtx, cancel := context.WithCancel(context.Background())
			bgCancel = cancel
			go stores.RunSweeper(bgCtx, kvStore, 5*time.Minute)

			bus := eventbus.New(64)
			eventbus.NewNotificationRouter(bus).Register()
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			go bus.Start(bgCtx)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			httpClient := &http.Client{}
			idp := firebase.New(firebase.Config{
				APIKey:      cfg.Auth.APIKey,
				IdentityURL: cfg.Auth.IdentityURL,
				TokenURL:    cfg.Auth.TokenURL,
				HTTPClient:  httpClient,
			}, logging.Component("firebase"))

			auth := identity.NewAuth(idp, stores.NewSessionStore(kvStore), logging.Component("auth"),
				identity.WithTimeout(cfg.Auth.Timeout))
			if err := auth.Restore(ctx); err != nil {
				log.Warn().Err(err).Msg("could not restore session")
			}
			if u := auth.CurrentUser(); u != nil {
				ctx = logging.WithUserID(ctx, u.UID)
			}

			// Observe fires immediately with the restored user; only later
			// changes are published.
			first := true
			auth.Observe(func(u *identity.User) {
				if first {
					first = false
					return
				}
				bus.PublishAuthChanged(eventbus.AuthChangedPayload{User: u})
			})

			apiCfg := studentapi.Config{
				BaseURL:    cfg.API.BaseURL,
				Timeout:    cfg.API.Timeout,
				HTTPClient: httpClient,
				Metrics:    studentapi.NewMetrics(reg),
			}
			if cfg.API.SendAuthToken {
				apiCfg.Token = auth.Token
			}
			api, err := studentapi.New(apiCfg, logging.Component("studentapi"))
			if err != nil {
				return ctx, fmt.Errorf("create student api client: %w", err)
			}

			students := roster.NewStudentService(api, bus, cfg.API.DeleteConcurrency, logging.Component("students"))

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*rosterApp = *roster.NewApp(
				students,
				auth,
				stores.NewPrefsStore(kvStore),
				notifyStore,
				bus,
				reg,
				cfg,
				database,
			)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop the sweeper and the event bus
			if bgCancel != nil {
				bgCancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	v, cm, d := buildParts()
	tuiCmd := commands.NewTuiCmd(flags, rosterApp, tui.BuildInfo{Version: v, Commit: cm, Date: d})

	app = tuiCmd.Register(app)
	app = commands.NewLsCmd(flags, rosterApp).Register(app)
	app = commands.NewStudentCmd(flags, rosterApp).Register(app)
	app = commands.NewExportCmd(flags, rosterApp).Register(app)
	app = commands.NewAuthCmd(flags, rosterApp).Register(app)
	app = commands.NewPagesCmd().Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'roster --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

// openDatabase opens the local state database, moving a corrupt file aside
// and starting fresh once if needed.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  time.Duration(cfg.Database.BusyTimeout) * time.Millisecond,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Warn().Err(err).Msg("database corrupt, backing up and recreating")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}
