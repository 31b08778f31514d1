package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Frederikmahipal/ba-client/internal/repositories"
	"github.com/Frederikmahipal/ba-client/internal/services"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify *services.SpotifyPlayerService
	api     *services.APIService
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify *services.SpotifyPlayerService
	API     *services.APIService
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		api:     opts.API,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playCommand, nowCommand, queueCommand, historyCommand, devicesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openSessions opens the session repository backed by the configured
// database. The caller must invoke the returned closer.
func (r *Runner) openSessions() (*repositories.SessionRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	closer := func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
	}
	return repositories.NewSessionRepository(db), closer, nil
}

// ensureSession restores the persisted OAuth session into the transport so a
// command can call the player endpoints without a fresh login.
func (r *Runner) ensureSession(ctx context.Context) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify transport not initialized", shared.ErrServiceUnavailable)
	}
	if r.spotify.Token() != nil {
		return nil
	}

	sessions, closeDB, err := r.openSessions()
	if err != nil {
		return err
	}
	defer closeDB()

	session, err := sessions.Get(r.spotify.Name())
	if err != nil {
		return fmt.Errorf("%w: run 'ba-client auth login' first", shared.ErrNotAuthenticated)
	}

	return r.spotify.AuthenticateToken(ctx, &session.Token)
}

// saveSession persists the token, swallowing database errors so a login still
// succeeds when persistence is unavailable.
func (r *Runner) saveSession(token *oauth2.Token) {
	sessions, closeDB, err := r.openSessions()
	if err != nil {
		r.logger.Warn("session not persisted", "error", err)
		return
	}
	defer closeDB()

	if err := sessions.Save(r.spotify.Name(), token); err != nil {
		r.logger.Warn("session not persisted", "error", err)
		return
	}
	r.logger.Info("session persisted", "provider", r.spotify.Name())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
