package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hlsx/internal/repositories"
	"github.com/desertthunder/hlsx/internal/services"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/desertthunder/hlsx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	headers    *shared.RequestHeaders
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	playlists  *services.PlaylistService
	engine     *tasks.CheckEngine
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
	r.init()
	return r
}

// init builds the playlist service and check engine from the current config and headers.
func (r *Runner) init() {
	headers, err := shared.ParseHeaders(r.config.Check.Headers)
	if err != nil {
		r.logger.Warn("ignoring configured headers", "error", err)
		headers = &shared.RequestHeaders{Headers: map[string]string{}}
	}
	if r.headers != nil {
		headers.Merge(r.headers)
	}

	r.playlists = services.NewPlaylistService(services.PlaylistOpts{
		HTTPClient: r.httpClient,
		Timeout:    r.config.Timeout(),
		UserAgent:  r.config.Check.UserAgent,
		Headers:    headers,
	})
	r.engine = tasks.NewCheckEngine(r.playlists, r.logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		checkCommand, profilesCommand, historyCommand, setupCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openRepository opens the configured history database, applying pending migrations.
func (r *Runner) openRepository() (*repositories.CheckRunRepository, func(), error) {
	db, err := shared.NewDatabase(r.databasePath())
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repositories.NewCheckRunRepository(db), func() { db.Close() }, nil
}

// databasePath falls back to the default path when the loaded config has no [database] section.
func (r *Runner) databasePath() string {
	if r.config.Database.Path == "" {
		return shared.DefaultConfig().Database.Path
	}
	return r.config.Database.Path
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

	return r.writeBytes(output)
}

func (r *Runner) writeBytes(output []byte) error {
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
