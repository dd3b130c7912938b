// Package app holds the services shared by one command run, acting as a
// small dependency injection container.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/clock/system"
	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/id/uuid"
	"github.com/JakeFAU/webanalysis/internal/logging"
	"github.com/JakeFAU/webanalysis/internal/metrics"
	"github.com/JakeFAU/webanalysis/internal/present"
	"github.com/JakeFAU/webanalysis/internal/storage"
	"github.com/JakeFAU/webanalysis/internal/storage/local"
)

// App holds the logger, presenters and run identity for one invocation.
// It is built once per command and closed by a cobra hook.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	logCloser io.Closer
	presenter present.Presenter
	reporter  present.Reporter
	runID     string
	started   time.Time
	clock     *system.Clock
}

// newLogger is swapped in tests to observe the log file closer.
var newLogger = logging.New

// Option customizes NewApp.
type Option func(*options)

type options struct {
	stdout io.Writer
	store  storage.BlobStore
	logger *zap.Logger
}

// WithStdout sends console output to w instead of os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithBlobStore writes charts to store instead of output.dir.
func WithBlobStore(store storage.BlobStore) Option {
	return func(o *options) { o.store = store }
}

// WithLogger skips logger construction from config.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() config.Config { return a.cfg }

// GetLogger returns the run-scoped logger.
func (a *App) GetLogger() *zap.Logger { return a.logger }

// GetPresenter returns the fan-out of enabled chart presenters.
func (a *App) GetPresenter() present.Presenter { return a.presenter }

// GetReporter returns the console table reporter, or a discarding one.
func (a *App) GetReporter() present.Reporter { return a.reporter }

// GetRunID returns the identifier naming this run's artifacts.
func (a *App) GetRunID() string { return a.runID }

// NewApp builds every shared service from cfg and fails fast if any cannot
// be initialized.
func NewApp(cfg config.Config, opts ...Option) (_ *App, err error) {
	o := options{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	logger, closer := o.logger, io.Closer(nil)
	if logger == nil {
		logger, closer, err = newLogger(logging.Config{
			Development: cfg.Logging.Development,
			File:        cfg.Logging.File,
			MaxSizeMB:   cfg.Logging.MaxSizeMB,
			MaxBackups:  cfg.Logging.MaxBackups,
			MaxAgeDays:  cfg.Logging.MaxAgeDays,
		})
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	defer func() {
		if err != nil && closer != nil {
			_ = closer.Close()
		}
	}()

	clk := system.New()
	runID, err := uuid.New().NewRunID()
	if err != nil {
		return nil, err
	}
	started, err := uuid.StartedAt(runID)
	if err != nil {
		started = clk.Now()
	}
	logger = logger.With(zap.String("run_id", runID))

	metrics.Init()

	var (
		presenters present.Multi
		reporter   present.Reporter = present.Discard{}
	)
	if cfg.Output.Console {
		console := present.NewConsole(o.stdout, logger.Named("console"))
		presenters = append(presenters, console)
		reporter = console
	}
	if cfg.Output.Charts {
		store := o.store
		if store == nil {
			fsStore, err := local.New(local.Config{BaseDir: cfg.Output.Dir})
			if err != nil {
				return nil, fmt.Errorf("init chart store: %w", err)
			}
			store = fsStore
		}
		presenters = append(presenters, present.NewHTML(store, runID, logger.Named("charts")))
	}

	logger.Debug("application services initialized",
		zap.Bool("console", cfg.Output.Console),
		zap.Bool("charts", cfg.Output.Charts),
	)
	return &App{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		presenter: presenters,
		reporter:  reporter,
		runID:     runID,
		started:   started,
		clock:     clk,
	}, nil
}

// Close exports metrics and flushes the logger. It reports the first
// failure but always attempts every step.
func (a *App) Close() error {
	a.logger.Info("run finished", zap.Duration("duration", a.clock.Since(a.started)))

	var errs []error
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("metrics export failed", zap.Error(err))
		errs = append(errs, err)
	}
	// Sync on stderr returns EINVAL on some platforms; nothing to act on.
	_ = a.logger.Sync()
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
