package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/adapters/chart"
	"github.com/emiliopalmerini/growthlab/internal/adapters/modelfile"
	"github.com/emiliopalmerini/growthlab/internal/adapters/otel"
	"github.com/emiliopalmerini/growthlab/internal/adapters/source"
	"github.com/emiliopalmerini/growthlab/internal/adapters/turso"
	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/growth"
	"github.com/emiliopalmerini/growthlab/internal/infrastructure/config"
	"github.com/emiliopalmerini/growthlab/internal/ingest"
	"github.com/emiliopalmerini/growthlab/internal/logging"
	"github.com/emiliopalmerini/growthlab/internal/ports"
	"github.com/emiliopalmerini/growthlab/internal/random"
	"github.com/emiliopalmerini/growthlab/internal/recommend"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics ports.MetricsRecorder
	Opener  *source.Opener
	Service *app.Service
}

// NewAppContext reads the configuration, applies flag overrides and wires the service.
func NewAppContext(ctx context.Context, cmd *cobra.Command) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd, cfg)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	src := random.Default()
	a := &AppContext{
		Config:  cfg,
		Logger:  logger,
		Metrics: newMetrics(ctx, cfg, logger),
		Opener:  source.NewOpener(),
	}
	a.Service = app.NewService(
		recommend.New(src),
		growth.New(src),
		chart.NewPNGRenderer(0, 0),
		a.Metrics,
		logger,
	)
	a.Service.SetModel(a.loadModel(ctx))
	return a, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("data") {
		cfg.DataLocation = dataLocation
	}
	if flags.Changed("model") {
		cfg.ModelPath = modelPath
	}
	if flags.Changed("wells") {
		cfg.Wells = wellList
	}
}

func newMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) ports.MetricsRecorder {
	if !cfg.OTelEnabled {
		return otel.NewNoOpRecorder()
	}
	rec, err := otel.NewRecorder(ctx, otel.Config{
		Endpoint: cfg.OTelEndpoint,
		Enabled:  cfg.OTelEnabled,
		Insecure: cfg.OTelInsecure,
	})
	if err != nil {
		logger.Warn("metrics export disabled", zap.Error(err))
		return otel.NewNoOpRecorder()
	}
	return rec
}

// loadModel returns nil when the model is missing or invalid, which selects fallback mode.
func (a *AppContext) loadModel(ctx context.Context) *domain.CorrelationModel {
	if a.Config.ModelPath == "" {
		return nil
	}
	rc, err := a.Opener.Open(ctx, a.Config.ModelPath)
	if err != nil {
		a.Logger.Info("no correlation model, using exploration mode", zap.String("path", a.Config.ModelPath), zap.Error(err))
		return nil
	}
	defer func() { _ = rc.Close() }()

	m, err := modelfile.Decode(rc)
	if err != nil {
		a.Logger.Warn("invalid correlation model, using exploration mode", zap.String("path", a.Config.ModelPath), zap.Error(err))
		return nil
	}
	a.Logger.Info("correlation model loaded",
		zap.Float64("mix_cycles", m.Optimal.MixCycles),
		zap.Float64("mix_height", m.Optimal.MixHeight),
		zap.Float64("mix_volume", m.Optimal.MixVolume),
		zap.Bool("reference_found", m.Reference.Found))
	return m
}

// Loader reads wells from the configured data location.
func (a *AppContext) Loader() (*ingest.Loader, error) {
	loc, err := source.NewLocation(a.Config.DataLocation, a.Opener)
	if err != nil {
		return nil, err
	}
	return ingest.NewLoader(loc, a.Metrics, a.Logger), nil
}

// LoadWells loads the configured wells into the service.
func (a *AppContext) LoadWells(ctx context.Context) (domain.Dataset, error) {
	loader, err := a.Loader()
	if err != nil {
		return nil, err
	}
	return a.Service.Load(ctx, loader, a.Config.WellIDs()), nil
}

// OpenDB connects to the configured database.
func (a *AppContext) OpenDB() (*sql.DB, error) {
	db, err := turso.NewDB(a.Config.DatabaseURL, a.Config.AuthToken, turso.Options{Ping: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	_ = a.Logger.Sync()
	if err := a.Opener.Close(); err != nil {
		return err
	}
	return a.Metrics.Close(ctx)
}

// withApp runs fn with a fully wired AppContext and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *AppContext) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := NewAppContext(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()
	return fn(ctx, a)
}
