package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/morozRed/lineage/internal/config"
	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/logging"
	"github.com/morozRed/lineage/internal/metrics"
	"github.com/morozRed/lineage/internal/service"
	"github.com/morozRed/lineage/internal/state"
)

// session is one command's view of the configured family service.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	svc     *service.Service
	source  service.Source
}

// loadConfig resolves the config file, environment and persistent flag
// overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"data-dir", &cfg.Store.DataDir},
		{"store", &cfg.Store.Backend},
		{"seed", &cfg.Store.SeedFile},
		{"log-level", &cfg.LogLevel},
	}
	changed := false
	for _, o := range overrides {
		value, err := OptionalStringFlag(cmd, o.flag)
		if err != nil {
			return nil, err
		}
		if value != "" {
			*o.target = value
			changed = true
		}
	}
	if changed {
		cfg.LoadedFrom = append(cfg.LoadedFrom, "flags")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// openSession loads configuration, opens storage and initializes the service.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	blob, err := state.Open(cfg.Store.Backend, cfg.Store.DataDir, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	m := metrics.New()
	svc := service.New(family.NewStore(), state.NewRepository(blob), service.Options{
		SeedFile: cfg.Store.SeedFile,
		Metrics:  m,
	}, logger)

	return &session{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		svc:     svc,
		source:  svc.Init(),
	}, nil
}

func (s *session) Close() error {
	err := s.svc.Close()
	_ = s.logger.Sync()
	return err
}

// memberView returns the derived projection of a stored member.
func (s *session) memberView(id string) (graph.MemberView, error) {
	view, ok := s.svc.Tree().MemberView(id, s.svc.Levels())
	if !ok {
		return graph.MemberView{}, fmt.Errorf("member %q not found", id)
	}
	return view, nil
}

// checkReference rejects a parent or spouse id that names no member or the
// member itself.
func (s *session) checkReference(id, field string, ref *string) error {
	if ref == nil || *ref == "" {
		return nil
	}
	if *ref == id {
		return fmt.Errorf("--%s must not reference the member itself", field)
	}
	if _, ok := s.svc.MemberByID(*ref); !ok {
		return fmt.Errorf("--%s references unknown member %q", field, *ref)
	}
	return nil
}
