package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martijn/cmdgate/internal/core/engine"
	"github.com/martijn/cmdgate/internal/core/repository"
	"github.com/martijn/cmdgate/internal/core/service"
	"github.com/martijn/cmdgate/internal/infrastructure/logger"
	"github.com/martijn/cmdgate/internal/infrastructure/sqlite"
	"github.com/martijn/cmdgate/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cmdgate",
	Short: "cmdgate - gated command execution",
	Long: `cmdgate runs shell commands behind an allow-list/block-list gate with
timeout enforcement and execution history.

It provides:
- Allow-list / block-list command validation
- Timeout enforcement with SIGTERM/SIGKILL escalation
- Concurrent process tracking and bulk termination
- In-memory history with pattern analysis
- A sqlite execution archive
- REST API for remote execution`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/cmdgate/config.yml)")
}

// Services holds all initialized services
type Services struct {
	Log              *logger.ZapLogger
	DB               *sqlite.DB
	Registry         *engine.Registry
	History          *engine.History
	ExecutionService *service.ExecutionService
	AuthService      *service.AuthService
}

// initServices wires the engine, repositories and services. requireDB
// makes a missing/unopenable archive fatal (the server needs it for
// client credentials); otherwise the CLI degrades to no archiving.
func initServices(requireDB bool) (*Services, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var db *sqlite.DB
	var executionRepo repository.ExecutionRepository
	var clientRepo repository.ClientRepository

	if cfg.DBPath != "" {
		db, err = sqlite.New(cfg.DBPath)
		if err != nil {
			if requireDB {
				return nil, fmt.Errorf("failed to initialize database: %w", err)
			}
			log.Warn("archive database unavailable, executions will not be archived", "path", cfg.DBPath, "error", err)
		}
	} else if requireDB {
		return nil, fmt.Errorf("db_path is required")
	}

	if db != nil {
		executionRepo = sqlite.NewExecutionRepository(db)
		clientRepo = sqlite.NewClientRepository(db)
	}

	registry := engine.NewRegistry()
	history := engine.NewHistory()
	validator := engine.NewValidator(cfg.AllowedCommands, cfg.BlockedPatterns, cfg.MaxConcurrent, registry.Count)
	executor := engine.NewExecutor(engine.Options{
		DefaultTimeoutMs: cfg.DefaultTimeoutMs,
		DefaultWorkdir:   cfg.DefaultWorkdir,
	}, validator, registry, history, log)

	executionService := service.NewExecutionService(executor, registry, history, executionRepo, log)
	authService := service.NewAuthService(clientRepo, cfg.JWTSecretKey, cfg.JWTAlgorithm)

	return &Services{
		Log:              log,
		DB:               db,
		Registry:         registry,
		History:          history,
		ExecutionService: executionService,
		AuthService:      authService,
	}, nil
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.Log != nil {
		_ = s.Log.Sync()
	}
}
