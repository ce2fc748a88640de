package netsummary

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/netlens/netsummary/internal/agent"
	"github.com/netlens/netsummary/internal/backend"
	"github.com/netlens/netsummary/internal/chunker"
	"github.com/netlens/netsummary/internal/config"
	"github.com/netlens/netsummary/internal/errortypes"
	"github.com/netlens/netsummary/internal/server"
	"github.com/netlens/netsummary/internal/summarycache"
	"github.com/netlens/netsummary/internal/telemetry"
)

// Config represents the configuration for the NetSummary service.
type Config = config.Config

// Server represents the NetSummary service.
type Server struct {
	config     *config.Config
	agent      *agent.Agent
	store      summarycache.Store
	toolServer server.SummaryToolServer
	logger     *slog.Logger // Logger for this Server instance
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new NetSummary Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
// If opts.Logger is nil, slog.Default() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	a, store, err := CreateComponents(cfg, logger)
	if err != nil {
		// CreateComponents already logs the specific error
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing summary tool server component")
	mcpServer := server.NewSummaryToolServer(a)
	err = mcpServer.Initialize() // Note: mcpServer.Initialize still uses global slog internally
	if err != nil {
		logger.Error("Failed to initialize MCP summary tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP summary tool server component")
	}

	logger.Info("NetSummary server successfully initialized")
	return &Server{
		config:     cfg,
		agent:      a,
		store:      store,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the NetSummary service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start starts the NetSummary service.
func (s *Server) Start() error {
	s.logger.Info("Starting NetSummary service")
	return s.toolServer.Start()
}

// Stop stops the NetSummary service.
func (s *Server) Stop() error {
	s.logger.Info("Stopping NetSummary service")
	err := s.toolServer.Stop()
	if err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	// Close the store
	s.logger.Info("Closing summary store")
	err = s.store.Close()
	if err != nil {
		s.logger.Error("Failed to close summary store", "error", err)
		return err
	}

	s.logger.Info("NetSummary service stopped")
	return nil
}

// Generate chunks the raw device output for a session, summarizes each chunk,
// and caches the intermediate summaries.
func (s *Server) Generate(ctx context.Context, tenant, resource, rawOutput, instruction string) (bool, string) {
	return s.agent.Generate(ctx, tenant, resource, rawOutput, instruction)
}

// FinalReport merges the session's cached summaries into one final report.
func (s *Server) FinalReport(ctx context.Context, tenant, resource string) (bool, string) {
	return s.agent.GetFinalResponse(ctx, tenant, resource)
}

// ResetSession discards the session's cached summaries.
func (s *Server) ResetSession(tenant, resource string) (int, error) {
	return s.agent.ResetSession(tenant, resource)
}

// GetAgent returns the agent instance used by the server.
func (s *Server) GetAgent() *agent.Agent {
	return s.agent
}

// GetStore returns the summary store instance used by the server.
func (s *Server) GetStore() summarycache.Store {
	return s.store
}

// CreateComponents creates and initializes the components of the NetSummary
// service without creating a server instance. This is useful for callers that
// need direct access to the agent and store.
func CreateComponents(cfg *Config, logger *slog.Logger) (*agent.Agent, summarycache.Store, error) {
	if logger == nil {
		logger = slog.Default()
		logger.Debug("CreateComponents called with nil logger, defaulting to slog.Default()")
	}

	// Build the backend adapter
	backendCfg := backendConfig(cfg)
	logger.Info("Initializing backend adapter for CreateComponents", "variant", backendCfg.Variant)
	adapter, err := backend.NewAdapter(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend adapter in CreateComponents", "variant", backendCfg.Variant, "error", err)
		return nil, nil, err
	}

	metrics := telemetry.NewMetricsCollector()
	client := backend.NewClient(adapter, backendCfg, logger, metrics)

	// Build the chunker
	policy := chunker.Policy(cfg.Chunker.Policy)
	if cfg.Chunker.Policy == "" {
		policy = chunker.Policy(backend.DefaultChunkPolicy(backendCfg.Variant))
	}
	maxChunkLen := cfg.Chunker.MaxChunkLen
	if maxChunkLen <= 0 {
		maxChunkLen = backend.DefaultChunkLen(backendCfg.Variant)
	}
	logger.Info("Initializing chunker for CreateComponents", "policy", policy, "max_chunk_len", maxChunkLen)
	ch, err := chunker.New(policy, maxChunkLen)
	if err != nil {
		logger.Error("Failed to initialize chunker in CreateComponents", "policy", policy, "error", err)
		return nil, nil, err
	}

	// Build the summary store
	var store summarycache.Store
	switch cfg.Store.Driver {
	case "sqlite":
		logger.Info("Initializing SQLite summary store for CreateComponents", "path", cfg.Store.SQLitePath)
		sqliteStore := summarycache.NewSQLiteStore()
		if err := sqliteStore.Initialize(cfg.Store.SQLitePath); err != nil {
			logger.Error("Failed to initialize SQLite summary store in CreateComponents", "path", cfg.Store.SQLitePath, "error", err)
			return nil, nil, errortypes.DatabaseError(err, "Failed to initialize SQLite summary store")
		}
		store = sqliteStore
	case "memory", "":
		logger.Info("Initializing in-memory summary store for CreateComponents")
		store = summarycache.NewMemoryStore()
	default:
		logger.Warn("Unknown store driver in CreateComponents, using in-memory store", "driver", cfg.Store.Driver)
		store = summarycache.NewMemoryStore()
	}

	a, err := agent.New(client, ch, store, logger, metrics)
	if err != nil {
		logger.Error("Failed to initialize agent in CreateComponents", "error", err)
		return nil, nil, err
	}

	logger.Info("Components successfully initialized via CreateComponents")
	return a, store, nil
}

// backendConfig maps the service configuration onto a backend.Config.
func backendConfig(cfg *Config) backend.Config {
	var timeout time.Duration
	if cfg.Backend.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}
	port := ""
	if cfg.Backend.Port > 0 {
		port = strconv.Itoa(cfg.Backend.Port)
	}
	return backend.Config{
		Variant:         cfg.Backend.Variant,
		Host:            cfg.Backend.Host,
		Port:            port,
		APIBase:         cfg.Backend.APIBase,
		Model:           cfg.Backend.Model,
		AuthToken:       cfg.Backend.APIKey,
		SystemPreamble:  cfg.Backend.SystemPreamble,
		MaxOutputTokens: cfg.Backend.MaxOutputTokens,
		Timeout:         timeout,
	}
}
