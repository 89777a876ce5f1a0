// Package cli wires configuration, logging and the optional journal and
// event publisher into the orcamento commands.
package cli

import (
	"io"
	"net/http"

	"github.com/joho/godotenv"

	"orcamento/internal/config"
	"orcamento/internal/dashboard"
	"orcamento/internal/events"
	"orcamento/internal/financeapi"
	"orcamento/internal/journal"
	"orcamento/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the logger described by cfg, writing to w, and makes it
// the slog default.
func SetupLogger(cfg *config.Config, w io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from path (or ORCAMENTO_CONFIG
// when path is empty) and validates it.
func LoadAndValidateConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFinanceClient returns the budget API client for cfg.
func NewFinanceClient(cfg *config.Config) *financeapi.Client {
	return financeapi.NewClient(cfg.FinanceAPIURL,
		financeapi.WithHTTPClient(&http.Client{}),
		financeapi.WithTimeout(cfg.RequestTimeout))
}

// InitJournal opens the submission journal, or returns nil when it is disabled.
func InitJournal(logger *log.Logger, cfg *config.Config) (*journal.Journal, error) {
	if cfg.JournalPath == "" {
		return nil, nil
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Error("Failed to open submission journal", log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeDatabase, "path", cfg.JournalPath)
		return nil, err
	}
	logger.Info("Submission journal opened", "path", cfg.JournalPath)
	return j, nil
}

// InitPublisher connects the expense event publisher, or returns nil when
// AMQP is disabled.
func InitPublisher(logger *log.Logger, cfg *config.Config) (*events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	p, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Error("Failed to connect AMQP publisher", log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork, "exchange", cfg.AMQPExchange)
		return nil, err
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return p, nil
}

// services are the collaborators a command needs; close releases them.
type services struct {
	client     *financeapi.Client
	journal    *journal.Journal
	publisher  *events.Publisher
	controller *dashboard.Controller
}

func newServices(logger *log.Logger, cfg *config.Config) (*services, error) {
	s := &services{client: NewFinanceClient(cfg)}

	j, err := InitJournal(logger, cfg)
	if err != nil {
		return nil, err
	}
	s.journal = j

	p, err := InitPublisher(logger, cfg)
	if err != nil {
		s.close()
		return nil, err
	}
	s.publisher = p

	opts := []dashboard.Option{dashboard.WithLogger(logger)}
	if s.journal != nil {
		opts = append(opts, dashboard.WithRecorder(s.journal))
	}
	if s.publisher != nil {
		opts = append(opts, dashboard.WithNotifier(s.publisher))
	}
	s.controller = dashboard.NewController(s.client, opts...)
	return s, nil
}

func (s *services) close() {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
}
