package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sortmedown/internal/config"
	"sortmedown/internal/history"
	"sortmedown/internal/identification"
	"sortmedown/internal/logging"
	"sortmedown/internal/organizer"
	"sortmedown/internal/services/jellyfin"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger writes to stderr and the state directory log file.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := cfg.Logging.Level
		if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
			level = *c.logLevel
		}
		logger, err := logging.New(logging.Options{
			Level:       level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr", cfg.LogPath()},
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// sorterSession bundles a Sorter with the resources it holds open.
type sorterSession struct {
	cfg     *config.Config
	sorter  *organizer.Sorter
	journal *history.Store
	logger  *slog.Logger
}

func (s *sorterSession) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("close history journal", logging.Error(err))
		}
	}
}

// newSession builds a Sorter over a copy of the loaded config. mutate adjusts
// the copy before the Sorter snapshots it.
func (c *commandContext) newSession(mutate func(*config.Config), opts ...organizer.Option) (*sorterSession, error) {
	base, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	cfgCopy := *base
	cfg := &cfgCopy
	if mutate != nil {
		mutate(cfg)
	}

	providers, err := identification.NewProviders(cfg)
	if err != nil {
		return nil, err
	}
	classifier := identification.NewClassifier(providers, cfg.Sorting.JunkTokens, cfg.RequestDelay(), logger)

	session := &sorterSession{cfg: cfg, logger: logger}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history journal unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "runs are not recorded"),
				logging.String(logging.FieldEventType, "journal_failed"),
			)
		} else {
			session.journal = store
			opts = append([]organizer.Option{organizer.WithJournal(store)}, opts...)
		}
	}
	refresher, err := jellyfin.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if refresher != nil {
		opts = append([]organizer.Option{organizer.WithLibraryRefresher(refresher)}, opts...)
	}
	session.sorter = organizer.New(cfg, classifier, logger, opts...)
	return session, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
