package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
	"reeldex/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
}

// withStore loads config, opens the catalog, and hands both to fn.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.buildLogger(cfg)
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(cfg, store, logger)
}

// withLockedStore is withStore plus the exclusive run lock used by the
// batch commands, so two scans never race over one catalog.
func (c *commandContext) withLockedStore(fn func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error) error {
	return c.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
		lock := flock.New(cfg.LockPath())
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("another reeldex run holds the lock at %s", cfg.LockPath())
		}
		defer func() {
			_ = lock.Unlock()
		}()
		return fn(cfg, store, logger)
	})
}

// signalContext cancels on SIGINT/SIGTERM so batch runs finish their
// bookkeeping instead of dying mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
