package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pqueue/internal/config"
	"pqueue/internal/logging"
	"pqueue/internal/queue"
	"pqueue/internal/queueaccess"
)

type commandContext struct {
	configFlag *string
	queueFlag  *string
	jsonFlag   *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, queueFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		queueFlag:  queueFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path, queueID string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if c.queueFlag != nil {
			queueID = *c.queueFlag
		}
		cfg, resolved, exists, err := config.Load(path, config.WithQueueID(queueID))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withQueue opens the configured queue for the duration of fn. Commands that
// modify the queue pass exclusive so concurrent pqueue processes serialize on
// the database lock.
func (c *commandContext) withQueue(cmd *cobra.Command, exclusive bool, fn func(context.Context, *queue.Queue) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	ctx := logging.WithCorrelationID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(ctx, logger).With(logging.String("command", cmd.Name()))

	session, err := queueaccess.Open(ctx, cfg, logger, exclusive)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("close queue", logging.Error(cerr))
		}
	}()
	return fn(ctx, session.Queue)
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
