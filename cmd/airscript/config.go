package main

import (
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Airsequel/AirScript/pkg/driver"
	airruntime "github.com/Airsequel/AirScript/pkg/runtime"
)

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" || level == "off" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func (c *cli) hostConfig(concurrency int) (driver.Config, error) {
	memory, err := driver.ParseMemory(c.v.GetString("memory"))
	if err != nil {
		return driver.Config{}, err
	}
	config := driver.Config{
		Budget: airruntime.Budget{
			MaxCycles:      c.v.GetInt64("cycles"),
			MaxMemoryBytes: memory,
			MaxWallTime:    c.v.GetDuration("time"),
		},
		MaxBudget: airruntime.Budget{
			MaxCycles:   c.v.GetInt64("max_cycles"),
			MaxWallTime: c.v.GetDuration("max_time"),
		},
		Concurrency: concurrency,
	}
	if err := config.Budget.Validate(); err != nil {
		return driver.Config{}, err
	}
	if text := c.v.GetString("max_memory"); text != "" {
		limit, err := driver.ParseMemory(text)
		if err != nil {
			return driver.Config{}, err
		}
		config.MaxBudget.MaxMemoryBytes = limit
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	return config, nil
}

func (c *cli) newHost(concurrency int) (*driver.Host, error) {
	config, err := c.hostConfig(concurrency)
	if err != nil {
		return nil, err
	}
	return driver.NewHost(config, c.logger, nil), nil
}
