package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// DefaultProfileTypes are collected when ProfilerConfig.Types is empty.
var DefaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// ProfilerConfig controls continuous profiling via Pyroscope.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	Types             []pyroscope.ProfileType
}

func (c ProfilerConfig) validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("profiler server address is required"))
	}
	if c.ApplicationName == "" {
		errs = append(errs, errors.New("profiler application name is required"))
	}
	return errors.Join(errs...)
}

func (c ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	if len(c.Types) == 0 {
		return DefaultProfileTypes
	}
	return c.Types
}

// Profiler is a stoppable Pyroscope session. The zero value is disabled.
type Profiler struct {
	session *pyroscope.Profiler
	logger  *zap.Logger
	stop    sync.Once
}

func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.Enabled {
		logger.Info("Profiling disabled")
		return p, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil && host != "" {
		tags["hostname"] = host
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            logger.Named("pyroscope").Sugar(),
		Tags:              tags,
		ProfileTypes:      cfg.profileTypes(),
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	p.session = session

	logger.Info("Profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.Int("profile_types", len(cfg.profileTypes())),
	)
	return p, nil
}

func (p *Profiler) IsEnabled() bool {
	return p != nil && p.session != nil
}

// Stop flushes the last profiles. Later calls do nothing.
func (p *Profiler) Stop() error {
	if !p.IsEnabled() {
		return nil
	}
	var err error
	p.stop.Do(func() {
		if stopErr := p.session.Stop(); stopErr != nil {
			err = fmt.Errorf("stop pyroscope: %w", stopErr)
		}
	})
	return err
}
