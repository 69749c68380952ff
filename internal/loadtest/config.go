package loadtest

import (
	"errors"
	"fmt"
	"os"
	"time"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/transport"
	"umami-loadtest/lib/configutil"
)

const DefaultHost = "https://drupal-9.0.7.ddev.site/"

// SetConfig weighs a task set and the tasks in it. A task left out of Tasks keeps its default
// weight. A weight of 0 disables the set or the task.
type SetConfig struct {
	Weight int            `json:"weight"`
	Tasks  map[string]int `json:"tasks"`
}

type Config struct {
	Host           string  `json:"host"`
	Users          int     `json:"users"`
	HatchRate      float64 `json:"hatch_rate"`
	RunTimeSeconds int     `json:"run_time_seconds"`
	WaitMinMs      int     `json:"wait_min_ms"`
	WaitMaxMs      int     `json:"wait_max_ms"`
	// TimeoutSeconds of 0 uses transport.DefaultTimeout.
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	UserAgent         string  `json:"user_agent"`
	// Seed makes task selection reproducible, 0 seeds from the clock.
	Seed int64 `json:"seed"`
	// Database is the sqlite file results are saved to, nothing is saved if it is empty.
	Database  string               `json:"database"`
	TaskSets  map[string]SetConfig `json:"task_sets"`
	Telemetry telemetry.Config     `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		Users:          10,
		HatchRate:      1,
		RunTimeSeconds: 60,
		TimeoutSeconds: int(transport.DefaultTimeout / time.Second),
		UserAgent:      transport.DefaultUserAgent,
		TaskSets: map[string]SetConfig{
			SetEnglish: {Weight: 6},
			SetSpanish: {Weight: 2},
		},
	}
}

// LoadConfig reads `name` (and its .local override), filling whatever it leaves out from
// DefaultConfig. A relative name is looked up in the working directory and then in every parent
// directory. A missing file yields the defaults.
func LoadConfig(name string) (Config, error) {
	path, err := configutil.FindRecursively(name)
	if errors.Is(err, os.ErrNotExist) {
		path = name
	} else if err != nil {
		return Config{}, fmt.Errorf("find config: %w", err)
	}
	cfg, err := configutil.ReadConfigWithDefaults(path, DefaultConfig)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Users <= 0 {
		return fmt.Errorf("users must be positive, got %d", c.Users)
	}
	if c.HatchRate <= 0 {
		return fmt.Errorf("hatch_rate must be positive, got %v", c.HatchRate)
	}
	if c.RunTimeSeconds < 0 {
		return fmt.Errorf("run_time_seconds cannot be negative, got %d", c.RunTimeSeconds)
	}
	if c.WaitMinMs < 0 || c.WaitMaxMs < c.WaitMinMs {
		return fmt.Errorf("wait range [%d, %d]ms is invalid", c.WaitMinMs, c.WaitMaxMs)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative, got %v", c.RequestsPerSecond)
	}
	return nil
}

// RunTime is 0 if the test runs until it is cancelled.
func (c Config) RunTime() time.Duration {
	return time.Duration(c.RunTimeSeconds) * time.Second
}

func (c Config) WaitRange() (time.Duration, time.Duration) {
	return time.Duration(c.WaitMinMs) * time.Millisecond, time.Duration(c.WaitMaxMs) * time.Millisecond
}

func (c Config) TransportOptions() transport.Options {
	return transport.Options{
		Host:              c.Host,
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

func (c Config) RunnerOptions() RunnerOptions {
	waitMin, waitMax := c.WaitRange()
	return RunnerOptions{
		Users:     c.Users,
		HatchRate: c.HatchRate,
		RunTime:   c.RunTime(),
		WaitMin:   waitMin,
		WaitMax:   waitMax,
		Seed:      c.Seed,
	}
}
