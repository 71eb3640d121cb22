package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCollector(); err != nil {
		return err
	}
	if err := c.validateSimulator(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.APIBind != "" {
		if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
			return fmt.Errorf("paths.api_bind must be host:port: %w", err)
		}
	}
	return nil
}

func (c *Config) validateCollector() error {
	if c.Collector.pollInterval <= 0 {
		return errors.New("collector.poll_interval must be positive")
	}
	if c.Collector.backoffFloor <= 0 {
		return errors.New("collector.backoff_floor must be positive")
	}
	if c.Collector.backoffCap < c.Collector.backoffFloor {
		return errors.New("collector.backoff_cap must be >= collector.backoff_floor")
	}
	if c.Collector.BackoffMultiplier < 1 {
		return errors.New("collector.backoff_multiplier must be >= 1")
	}
	return nil
}

func (c *Config) validateSimulator() error {
	if c.Simulator.interval <= 0 {
		return errors.New("simulator.interval must be positive")
	}
	if c.Simulator.BufferCapacity <= 0 {
		return errors.New("simulator.buffer_capacity must be positive")
	}
	return nil
}
