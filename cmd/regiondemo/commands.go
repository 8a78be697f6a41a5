package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	yaml "go.yaml.in/yaml/v3"

	regionrunner "github.com/Swind/go-region-runner"
	"github.com/Swind/go-region-runner/config"
	"github.com/Swind/go-region-runner/core"
)

// loadConfig reads --config, falling back to the defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func configAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = c.App.Writer.Write(out)
	return err
}

func detectAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	srv, err := newServer(cfg.Host, core.NewNoOpLogger())
	if err != nil {
		return err
	}
	defer srv.Stop()

	fmt.Fprintf(c.App.Writer, "%s %s: %s\n", srv.Name(), srv.Version(), regionrunner.Detect(srv))
	return nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if m := c.String("model"); m != "" {
		cfg.Host.Model = m
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	d, err := newDemo(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Run(c.Context, workload{
		Duration: c.Duration("duration"),
		Entities: c.Int("entities"),
		Report:   c.String("report"),
	})
}
