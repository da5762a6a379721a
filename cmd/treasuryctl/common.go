package main

import (
	"fmt"

	"treasury_api/internal/app/bootstrap"
	"treasury_api/internal/infrastructure/configloader"
	"treasury_api/internal/pkg/logger"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// configFlags are shared by every subcommand.
type configFlags struct {
	configPath string
	logLevel   string
}

func (c *configFlags) load() (*configloader.Config, *zap.Logger, error) {
	configloader.LoadDotEnv()
	path := c.configPath
	if path == "" {
		path = configloader.PathFromEnv()
	}
	cfg, err := configloader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	// логи в stderr, чтобы не мешать выводу команды
	zapLogger, err := logger.New(logger.Options{Level: c.logLevel, OutputPaths: []string{"stderr"}})
	if err != nil {
		return nil, nil, err
	}
	return cfg, zapLogger, nil
}

func (c *configFlags) build() (*configloader.Config, *bootstrap.App, *zap.Logger, error) {
	cfg, zapLogger, err := c.load()
	if err != nil {
		return nil, nil, nil, err
	}
	app, err := bootstrap.Build(cfg, zapLogger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, app, zapLogger, nil
}

func printMarkdown(md string) {
	out, err := glamour.Render(md, "dark")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
