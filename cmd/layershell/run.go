package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pkt.systems/pslog"

	"github.com/jakebf/layershell/internal/config"
	"github.com/jakebf/layershell/internal/logx"
	"github.com/jakebf/layershell/internal/term"
	"github.com/jakebf/layershell/internal/widget"
	"github.com/jakebf/layershell/shell"
)

type runOptions struct {
	configPath string
	logPath    string
	daemon     bool
	windows    int
}

// resolveConfigPath returns path, or the default location when it is empty.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.Path()
}

// openLog opens the log file. The terminal belongs to the panes while the
// shell runs, so nothing may log to stderr.
func openLog(path string, level string) (pslog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := pslog.NewWithOptions(f, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: logx.ParseLevel(level),
	})
	return logger, f.Close, nil
}

func run(ctx context.Context, opts runOptions) error {
	if opts.windows < 0 {
		return fmt.Errorf("--windows must not be negative, got %d", opts.windows)
	}
	cfgPath, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	logPath := opts.logPath
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(cfgPath), "layershell.log")
	}
	logger, closeLog, err := openLog(logPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	ctx = pslog.ContextWithLogger(ctx, logger)

	conn, err := term.Open(ctx, term.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer conn.Close()

	daemon := opts.daemon || cfg.Daemon
	extra := opts.windows
	if !daemon && extra > 0 {
		// The shell opens the first window itself.
		extra--
	}
	p := newApp(cfg, cfgPath, logger, extra)
	err = shell.Run(ctx, p, shell.Options{
		Connection:    conn,
		Compositor:    conn.Factory(),
		Toolkit:       widget.New(cfg.MarkdownStyle),
		Settings:      settings,
		Layer:         cfg.LayerSettings(),
		Daemon:        daemon,
		Clipboard:     term.NewClipboard(logger),
		Logger:        logger,
		ExecutorLimit: cfg.ExecutorLimit,
	})
	if errors.Is(err, shell.ErrConnectionClosed) {
		// The terminal quit binding ends the connection.
		logger.Info("terminal closed")
		return nil
	}
	return err
}
