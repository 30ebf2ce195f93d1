package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/keybinds"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/logging"
	"github.com/studiowebux/wsprobe/internal/session"
	"github.com/studiowebux/wsprobe/internal/store"
	"github.com/studiowebux/wsprobe/internal/transport"
	"github.com/studiowebux/wsprobe/internal/types"
)

// app holds what every command needs: settings, diagnostics and the library
type app struct {
	settings config.Settings
	logger   *slog.Logger
	db       *store.SQLite
	lib      *library.Library
	logFile  *os.File
}

// newApp initializes configuration, logging and the library database. In TUI
// mode diagnostics default to a file so they do not draw over the screen.
func newApp(cmd *cobra.Command, tuiMode bool) (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		settings.LogFormat = flagLogFormat
	}

	a := &app{settings: settings}

	logCfg := logging.Config{
		Level:  logging.ParseLevel(settings.LogLevel),
		Format: logging.ParseFormat(settings.LogFormat),
		Output: os.Stderr,
	}
	logPath := flagLogFile
	if logPath == "" && tuiMode {
		logPath = filepath.Join(config.ConfigDir, "wsprobe.log")
	}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logCfg.Output = f
	}
	a.logger = logging.New(logCfg)

	db, err := store.OpenSQLite(config.DatabasePath, a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = db
	a.lib = library.New(db, library.WithLogger(a.logger))
	return a, nil
}

// Close releases the database and log file
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// loadPrefs reads the session file. A fresh session starts in the configured JSON mode.
func (a *app) loadPrefs() *session.Prefs {
	prefs := session.NewPrefs(a.settings.SecureByDefault)
	if err := prefs.Load(); err != nil {
		a.logger.Warn("ignoring session file", "error", err)
	}
	if prefs.LastURL() == "" && a.settings.JSONModeByDefault {
		prefs.SetJSONMode(true)
	}
	return prefs
}

func (a *app) keybinds() (*keybinds.Registry, error) {
	kb, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'wsprobe keybinds check' for details)", err)
	}
	return kb, nil
}

// newController builds a Session Controller from the session flags and settings
func (a *app) newController(cmd *cobra.Command) (*session.Controller, error) {
	opts, err := a.dialOptions(cmd)
	if err != nil {
		return nil, err
	}

	engine := a.settings.Engine
	if flagEngine != "" {
		engine = flagEngine
	}
	dialer, err := transport.New(engine, a.logger)
	if err != nil {
		return nil, err
	}

	log := logbook.New(logbook.WithTimestampFormat(a.settings.TimestampFormat))
	return session.NewController(dialer,
		session.WithDialOptions(opts),
		session.WithLog(log),
		session.WithLogger(a.logger),
	), nil
}

func (a *app) dialOptions(cmd *cobra.Command) (types.DialOptions, error) {
	var opts types.DialOptions

	headers, err := parseHeaders(flagHeaders)
	if err != nil {
		return opts, err
	}
	opts.Headers = headers
	opts.Subprotocols = flagSubprotocols

	if cmd.Flags().Changed("timeout") {
		d, err := time.ParseDuration(flagTimeout)
		if err != nil {
			return opts, fmt.Errorf("invalid --timeout: %w", err)
		}
		opts.HandshakeTimeout = d
	} else {
		d, err := a.settings.HandshakeDuration()
		if err != nil {
			return opts, err
		}
		opts.HandshakeTimeout = d
	}

	tls := &types.TLSConfig{
		CAFile:             flagCAFile,
		CertFile:           flagCertFile,
		KeyFile:            flagKeyFile,
		InsecureSkipVerify: flagInsecure,
	}
	if !tls.IsZero() {
		if (tls.CertFile == "") != (tls.KeyFile == "") {
			return opts, errors.New("--cert and --key must be given together")
		}
		opts.TLS = tls
	}
	return opts, nil
}

// parseHeaders accepts "Name: value" or "Name=value"
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			name, value, ok = strings.Cut(h, "=")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
