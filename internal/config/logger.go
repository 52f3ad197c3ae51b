package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig configures one log sink. Level is none, normal or debug.
type LoggerConfig struct {
	Level       string `json:"level"`
	Destination string `json:"destination,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

type LoggingConfig struct {
	File    LoggerConfig `json:"file"`
	Console LoggerConfig `json:"console"`
}

func validLevel(l string) bool {
	switch l {
	case "", "none", "normal", "debug":
		return true
	}
	return false
}

func (conf *LoggingConfig) Validate() error {
	var errs error
	for name, lc := range map[string]LoggerConfig{"file": conf.File, "console": conf.Console} {
		if !validLevel(lc.Level) {
			errs = multierr.Append(errs, fmt.Errorf("logging.%s.level must be none, normal or debug, got %q", name, lc.Level))
		}
		if lc.Mode != "" && lc.Mode != "append" && lc.Mode != "overwrite" {
			errs = multierr.Append(errs, fmt.Errorf("logging.%s.mode must be append or overwrite, got %q", name, lc.Mode))
		}
	}
	if (conf.File.Level == "normal" || conf.File.Level == "debug") && conf.File.Destination == "" {
		errs = multierr.Append(errs, fmt.Errorf("logging.file.destination is required when file logging is on"))
	}
	return errs
}

func levelEnabler(level string) (zapcore.LevelEnabler, bool) {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel), true
	case "normal":
		return zap.NewAtomicLevelAt(zap.InfoLevel), true
	default:
		return nil, false
	}
}

// Prepare builds the program logger: a console core on stderr and a file
// core, each enabled by its own level. The TUI passes console=false since it
// owns the terminal.
func (conf *LoggingConfig) Prepare(console bool) (*zap.Logger, error) {
	cores := []zapcore.Core{}

	if lvl, ok := levelEnabler(conf.Console.Level); ok && console {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.TimeKey = zapcore.OmitKey
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), lvl))
	}

	if lvl, ok := levelEnabler(conf.File.Level); ok {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.File.Mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		if err := os.MkdirAll(filepath.Dir(conf.File.Destination), 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		f, err := os.OpenFile(conf.File.Destination, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.File.Destination, err)
		}
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(f), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("arbor"), nil
}
