package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures where job output is written.
type LogOptions struct {
	File       string `json:"file" yaml:"file" toml:"file"`                   // File is an optional rotating log file, empty means stdout only.
	MaxSizeMB  int    `json:"maxSizeMB" yaml:"maxSizeMB" toml:"maxSizeMB"`    // MaxSizeMB is the size in megabytes before rotation.
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" toml:"maxBackups"` // MaxBackups is the number of rotated files to keep.
	MaxAgeDays int    `json:"maxAgeDays" yaml:"maxAgeDays" toml:"maxAgeDays"` // MaxAgeDays is how long rotated files are kept.
	Compress   bool   `json:"compress" yaml:"compress" toml:"compress"`       // Compress gzips rotated files.

	// Stderr sends console output to stderr instead of stdout, for processes that speak a protocol on stdout.
	Stderr bool `json:"-" yaml:"-" toml:"-"`
}

// SetupLogging points the standard logger at the console and, if configured, a rotating file.
// The returned closer flushes the file and is safe to call when no file is used.
func SetupLogging(opts LogOptions) io.Closer {
	log.SetFlags(log.LstdFlags)

	var console io.Writer = os.Stdout
	if opts.Stderr {
		console = os.Stderr
	}

	if opts.File == "" {
		log.SetOutput(console)
		return io.NopCloser(nil)
	}

	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.SetOutput(console)
			log.Printf("⚠ Cannot create log directory %s, logging to the console only: %v\n", dir, err)
			return io.NopCloser(nil)
		}
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	log.SetOutput(io.MultiWriter(console, logFile))
	return logFile
}
