// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements io.Writer, sending bytes to both standard out and
// the log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

// logRotator is the rotating file writer every subsystem logger's backend
// writes through, initialized by initLogRotator.
var logRotator *rotator.Rotator

// backendLog is the logging backend every subsystem logger is spawned
// from: one backend, many named subsystems.
var backendLog = slog.NewBackend(logWriter{})

// Subsystem loggers. Each component of zedd gets its own named logger so
// log lines can be filtered and leveled independently, exactly as the
// teacher's log.go does for its own subsystems.
var (
	log       = backendLog.Logger("ZEDD")
	chainLog  = backendLog.Logger("CHNB")
	mempoolLog = backendLog.Logger("MEMP")
	srvrLog   = backendLog.Logger("SRVR")
	minrLog   = backendLog.Logger("MINR")
)

// subsystemLoggers maps each subsystem identifier to its logger, used by
// setLogLevels to adjust every logger's level in one pass.
var subsystemLoggers = map[string]slog.Logger{
	"ZEDD": log,
	"CHNB": chainLog,
	"MEMP": mempoolLog,
	"SRVR": srvrLog,
	"MINR": minrLog,
}

// initLogRotator initializes the logging rotator to write logs to
// logFile and create roll files in the same directory. It must be called
// before the package-level log variables are used.
func initLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return err
	}

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// setLogLevels sets the log level for every subsystem logger.
func setLogLevels(levelStr string) {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
}
