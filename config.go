// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "zedd.conf"
	defaultLogFilename    = "zedd.log"
	defaultChainFilename  = "chain.json"
	defaultListen         = ":4000"
	defaultLogLevel       = "info"
)

// config defines the configuration options for zedd, populated from the
// config file and command-line flags by loadConfig, matching the
// teacher's go-flags-backed config.go.
type config struct {
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir      string `short:"b" long:"datadir" description:"Directory to store the chain file and logs"`
	Listen       string `long:"listen" description:"Network address to listen on for the HTTP API"`
	FeeRecipient string `long:"feerecipient" description:"Address credited with admitted transaction fees"`
	GuardEnabled bool   `long:"zedoguard" description:"Enable the per-miner difficulty amplifier"`
	DebugLevel   string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`
}

func defaultDataDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".zedd")
}

// defaultConfig returns a config populated with every default named in
// the rest of the process.
func defaultConfig() config {
	return config{
		DataDir:    defaultDataDir(),
		Listen:     defaultListen,
		DebugLevel: defaultLogLevel,
	}
}

// loadConfig initializes and parses the config using a config file and
// command line options: a pre-parse resolves -C/-datadir, then the
// resolved config file is parsed, then flags are re-parsed so they take
// priority over the file.
func loadConfig() (*config, []string, error) {
	cfg := defaultConfig()

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := preParser.Parse(); err != nil {
		return nil, nil, err
	}

	if preCfg.DataDir != "" {
		cfg.DataDir = preCfg.DataDir
	}
	if preCfg.ConfigFile == "" {
		preCfg.ConfigFile = filepath.Join(cfg.DataDir, defaultConfigFilename)
	}

	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		fileParser := flags.NewParser(&cfg, flags.Default)
		if err := flags.NewIniParser(fileParser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.FeeRecipient == "" {
		return nil, nil, fmt.Errorf("--feerecipient is required: no address is configured " +
			"to receive admitted transaction fees")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &cfg, remainingArgs, nil
}

func (c *config) chainFilePath() string {
	return filepath.Join(c.DataDir, defaultChainFilename)
}

func (c *config) logFilePath() string {
	return filepath.Join(c.DataDir, "logs", defaultLogFilename)
}
