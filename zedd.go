// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// zedd is the Zedovium node daemon: it serves the HTTP API described in
// the HTTP API over the core consensus/ledger engine in internal/node.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zedovium/zedd/internal/node"
)

func main() {
	if err := realMain(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func realMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(cfg.logFilePath()); err != nil {
		return err
	}
	setLogLevels(cfg.DebugLevel)

	params := DefaultParams()
	params.Guard.Enabled = cfg.GuardEnabled

	n, err := node.Open(node.Config{
		ChainPath:      cfg.chainFilePath(),
		FeeRecipient:   cfg.FeeRecipient,
		RewardPerBlock: params.RewardPerBlock,
		Retarget:       params.Retarget,
		Guard:          params.Guard,
		Mempool:        params.Mempool,
	})
	if err != nil {
		log.Errorf("opening chain: %v", err)
		return err
	}
	log.Infof("chain loaded at height %d", n.Height())
	logGreeting(cfg.DataDir)

	router := newServer(n)
	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: router,
	}

	serveErrs := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Listen)
		serveErrs <- httpServer.ListenAndServe()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErrs:
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
			return err
		}
	case sig := <-interrupt:
		log.Infof("received %v, shutting down", sig)
		httpServer.Close()
	}

	return nil
}
