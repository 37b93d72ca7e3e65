// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zedovium/zedd/internal/zedutil"
)

const identityFilename = "identity.json"

// identity is the operator's optional local identity file: if present and
// it names a valid address, logGreeting welcomes them by name at startup.
type identity struct {
	Address string `json:"address"`
}

// logGreeting looks for an operator identity file under dataDir and, if it
// names a valid address, logs a one-line welcome. Absence of the file is
// not an error: most deployments run without one.
func logGreeting(dataDir string) {
	data, err := os.ReadFile(filepath.Join(dataDir, identityFilename))
	if err != nil {
		return
	}

	var id identity
	if err := json.Unmarshal(data, &id); err != nil {
		return
	}
	if !zedutil.Validate(id.Address) {
		return
	}

	log.Infof("welcome back, %s", id.Address)
}
