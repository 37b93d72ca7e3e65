// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// client is a thin HTTP wrapper around a zedd node's REST API, mirroring
// the requests.get/requests.post calls the original wallet_cli.py made
// directly in each command handler.
type client struct {
	nodeURL string
	http    *http.Client
}

func newClient(nodeURL string) *client {
	return &client{nodeURL: nodeURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) get(path string, out interface{}) error {
	resp, err := c.http.Get(c.nodeURL + path)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.nodeURL, err)
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.nodeURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.nodeURL, err)
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
