// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"crypto/tls"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole stream when the caller sets no deadline.
	DefaultTimeout = 5 * time.Minute

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024

	// maxLineSize is the largest single stream line accepted.
	maxLineSize = 1024 * 1024
)

// UserAgent is sent on every request. The CLI sets the version suffix.
var UserAgent = "zen/dev"

// sharedStreamingClient has no timeout; streams are bounded by their context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

func readErrorBody(r io.Reader) []byte {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return body
}
