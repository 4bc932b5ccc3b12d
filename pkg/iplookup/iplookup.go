// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package iplookup resolves the caller's public IP address by asking an
// external echo service such as checkip.amazonaws.com.
package iplookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	DefaultURL     = "https://checkip.amazonaws.com"
	DefaultTimeout = 5 * time.Second

	// Responses are a single address plus a newline.
	maxResponseBytes = 256
)

// Resolver fetches the public IP with a single GET. There is no fallback
// source and no retry.
type Resolver struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// New returns a Resolver for url. Empty url and non-positive timeout select
// the defaults.
func New(url string, timeout time.Duration) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout
	return &Resolver{
		url:     url,
		timeout: timeout,
		client:  client,
	}
}

// URL returns the lookup endpoint.
func (r *Resolver) URL() string {
	return r.url
}

// Resolve returns the caller's public IP in its canonical text form.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("build ip lookup request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ip lookup %s: unexpected status %s", r.url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read ip lookup response: %w", err)
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return "", fmt.Errorf("ip lookup %s returned %q: %w", r.url, strings.TrimSpace(string(body)), err)
	}
	return addr.String(), nil
}
