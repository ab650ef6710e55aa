/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package uschess reads rated events from the US Chess ratings API so real
// sections can seed a simulated tournament.
package uschess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/mikeb26/pairingsim/internal"
	ihttpcache "github.com/mikeb26/pairingsim/internal/httpcache"
)

const apiBase = "https://ratings-api.uschess.org/api/v1"

type Client struct {
	httpClient30day *http.Client
	httpClient1day  *http.Client
}

// NewClient returns a client whose responses are cached in cache, or in
// memory when cache is nil.
func NewClient(cache httpcache.Cache) *Client {
	return &Client{
		httpClient30day: ihttpcache.NewCachedHttpClient(30*24*time.Hour, cache),
		httpClient1day:  ihttpcache.NewCachedHttpClient(24*time.Hour, cache),
	}
}

// NewClientWithHTTP uses hc for every request.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient30day: hc, httpClient1day: hc}
}

func (client *Client) getJSON(ctx context.Context, hc *http.Client,
	url string, what string, out any) error {

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("unable to create %v request: %w", what, err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("unable to fetch %v: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected %v status %d: %s", what,
			resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %v JSON: %w", what, err)
	}

	return nil
}
