/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package httpcache

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHttpClient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {
		hits.Add(1)
		// the origin asks not to be cached; the client overrides that
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		fmt.Fprintf(w, "<table class=\"members\"></table>")
	}))
	defer srv.Close()

	client := NewCachedHttpClient(5*time.Minute, nil)
	if client == http.DefaultClient {
		t.Fatalf("expected a caching client")
	}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Errorf("Failed to read response body")
		}
		if len(data) == 0 {
			t.Errorf("Empty data")
		}
		if i > 0 && resp.Header.Get("X-From-Cache") != "1" {
			t.Errorf("object not cached")
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("origin hit %d times; want 1", got)
	}
}

func TestHttpClientNoCache(t *testing.T) {
	if NewCachedHttpClient(0, nil) != http.DefaultClient {
		t.Errorf("zero max age should not cache")
	}
}

func TestHeaderOverrideTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {
		w.Header().Set("X-Seen-Agent", r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	rt := NewHeaderOverrideTransport(nil)
	rt.Request = func(req *http.Request) {
		req.Header.Set("User-Agent", "pairingsim-test")
	}
	rt.Response = func(resp *http.Response) error {
		resp.Header.Set("X-Rewritten", "yes")
		return nil
	}

	req, err := http.NewRequest("GET", srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := (&http.Client{Transport: rt}).Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Seen-Agent"); got != "pairingsim-test" {
		t.Errorf("request hook not applied; origin saw %q", got)
	}
	if resp.Header.Get("X-Rewritten") != "yes" {
		t.Errorf("response hook not applied")
	}
	if req.Header.Get("User-Agent") != "" {
		t.Errorf("caller's request was modified")
	}
}
