/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mikeb26/pairingsim/internal"
	"github.com/mikeb26/pairingsim/tournament"
)

// FromRegistrationPage reads the entries table (table#members) of an
// online registration page. When section is non-empty only rows of that
// section are kept. Unrated entries are skipped.
func FromRegistrationPage(ctx context.Context, hc *http.Client, url string,
	section string) ([]tournament.Entry, error) {

	doc, err := fetchDoc(ctx, hc, url)
	if err != nil {
		return nil, fmt.Errorf("roster.page: %w", err)
	}
	entries, err := parseMembers(doc, section)
	if err != nil {
		return nil, fmt.Errorf("roster.page %v: %w", url, err)
	}
	return entries, nil
}

// fetchDoc gets the HTML document at the given URL using the configured User-Agent.
func fetchDoc(ctx context.Context, hc *http.Client,
	url string) (*goquery.Document, error) {

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

type memberColumns struct {
	name    int
	rating  int
	section int
}

// columns locates name, rating and section by header text. Pages without
// a header use the No/Name/Rating layout.
func columns(table *goquery.Selection) memberColumns {
	cols := memberColumns{name: 1, rating: 2, section: -1}
	heads := table.Find("thead th")
	if heads.Length() == 0 {
		return cols
	}
	cols.name, cols.rating = -1, -1
	heads.Each(func(i int, s *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "name", "player":
			cols.name = i
		case "rating":
			cols.rating = i
		case "section":
			cols.section = i
		}
	})
	return cols
}

func parseMembers(doc *goquery.Document,
	section string) ([]tournament.Entry, error) {

	table := doc.Find("table#members").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no members table")
	}
	cols := columns(table)
	if cols.name < 0 || cols.rating < 0 {
		return nil, fmt.Errorf("members table has no name or rating column")
	}
	if section != "" && cols.section < 0 {
		return nil, fmt.Errorf("members table has no section column")
	}

	var entries []tournament.Entry
	table.Find("tbody tr").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td")
		if cells.Length() <= max(cols.name, cols.rating, cols.section) {
			return
		}
		if section != "" {
			sec := strings.TrimSpace(cells.Eq(cols.section).Text())
			if !strings.EqualFold(sec, section) {
				return
			}
		}
		rating, err := strconv.Atoi(strings.TrimSpace(cells.Eq(cols.rating).Text()))
		if err != nil || rating <= 0 {
			// unrated or blank
			return
		}
		entries = append(entries, tournament.Entry{
			Name:   internal.NormalizeName(cells.Eq(cols.name).Text()),
			Rating: rating,
		})
	})

	return requireRated(entries)
}
