/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/internal"
)

type EventID int64

type Section struct {
	Number int
	Name   string
}

type Event struct {
	ID       EventID
	Name     string
	EndDate  time.Time
	Sections []Section
}

type apiRatedEventResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	SectionCount int    `json:"sectionCount"`
	Sections     []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Name   string `json:"name"`
	} `json:"sections"`
}

// FetchEvent retrieves a rated event and its section list.
func (client *Client) FetchEvent(ctx context.Context, id EventID,
	logger *zap.Logger) (*Event, error) {

	var eventData apiRatedEventResponse
	eventURL := fmt.Sprintf("%v/rated-events/%v", apiBase, id)
	// these are rarely (if ever) updated so 1 month cache is fine
	err := client.getJSON(ctx, client.httpClient30day, eventURL, "event",
		&eventData)
	if err != nil {
		return nil, fmt.Errorf("uschess.event %v: %w", id, err)
	}

	endDate, err := internal.ParseDateOrZero(eventData.EndDate)
	if err != nil && logger != nil {
		logger.Warn("uschess.event: unable to parse event end date",
			zap.String("endDate", eventData.EndDate),
			zap.Error(err))
	}

	ev := &Event{
		ID:      id,
		Name:    eventData.Name,
		EndDate: endDate,
	}
	for _, s := range eventData.Sections {
		ev.Sections = append(ev.Sections, Section{Number: s.Number,
			Name: s.Name})
	}

	return ev, nil
}

// Label names the event, adding its end date when known. Standings
// pre-ratings are the ratings in force before that date.
func (ev *Event) Label() string {
	if ev.EndDate.IsZero() {
		return ev.Name
	}
	return fmt.Sprintf("%v (%v)", ev.Name, ev.EndDate.Format("2006-01-02"))
}

// Section returns the numbered section, or the first when num is 0.
func (ev *Event) Section(num int) (Section, error) {
	if len(ev.Sections) == 0 {
		return Section{}, fmt.Errorf("event %v has no sections", ev.ID)
	}
	if num == 0 {
		return ev.Sections[0], nil
	}
	for _, s := range ev.Sections {
		if s.Number == num {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("event %v has no section %d", ev.ID, num)
}
