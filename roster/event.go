/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/tournament"
	"github.com/mikeb26/pairingsim/uschess"
)

// FromRatedEvent uses the pre-event ratings of one section of a rated
// event. Section 0 selects the first section.
func FromRatedEvent(ctx context.Context, client *uschess.Client,
	id uschess.EventID, section int,
	logger *zap.Logger) ([]tournament.Entry, error) {

	if logger == nil {
		logger = zap.NewNop()
	}
	ev, err := client.FetchEvent(ctx, id, logger)
	if err != nil {
		return nil, fmt.Errorf("roster.event: %w", err)
	}
	sec, err := ev.Section(section)
	if err != nil {
		return nil, fmt.Errorf("roster.event %v: %w", ev.Label(), err)
	}
	standings, err := client.FetchSectionStandings(ctx, id, sec)
	if err != nil {
		return nil, fmt.Errorf("roster.event %v: %w", ev.Label(), err)
	}

	var entries []tournament.Entry
	skipped := 0
	for _, s := range standings.Entries {
		if s.PreRating <= 0 {
			skipped++
			continue
		}
		entries = append(entries, tournament.Entry{Name: s.Name,
			Rating: s.PreRating})
	}
	fields := []zap.Field{
		zap.String("event", ev.Label()),
		zap.String("section", sec.Name),
		zap.Stringer("ratingType", standings.RType),
		zap.Int("players", len(entries)),
		zap.Int("unrated", skipped),
	}
	if !ev.EndDate.IsZero() {
		fields = append(fields, zap.Time("ratedBefore", ev.EndDate))
	}
	logger.Info("roster.event: loaded section", fields...)

	entries, err = requireRated(entries)
	if err != nil {
		return nil, fmt.Errorf("roster.event %v/%v: %w", ev.Label(), sec.Name,
			err)
	}
	return entries, nil
}
