/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mikeb26/pairingsim/internal"
)

type MemID int

type RatingType int

const (
	RatingTypeRegular RatingType = iota
	RatingTypeQuick
	RatingTypeBlitz
)

func (rt RatingType) String() string {
	switch rt {
	case RatingTypeQuick:
		return "quick"
	case RatingTypeBlitz:
		return "blitz"
	default:
		return "regular"
	}
}

// Standing is one player's line in a section. PreRating is 0 for unrated
// players.
type Standing struct {
	PairNum    int
	Name       string
	MemberID   MemID
	PreRating  int
	PostRating int
	Score      float64
}

type SectionStandings struct {
	Section Section
	RType   RatingType
	Entries []Standing
}

type apiStandingsResponse struct {
	Items []apiStandingItem `json:"items"`
}

type apiStandingItem struct {
	Ordinal       int               `json:"ordinal"`
	PairingNumber int               `json:"pairingNumber"`
	MemberID      string            `json:"memberId"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Score         float64           `json:"score"`
	Ratings       []apiRatingChange `json:"ratings"`
}

type apiRatingChange struct {
	PreRating    int    `json:"preRating"`
	PostRating   int    `json:"postRating"`
	RatingSystem string `json:"ratingSystem"`
}

// FetchSectionStandings retrieves the entries of one section.
func (client *Client) FetchSectionStandings(ctx context.Context,
	id EventID, section Section) (*SectionStandings, error) {

	var data apiStandingsResponse
	url := fmt.Sprintf("%v/rated-events/%v/sections/%d/standings", apiBase,
		id, section.Number)
	// standings move while an event is running
	err := client.getJSON(ctx, client.httpClient1day, url, "standings", &data)
	if err != nil {
		return nil, fmt.Errorf("uschess.standings %v/%d: %w", id,
			section.Number, err)
	}

	return convertStandings(&data, section)
}

func convertStandings(data *apiStandingsResponse,
	section Section) (*SectionStandings, error) {

	ret := &SectionStandings{
		Section: section,
		RType:   sectionRatingType(data.Items),
	}
	for _, item := range data.Items {
		var memberID int
		if item.MemberID != "" {
			var err error
			memberID, err = strconv.Atoi(item.MemberID)
			if err != nil {
				return nil, fmt.Errorf("member id %q: %w", item.MemberID, err)
			}
		}

		entry := Standing{
			PairNum:  item.Ordinal,
			Name:     internal.NormalizeName(item.FirstName + " " + item.LastName),
			MemberID: MemID(memberID),
			Score:    item.Score,
		}
		for _, r := range item.Ratings {
			if ratingTypeMatches(ret.RType, r.RatingSystem) {
				entry.PreRating = max(r.PreRating, 0)
				entry.PostRating = max(r.PostRating, 0)
				break
			}
		}
		ret.Entries = append(ret.Entries, entry)
	}

	return ret, nil
}

// sectionRatingType is decided by the first player with ratings. Dual rated
// sections count as regular.
func sectionRatingType(items []apiStandingItem) RatingType {
	for _, item := range items {
		if len(item.Ratings) == 0 {
			continue
		}
		for _, r := range item.Ratings {
			if r.RatingSystem == "R" || r.RatingSystem == "D" {
				return RatingTypeRegular
			}
		}
		switch item.Ratings[0].RatingSystem {
		case "B":
			return RatingTypeBlitz
		case "Q":
			return RatingTypeQuick
		default:
			return RatingTypeRegular
		}
	}

	return RatingTypeRegular
}

func ratingTypeMatches(rt RatingType, system string) bool {
	switch rt {
	case RatingTypeBlitz:
		return system == "B"
	case RatingTypeQuick:
		return system == "Q"
	default:
		return system == "R" || system == "D"
	}
}
