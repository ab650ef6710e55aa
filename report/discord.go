/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/harness"
)

const webhookUsername = "pairingsim"

// Discord posts results to a channel through an incoming webhook. Single
// tournaments are posted when they finish; multi-trial runs post only the
// aggregate.
type Discord struct {
	// Title heads every message, e.g. the run id.
	Title      string
	MultiTrial bool

	send   func(params *discordgo.WebhookParams) error
	logger *zap.Logger
}

// ParseWebhookURL splits https://discord.com/api/webhooks/<id>/<token>.
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("webhook url %q has no id and token", raw)
}

func NewDiscord(webhookURL string, logger *zap.Logger) (*Discord, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// webhooks need no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("report.discord: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Discord{
		send: func(params *discordgo.WebhookParams) error {
			_, err := session.WebhookExecute(id, token, false, params)
			return err
		},
		logger: logger,
	}, nil
}

func (d *Discord) RoundCompleted(ctx context.Context, trial int,
	rr harness.RoundReport) {
}

func (d *Discord) TournamentFinished(ctx context.Context, s *harness.Summary) {
	if d.MultiTrial {
		return
	}

	var header string
	if s.Halt != nil {
		header = fmt.Sprintf("Tournament halted after %d of %d rounds: %v",
			s.RoundsPlayed(), s.RoundsPlanned, s.Halt)
	} else {
		header = fmt.Sprintf("Tournament complete: %d rounds, %d players",
			s.RoundsPlayed(), len(s.Players))
	}
	var sims []string
	for _, rr := range s.Rounds {
		if rr.Compared {
			sims = append(sims, fmt.Sprintf("R%d %.2f", rr.Round, rr.Similarity))
		}
	}
	if len(sims) > 0 {
		header += "\nSimilarity: " + strings.Join(sims, ", ")
	}

	d.post(header, Crosstable(s.Players))
}

func (d *Discord) TrialsFinished(ctx context.Context, st harness.Stats) {
	if !d.MultiTrial {
		return
	}
	d.post("Simulation finished", StatsTable(st))
}

func (d *Discord) post(header string, block string) {
	if d.Title != "" {
		header = fmt.Sprintf("**%v**\n%v", d.Title, header)
	}
	content := truncateContent(header, MsgLimit)
	if block != "" {
		const fence = "\n```\n"
		room := MsgLimit - len([]rune(content)) - 2*len(fence)
		if room > 0 {
			content += fence + truncateContent(block, room) + fence
		}
	}

	err := d.send(&discordgo.WebhookParams{
		Content:  content,
		Username: webhookUsername,
	})
	if err != nil {
		d.logger.Warn("report.discord: webhook post failed", zap.Error(err))
	}
}

// MsgLimit keeps a message under Discord's 2000 character cap.
const MsgLimit = 1988

func truncateContent(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		s = fmt.Sprintf("%v...", string(runes[:max(limit-3, 0)]))
	}
	return s
}
