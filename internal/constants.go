/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent         = "pairingsim/0.1.0 (+https://github.com/mikeb26/pairingsim)"
	DefaultConfigFile = "pairingsim.yaml"

	// rating range of generated rosters
	DefaultMinRating = 1000
	DefaultMaxRating = 2500

	EnvEngine         = "PAIRINGSIM_ENGINE"
	EnvArchiveBucket  = "PAIRINGSIM_ARCHIVE_BUCKET"
	EnvDiscordWebhook = "PAIRINGSIM_DISCORD_WEBHOOK"
)
