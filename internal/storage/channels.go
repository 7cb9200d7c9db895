package db

import (
	"context"
	"fmt"
)

// Channel opt-out store. A row in channel_optout means the resolution
// pipeline is suppressed in that channel; absence means the channel is
// eligible. The enable command deletes the row, the disable command inserts
// it.

// SetChannelEnabled toggles pipeline eligibility for a channel.
func (db *DB) SetChannelEnabled(ctx context.Context, channelID string, enabled bool) error {
	if enabled {
		_, err := db.Pool.Exec(ctx, `DELETE FROM channel_optout WHERE channel_id = $1`, channelID)
		if err != nil {
			return fmt.Errorf("enable channel: %w", err)
		}

		return nil
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO channel_optout (channel_id) VALUES ($1)
		ON CONFLICT (channel_id) DO NOTHING
	`, channelID)
	if err != nil {
		return fmt.Errorf("disable channel: %w", err)
	}

	return nil
}

// IsChannelEnabled reports whether the pipeline should run in channelID.
// Called per message so command changes take effect immediately.
func (db *DB) IsChannelEnabled(ctx context.Context, channelID string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM channel_optout WHERE channel_id = $1)`, channelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check channel opt-out: %w", err)
	}

	return !exists, nil
}

// ListDisabledChannels returns every opted-out channel id.
func (db *DB) ListDisabledChannels(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT channel_id FROM channel_optout ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("query disabled channels: %w", err)
	}
	defer rows.Close()

	var channels []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan disabled channel row: %w", err)
		}

		channels = append(channels, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate disabled channel rows: %w", err)
	}

	return channels, nil
}
