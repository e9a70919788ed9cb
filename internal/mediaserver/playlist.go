package mediaserver

import (
	"context"
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

const defaultPlaylistBatchSize = 100

// WritePlaylist is the outcome of CreatePlaylistBatched/UpdatePlaylist:
// whether the container itself was created/updated, independent of how
// many of its batched appends succeeded.
type WritePlaylist struct {
	ID             string
	AppendFailures int
}

// SetIDValidationPattern overrides the regexp used by IsValidID for every
// playlist write this adapter performs, per spec §9's open question that
// id "validity" is backend-specific configuration.
func (a *Adapter) SetIDValidationPattern(pattern string) {
	a.idValidationPattern = pattern
}

// CreatePlaylistBatched creates name with trackIDs, per spec §4.3: large
// playlists are split into an empty create followed by batched appends of
// up to 100 validated ids each; an append batch failing does not abort
// the remaining batches, and the whole operation reports success as long
// as the container itself was created.
func (a *Adapter) CreatePlaylistBatched(ctx context.Context, name string, trackIDs []string) (WritePlaylist, error) {
	valid := filterValidIDs(trackIDs, a.idValidationPattern)
	batchSize := defaultPlaylistBatchSize

	if len(valid) <= batchSize {
		id, err := a.backend.CreatePlaylist(ctx, name, valid)
		if err != nil {
			metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "create", "failure").Inc()
			return WritePlaylist{}, fmt.Errorf("create playlist %q: %w", name, err)
		}
		metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "create", "success").Inc()
		return WritePlaylist{ID: id}, nil
	}

	id, err := a.backend.CreatePlaylist(ctx, name, nil)
	if err != nil {
		metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "create", "failure").Inc()
		return WritePlaylist{}, fmt.Errorf("create empty playlist %q: %w", name, err)
	}
	metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "create", "success").Inc()

	failures := 0
	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		if err := a.backend.AppendToPlaylist(ctx, id, valid[start:end]); err != nil {
			failures++
			logging.Warn().Err(err).Str("playlist", name).Int("batch_start", start).Msg("playlist append batch failed, continuing")
			metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "append", "failure").Inc()
			continue
		}
		metrics.MediaServerPlaylistWrites.WithLabelValues(a.backend.Name(), "append", "success").Inc()
	}

	return WritePlaylist{ID: id, AppendFailures: failures}, nil
}

// UpdatePlaylist replaces playlistName's contents with trackIDs via
// delete-then-recreate. When createBackup is true a "<name> Backup"
// playlist is created beforehand; it is deleted on success but preserved
// if recreation fails, so a bad sync never destroys the only copy.
func (a *Adapter) UpdatePlaylist(ctx context.Context, playlistName string, trackIDs []string, createBackup bool) (WritePlaylist, error) {
	existing, err := a.backend.GetPlaylistByName(ctx, playlistName)
	if err != nil {
		return WritePlaylist{}, fmt.Errorf("lookup playlist %q: %w", playlistName, err)
	}

	var backupID string
	if createBackup && existing != nil {
		backupName := playlistName + " Backup"
		id, err := a.backend.CopyPlaylist(ctx, existing.ID, backupName)
		if err != nil {
			logging.Warn().Err(err).Str("playlist", playlistName).Msg("backup playlist creation failed, proceeding without it")
		} else {
			backupID = id
		}
	}

	if existing != nil {
		if err := a.backend.DeletePlaylist(ctx, existing.ID); err != nil {
			return WritePlaylist{}, fmt.Errorf("delete existing playlist %q for recreation: %w", playlistName, err)
		}
	}

	result, err := a.CreatePlaylistBatched(ctx, playlistName, trackIDs)
	if err != nil {
		if backupID != "" {
			logging.Warn().Str("playlist", playlistName).Str("backup_id", backupID).Msg("playlist recreation failed, backup preserved")
		}
		return WritePlaylist{}, err
	}

	if backupID != "" {
		if err := a.backend.DeletePlaylist(ctx, backupID); err != nil {
			logging.Warn().Err(err).Str("playlist", playlistName).Msg("failed to remove backup playlist after successful update")
		}
	}

	return result, nil
}
