// Package quality implements the waterfall quality filter (C5): bucket
// candidates into configured size-bounded tiers, sort each by score, and
// return the first non-empty enabled tier in priority order.
package quality

import (
	"sort"

	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/match"
	"github.com/playlistbridge/playlistbridge/internal/transfer"
)

// Tier names match config.QualityProfileConfig's map keys.
const (
	TierFLAC    = "flac"
	TierMP3320  = "mp3_320"
	TierMP3256  = "mp3_256"
	TierMP3192  = "mp3_192"
	TierOther   = "other"
)

// tierFor buckets a candidate into its quality tier per spec §4.5.
func tierFor(t transfer.TrackResult) string {
	if t.Quality == transfer.QualityFLAC {
		return TierFLAC
	}
	if t.Quality == transfer.QualityMP3 {
		switch {
		case t.Bitrate >= 320:
			return TierMP3320
		case t.Bitrate >= 256:
			return TierMP3256
		default:
			return TierMP3192
		}
	}
	return TierOther
}

// formatWeight returns the base format weight that score starts from,
// per spec §4.1's quality-score table.
func formatWeight(q transfer.Quality) float64 {
	switch q {
	case transfer.QualityFLAC:
		return 1.0
	case transfer.QualityMP3:
		return 0.8
	case transfer.QualityOGG:
		return 0.7
	case transfer.QualityAAC:
		return 0.6
	case transfer.QualityWMA:
		return 0.5
	default:
		return 0.3
	}
}

// score computes the full spec §4.1 quality score for one candidate:
// base format weight, bitrate and peer-health adjustments, capped at 1.0.
func score(t transfer.TrackResult) float64 {
	s := formatWeight(t.Quality)

	switch {
	case t.Bitrate >= 320:
		s += 0.2
	case t.Bitrate >= 256:
		s += 0.1
	case t.Bitrate > 0 && t.Bitrate < 128:
		s -= 0.2
	}

	if t.Peer.FreeSlots {
		s += 0.1
	}
	if t.Peer.UploadSpeed > 100 {
		s += 0.05
	}
	if t.Peer.QueueLength > 10 {
		s -= 0.1
	}

	if s > 1.0 {
		s = 1.0
	}
	if s < 0 {
		s = 0
	}
	return s
}

func sizeMB(bytes int64) float64 {
	return float64(bytes) / 1048576.0
}

func withinBounds(t transfer.TrackResult, tier config.QualityTierConfig) bool {
	mb := sizeMB(t.Size)
	return mb >= tier.MinMB && mb <= tier.MaxMB
}

func sortByScoreThenSize(candidates []transfer.TrackResult) {
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := score(candidates[i]), score(candidates[j])
		if si != sj {
			return si > sj
		}
		return candidates[i].Size > candidates[j].Size
	})
}

// FilterTracks walks profile's enabled tiers in ascending priority,
// returning the first non-empty tier's bucket (size-bounded, sorted by
// score then size descending). If every enabled tier is empty and
// fallback is enabled, returns every candidate that passed ANY tier's
// size check, sorted the same way; user-declared size bounds are never
// violated even in the fallback path (spec §4.5/§8).
func FilterTracks(candidates []transfer.TrackResult, profile config.QualityProfileConfig) []transfer.TrackResult {
	type tierBucket struct {
		name     string
		priority int
		items    []transfer.TrackResult
	}

	buckets := map[string]*tierBucket{}
	var passedAnyTier []transfer.TrackResult

	for _, c := range candidates {
		tierName := tierFor(c)
		tierCfg, ok := profile.Qualities[tierName]
		if !ok {
			continue
		}
		if !withinBounds(c, tierCfg) {
			continue
		}
		passedAnyTier = append(passedAnyTier, c)
		if !tierCfg.Enabled {
			continue
		}
		b, exists := buckets[tierName]
		if !exists {
			b = &tierBucket{name: tierName, priority: tierCfg.Priority}
			buckets[tierName] = b
		}
		b.items = append(b.items, c)
	}

	ordered := make([]*tierBucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].priority < ordered[j].priority })

	for _, b := range ordered {
		if len(b.items) == 0 {
			continue
		}
		sortByScoreThenSize(b.items)
		return b.items
	}

	if profile.FallbackEnabled && len(passedAnyTier) > 0 {
		sortByScoreThenSize(passedAnyTier)
		return passedAnyTier
	}
	return nil
}

// BestMatch scores candidates against a wanted title/artist using the
// match package, then applies FilterTracks to the subset whose confidence
// clears threshold, returning the single highest-scoring remaining
// candidate or nil. This is the "search and best-download" helper the
// sync orchestrator calls per unmatched track (spec §4.6 step 3).
func BestMatch(candidates []transfer.TrackResult, wantTitle, wantArtist string, threshold float64, profile config.QualityProfileConfig) *transfer.TrackResult {
	var confident []transfer.TrackResult
	for _, c := range candidates {
		conf := match.TrackConfidence(wantTitle, wantArtist, c.Parsed.Title, c.Parsed.Artist)
		if conf >= threshold {
			confident = append(confident, c)
		}
	}
	if len(confident) == 0 {
		return nil
	}

	filtered := FilterTracks(confident, profile)
	if len(filtered) == 0 {
		return nil
	}
	best := filtered[0]
	return &best
}
