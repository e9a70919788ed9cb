package quality

import (
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/transfer"
)

func testProfile() config.QualityProfileConfig {
	return config.QualityProfileConfig{
		Qualities: map[string]config.QualityTierConfig{
			TierFLAC:   {Enabled: true, MinMB: 20, MaxMB: 400, Priority: 0},
			TierMP3320: {Enabled: true, MinMB: 5, MaxMB: 15, Priority: 1},
			TierMP3192: {Enabled: false, MinMB: 2, MaxMB: 10, Priority: 2},
		},
		FallbackEnabled: true,
	}
}

func mb(n float64) int64 { return int64(n * 1048576) }

func TestFilterTracksPrefersHighestPriorityNonEmptyTier(t *testing.T) {
	profile := testProfile()
	candidates := []transfer.TrackResult{
		{Username: "a", Quality: transfer.QualityMP3, Bitrate: 320, Size: mb(10)},
		{Username: "b", Quality: transfer.QualityFLAC, Bitrate: 1000, Size: mb(40)},
	}

	got := FilterTracks(candidates, profile)
	if len(got) != 1 || got[0].Username != "b" {
		t.Fatalf("FilterTracks() = %+v, want only the FLAC candidate (higher-priority tier)", got)
	}
}

func TestFilterTracksSkipsDisabledTierButCountsTowardFallback(t *testing.T) {
	profile := testProfile()
	candidates := []transfer.TrackResult{
		{Username: "a", Quality: transfer.QualityMP3, Bitrate: 192, Size: mb(5)},
	}

	got := FilterTracks(candidates, profile)
	if len(got) != 1 {
		t.Fatalf("FilterTracks() = %+v, want fallback to return the disabled-tier candidate", got)
	}
}

func TestFilterTracksNoFallbackReturnsNilWhenNoTierMatches(t *testing.T) {
	profile := testProfile()
	profile.FallbackEnabled = false
	candidates := []transfer.TrackResult{
		{Username: "a", Quality: transfer.QualityMP3, Bitrate: 192, Size: mb(5)},
	}

	got := FilterTracks(candidates, profile)
	if got != nil {
		t.Fatalf("FilterTracks() = %+v, want nil with fallback disabled", got)
	}
}

func TestFilterTracksOutOfBoundsSizeExcluded(t *testing.T) {
	profile := testProfile()
	candidates := []transfer.TrackResult{
		{Username: "a", Quality: transfer.QualityFLAC, Bitrate: 1000, Size: mb(1)}, // too small for any tier
	}

	got := FilterTracks(candidates, profile)
	if got != nil {
		t.Fatalf("FilterTracks() = %+v, want nil (size outside every tier's bounds)", got)
	}
}

func TestBestMatchFiltersByConfidenceThenQuality(t *testing.T) {
	profile := testProfile()
	candidates := []transfer.TrackResult{
		{
			Username: "peer1", Quality: transfer.QualityFLAC, Bitrate: 1000, Size: mb(40),
			Parsed: transfer.ParsedMetadata{Title: "Time", Artist: "Pink Floyd"},
		},
		{
			Username: "peer2", Quality: transfer.QualityMP3, Bitrate: 320, Size: mb(10),
			Parsed: transfer.ParsedMetadata{Title: "Totally Unrelated Song", Artist: "Nobody"},
		},
	}

	got := BestMatch(candidates, "Time", "Pink Floyd", 0.7, profile)
	if got == nil {
		t.Fatal("BestMatch() = nil, want the confident FLAC match")
	}
	if got.Username != "peer1" {
		t.Errorf("BestMatch().Username = %q, want peer1", got.Username)
	}
}

func TestBestMatchReturnsNilWhenNoCandidateClearsThreshold(t *testing.T) {
	profile := testProfile()
	candidates := []transfer.TrackResult{
		{
			Username: "peer1", Quality: transfer.QualityFLAC, Bitrate: 1000, Size: mb(40),
			Parsed: transfer.ParsedMetadata{Title: "Completely Different", Artist: "Someone Else"},
		},
	}

	got := BestMatch(candidates, "Time", "Pink Floyd", 0.7, profile)
	if got != nil {
		t.Fatalf("BestMatch() = %+v, want nil", got)
	}
}
