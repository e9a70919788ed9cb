package mediaserver

import (
	"regexp"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// defaultIDPattern matches a 32-hex or 36-hex (hyphenated GUID) id, the
// shape Plex and Jellyfin both use. Spec §9 flags this as backend-specific
// configuration rather than a hard rule — IsValidID takes the pattern as a
// parameter so a caller can override it per backend instead of this
// package hardcoding one regexp for everyone.
var defaultIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}(-[0-9a-fA-F]{4}){3}-[0-9a-fA-F]{12}$|^[0-9a-fA-F]{32}$|^[0-9a-fA-F]{36}$`)

// IsValidID reports whether id is well-formed enough to write into a
// playlist. An empty pattern falls back to defaultIDPattern.
func IsValidID(id, pattern string) bool {
	if id == "" {
		return false
	}
	if pattern == "" {
		return defaultIDPattern.MatchString(id)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return defaultIDPattern.MatchString(id)
	}
	return re.MatchString(id)
}

// filterValidIDs keeps only the ids IsValidID accepts, logging each one
// it drops.
func filterValidIDs(ids []string, pattern string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if IsValidID(id, pattern) {
			out = append(out, id)
		} else {
			logging.Warn().Str("id", id).Msg("dropping invalid library id from playlist write")
		}
	}
	return out
}
