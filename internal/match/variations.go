package match

import (
	"regexp"
	"strings"
)

// albumEditionSuffix matches a parenthesized, bracketed, or dash-separated
// edition marker trailing an album title: "(Deluxe Edition)", "[Remastered]",
// " - Special Edition", "... Platinum Version", etc. Grounded on
// supperdoggy-harmoniq-maestro's album-normalizer removeNoisePatterns, widened
// to also match the bare dash form the spec calls out separately.
var albumEditionSuffix = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(deluxe|expanded|platinum|special|anniversary|remaster(?:ed)?)\s*(edition|version)?\s*[\)\]]?\s*$`)

// commonEditionMarkers are re-decorated onto a stripped base title to
// produce additional album-title candidates per spec §4.1 step 2.
var commonEditionMarkers = []string{
	"Deluxe Edition", "Deluxe", "Platinum Edition", "Special Edition",
}

// StripAlbumEdition removes a trailing edition suffix from an album title,
// returning the base form. If no suffix matches, title is returned unchanged.
func StripAlbumEdition(title string) string {
	base := albumEditionSuffix.ReplaceAllString(title, "")
	return strings.TrimSpace(strings.TrimRight(base, "-"))
}

// GenerateAlbumVariations returns title plus the base (edition-stripped)
// form plus the base form re-decorated with each common edition marker.
// Always contains the original input and StripAlbumEdition(title); dedups
// case-insensitively while preserving insertion order.
func GenerateAlbumVariations(title string) []string {
	base := StripAlbumEdition(title)

	candidates := []string{title, base}
	for _, marker := range commonEditionMarkers {
		candidates = append(candidates, strings.TrimSpace(base+" "+marker))
	}

	return dedupCaseInsensitive(candidates)
}

var (
	bracketForm = regexp.MustCompile(`^(.*\S)\s*\(([^)]+)\)\s*$`)
	dashForm    = regexp.MustCompile(`^(.*\S)\s+-\s+(\S.*)$`)

	trackNoiseSuffix = regexp.MustCompile(`(?i)\s*[\(\[](explicit|clean|radio edit|tv edit)[\)\]]\s*$`)
	trackNoiseDash   = regexp.MustCompile(`(?i)\s+-\s*(radio edit|tv edit)\s*$`)
	featParenthetical = regexp.MustCompile(`(?i)\s*[\(\[](feat\.?|ft\.?|featuring)\s+[^)\]]+[\)\]]\s*$`)
)

// GenerateTrackVariations returns the original title plus bracket↔dash
// transforms and the title with featured-artist/explicit/edit noise
// stripped. Remix/version/live/acoustic markers are deliberately left
// untouched — they denote a different recording per spec §4.1.
func GenerateTrackVariations(title string) []string {
	candidates := []string{title}

	if m := bracketForm.FindStringSubmatch(title); m != nil {
		candidates = append(candidates, m[1]+" - "+m[2])
	}
	if m := dashForm.FindStringSubmatch(title); m != nil {
		candidates = append(candidates, m[1]+" ("+m[2]+")")
	}

	cleaned := title
	cleaned = featParenthetical.ReplaceAllString(cleaned, "")
	cleaned = trackNoiseSuffix.ReplaceAllString(cleaned, "")
	cleaned = trackNoiseDash.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned != title {
		candidates = append(candidates, cleaned)
	}

	return dedupCaseInsensitive(candidates)
}

// CleanTrackTitle returns the last candidate GenerateTrackVariations
// produces, used where callers want "the cleaned title" rather than the
// full candidate set. That is the noise-stripped title when stripping
// changed it; otherwise it is the last bracket/dash transform (e.g.
// "Hurt (Live)" gives "Hurt - Live") or the title itself.
func CleanTrackTitle(title string) string {
	variations := GenerateTrackVariations(title)
	return variations[len(variations)-1]
}

func dedupCaseInsensitive(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SplitArtists splits a multi-artist database string on common separators
// (",", ";", "&", "/") and on " feat "/" ft " markers, per spec §4.1's
// track-confidence rule that the best component similarity may replace the
// whole-string similarity.
func SplitArtists(artists string) []string {
	replacer := strings.NewReplacer(
		" feat ", "|", " feat. ", "|", " ft ", "|", " ft. ", "|", " featuring ", "|",
		",", "|", ";", "|", "&", "|", "/", "|",
	)
	parts := strings.Split(replacer.Replace(artists), "|")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{artists}
	}
	return out
}
