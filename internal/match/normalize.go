package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// DiacriticFoldingAvailable reports whether the diacritic-folding transform
// chain is usable. It is only ever flipped to false if constructing the
// static x/text transformer fails, which cannot happen at runtime with the
// fixed NFD/Mn/NFC chain below — the flag exists so a future locale-pack
// swap has somewhere honest to report degradation instead of silently
// falling back to ASCII-only comparison, per spec §4.1.
var DiacriticFoldingAvailable = true

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func init() {
	if _, _, err := transform.String(foldDiacritics, "ţ"); err != nil {
		DiacriticFoldingAvailable = false
		logging.Warn().Err(err).Msg("diacritic folding transform unavailable, falling back to ASCII-only normalization")
	}
}

// Normalize lowercases s and folds diacritics to their ASCII base letter
// (ţ→t, é→e, ñ→n), then collapses internal whitespace. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded := s
	if DiacriticFoldingAvailable {
		if out, _, err := transform.String(foldDiacritics, s); err == nil {
			folded = out
		}
	}

	folded = strings.ToLower(folded)
	return collapseSpace(folded)
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
