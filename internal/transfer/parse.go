package transfer

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// filenamePatterns match a bare filename (extension already stripped):
// "NN - Artist - Title", "Artist - Title", "NN - Title". parseFilename
// tries them as NN-Artist-Title, then NN-Title, then Artist-Title, so
// "07 - Money" keeps 7 as the track number. Falls back to the filename
// itself as the title when none match, per spec §4.4 step 5.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{1,3})\s*[-.]\s*(.+?)\s*-\s*(.+)$`), // NN - Artist - Title
	regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`),                    // Artist - Title
	regexp.MustCompile(`^(\d{1,3})\s*[-.]\s*(.+)$`),             // NN - Title
}

// leadingTrackNumber strips a directory name's leading "NN - "/"NN. "
// prefix to recover an album title from a containing directory.
var leadingTrackNumber = regexp.MustCompile(`^\d{1,3}\s*[-.]\s*`)

// quality returns the Quality bucket for a filename's extension, or
// ("", false) if the extension is not one of the supported audio types.
func quality(filename string) (Quality, bool) {
	ext := strings.ToLower(path.Ext(filename))
	q, ok := audioExtensions[ext]
	return q, ok
}

// parseFilename extracts best-effort metadata from a bare filename
// (including extension) per the three NN/Artist/Title patterns, falling
// back to the filename itself as the title.
func parseFilename(filename string) ParsedMetadata {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	base = strings.TrimSpace(base)

	if m := filenamePatterns[0].FindStringSubmatch(base); m != nil {
		num, _ := strconv.Atoi(m[1])
		return ParsedMetadata{TrackNumber: num, Artist: strings.TrimSpace(m[2]), Title: strings.TrimSpace(m[3])}
	}
	if m := filenamePatterns[2].FindStringSubmatch(base); m != nil {
		num, _ := strconv.Atoi(m[1])
		return ParsedMetadata{TrackNumber: num, Title: strings.TrimSpace(m[2])}
	}
	if m := filenamePatterns[1].FindStringSubmatch(base); m != nil {
		return ParsedMetadata{Artist: strings.TrimSpace(m[1]), Title: strings.TrimSpace(m[2])}
	}

	return ParsedMetadata{Title: base}
}

// albumTitleFromDirectory derives a candidate album title from a file's
// containing directory, stripping a leading track-number prefix.
func albumTitleFromDirectory(filePath string) (dir, title string) {
	dir = path.Dir(filePath)
	base := path.Base(dir)
	title = leadingTrackNumber.ReplaceAllString(base, "")
	return dir, strings.TrimSpace(title)
}
