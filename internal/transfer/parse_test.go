package transfer

import "testing"

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     ParsedMetadata
	}{
		{
			name:     "track number artist title",
			filename: "03 - Pink Floyd - Time.flac",
			want:     ParsedMetadata{TrackNumber: 3, Artist: "Pink Floyd", Title: "Time"},
		},
		{
			name:     "artist title no number",
			filename: "Pink Floyd - Time.mp3",
			want:     ParsedMetadata{Artist: "Pink Floyd", Title: "Time"},
		},
		{
			name:     "track number title only",
			filename: "07. Money.flac",
			want:     ParsedMetadata{TrackNumber: 7, Title: "Money"},
		},
		{
			name:     "no pattern matches",
			filename: "somebootleg.mp3",
			want:     ParsedMetadata{Title: "somebootleg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFilename(tt.filename)
			if got != tt.want {
				t.Errorf("parseFilename(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		filename string
		want     Quality
		ok       bool
	}{
		{"track.flac", QualityFLAC, true},
		{"track.MP3", QualityMP3, true},
		{"track.m4a", QualityAAC, true},
		{"track.txt", "", false},
		{"noextension", "", false},
	}

	for _, tt := range tests {
		got, ok := quality(tt.filename)
		if got != tt.want || ok != tt.ok {
			t.Errorf("quality(%q) = (%q, %v), want (%q, %v)", tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAlbumTitleFromDirectory(t *testing.T) {
	tests := []struct {
		path      string
		wantDir   string
		wantTitle string
	}{
		{"music/Pink Floyd/The Dark Side of the Moon/01 - Speak to Me.flac", "music/Pink Floyd/The Dark Side of the Moon", "The Dark Side of the Moon"},
		{"music/Pink Floyd/03 - The Wall/track.flac", "music/Pink Floyd/03 - The Wall", "The Wall"},
	}

	for _, tt := range tests {
		dir, title := albumTitleFromDirectory(tt.path)
		if dir != tt.wantDir || title != tt.wantTitle {
			t.Errorf("albumTitleFromDirectory(%q) = (%q, %q), want (%q, %q)", tt.path, dir, title, tt.wantDir, tt.wantTitle)
		}
	}
}
