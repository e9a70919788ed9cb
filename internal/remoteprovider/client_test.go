package remoteprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
	})

	mux.HandleFunc("/v1/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "p1", "name": "My Playlist"},
			},
		})
	})

	mux.HandleFunc("/v1/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"track": map[string]any{
					"id":   "t1",
					"name": "Time",
					"album": map[string]string{"name": "The Dark Side of the Moon"},
					"artists": []map[string]string{{"name": "Pink Floyd"}},
					"duration_ms": 421000,
				}},
				{"track": map[string]any{
					"id":   "",
					"name": "Local File Track",
				}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	srv := newTestServer(t)
	return NewClient(config.RemoteProviderConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestListPlaylists(t *testing.T) {
	client := newTestClient(t)

	got, err := client.ListPlaylists(context.Background())
	if err != nil {
		t.Fatalf("ListPlaylists() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || got[0].Name != "My Playlist" {
		t.Errorf("ListPlaylists() = %+v, want one playlist p1/My Playlist", got)
	}
}

func TestGetPlaylistTracksSkipsTracksWithoutID(t *testing.T) {
	client := newTestClient(t)

	got, err := client.GetPlaylistTracks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPlaylistTracks() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("GetPlaylistTracks() = %d tracks, want 1 (local-file track without id skipped)", len(got))
	}
	track := got[0]
	if track.ID != "t1" || track.Name != "Time" || track.Album != "The Dark Side of the Moon" {
		t.Errorf("GetPlaylistTracks()[0] = %+v, want Time/The Dark Side of the Moon", track)
	}
	if len(track.Artists) != 1 || track.Artists[0] != "Pink Floyd" {
		t.Errorf("GetPlaylistTracks()[0].Artists = %v, want [Pink Floyd]", track.Artists)
	}
}

func TestTokenReusedAcrossCalls(t *testing.T) {
	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		json.NewEncoder(w).Encode(map[string]any{"access_token": "reused-token", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []map[string]string{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(config.RemoteProviderConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	if _, err := client.ListPlaylists(context.Background()); err != nil {
		t.Fatalf("first ListPlaylists() error = %v", err)
	}
	if _, err := client.ListPlaylists(context.Background()); err != nil {
		t.Fatalf("second ListPlaylists() error = %v", err)
	}
	if tokenRequests != 1 {
		t.Errorf("tokenRequests = %d, want 1 (token cached and reused)", tokenRequests)
	}
}
