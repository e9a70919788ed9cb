package transfer

import "path"

// processResponse converts one raw daemon response into flat TrackResults,
// then groups any that share a (username, directory) pair into AlbumResult
// when the group has >=2 tracks, removing those tracks from the flat list
// (spec §4.4 steps 5-6).
func processResponse(resp RawResponse) ([]TrackResult, []AlbumResult) {
	type groupKey struct {
		username string
		dir      string
	}

	groups := map[groupKey][]TrackResult{}
	groupOrder := []groupKey{}
	var flat []TrackResult

	for _, f := range resp.Files {
		q, ok := quality(f.Filename)
		if !ok {
			continue
		}

		dir, albumTitle := albumTitleFromDirectory(f.Filename)
		track := TrackResult{
			Username:   resp.Username,
			Filename:   f.Filename,
			Size:       f.Size,
			Bitrate:    f.BitRate,
			DurationMS: int64(f.DurationSeconds) * 1000,
			Quality:    q,
			Peer: PeerStats{
				FreeSlots:   f.FreeSlots,
				UploadSpeed: f.UploadSpeed,
				QueueLength: f.QueueLength,
			},
			Parsed: parseFilename(path.Base(f.Filename)),
		}
		if track.Parsed.Album == "" {
			track.Parsed.Album = albumTitle
		}

		key := groupKey{username: resp.Username, dir: dir}
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], track)
	}

	var albums []AlbumResult
	grouped := map[groupKey]bool{}
	for _, key := range groupOrder {
		tracks := groups[key]
		if len(tracks) < 2 {
			continue
		}
		grouped[key] = true
		albums = append(albums, buildAlbumResult(key.dir, tracks))
	}

	for _, key := range groupOrder {
		if grouped[key] {
			continue
		}
		flat = append(flat, groups[key]...)
	}

	return flat, albums
}

func buildAlbumResult(dir string, tracks []TrackResult) AlbumResult {
	counts := map[Quality]int{}
	var totalSize int64
	var peer PeerStats
	title := tracks[0].Parsed.Album
	artist := tracks[0].Parsed.Artist

	for _, t := range tracks {
		counts[t.Quality]++
		totalSize += t.Size
		if t.Peer.FreeSlots {
			peer.FreeSlots = true
		}
		if t.Peer.UploadSpeed > peer.UploadSpeed {
			peer.UploadSpeed = t.Peer.UploadSpeed
		}
		peer.QueueLength += t.Peer.QueueLength
	}

	dominant := QualityUnknown
	best := 0
	for q, n := range counts {
		if n > best {
			best = n
			dominant = q
		}
	}

	return AlbumResult{
		Username:        tracks[0].Username,
		DirectoryPath:   dir,
		Title:           title,
		Artist:          artist,
		TrackCount:      len(tracks),
		TotalSize:       totalSize,
		Tracks:          tracks,
		DominantQuality: dominant,
		Peer:            peer,
	}
}
