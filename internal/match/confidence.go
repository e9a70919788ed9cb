package match

// AlbumConfidence scores how well a candidate album title/artist matches a
// wanted title/artist, per spec §4.1: 50% best-of{raw, edition-stripped,
// normalized} title similarity, 50% artist similarity; if artist similarity
// is below 0.6 the whole score is discounted to 30%. When an expected track
// count is supplied (expectedTracks > 0) and the edition-stripped titles
// agree closely (≥0.8), a surplus of tracks on the candidate earns an
// edition-upgrade bonus (capped at +0.15) and a shortfall below 80% of
// expected earns a -0.1 edition-downgrade penalty.
func AlbumConfidence(wantTitle, wantArtist, candidateTitle, candidateArtist string, expectedTracks, candidateTracks int) float64 {
	cleanWant := StripAlbumEdition(wantTitle)
	cleanCandidate := StripAlbumEdition(candidateTitle)

	titleSim := Similarity(wantTitle, candidateTitle)
	cleanTitleSim := Similarity(cleanWant, cleanCandidate)
	normTitleSim := Similarity(Normalize(wantTitle), Normalize(candidateTitle))
	bestTitleSim := max3(titleSim, cleanTitleSim, normTitleSim)

	artistSim := Similarity(Normalize(wantArtist), Normalize(candidateArtist))

	conf := 0.5*bestTitleSim + 0.5*artistSim
	if artistSim < 0.6 {
		conf *= 0.3
	}

	if expectedTracks > 0 && cleanTitleSim >= 0.8 {
		switch {
		case candidateTracks > expectedTracks:
			surplus := float64(candidateTracks-expectedTracks) / float64(expectedTracks)
			bonus := 0.15 * surplus
			if bonus > 0.15 {
				bonus = 0.15
			}
			conf += bonus
		case float64(candidateTracks) < 0.8*float64(expectedTracks):
			conf -= 0.1
		}
	}

	return clamp01(conf)
}

// TrackConfidence scores a candidate track title/artist against a wanted
// one, 50/50 after bracket/metadata cleaning and Unicode normalization.
// Artist similarity uses the best-matching component when either side
// lists multiple artists (spec §4.1's "a single-artist credit may still
// match a multi-artist candidate").
func TrackConfidence(wantTitle, wantArtist, candidateTitle, candidateArtist string) float64 {
	cleanWant := CleanTrackTitle(wantTitle)
	cleanCandidate := CleanTrackTitle(candidateTitle)

	titleSim := Similarity(wantTitle, candidateTitle)
	cleanTitleSim := Similarity(cleanWant, cleanCandidate)
	normTitleSim := Similarity(Normalize(wantTitle), Normalize(candidateTitle))
	bestTitleSim := max3(titleSim, cleanTitleSim, normTitleSim)

	artistSim := bestComponentSimilarity(wantArtist, candidateArtist)

	return clamp01(0.5*bestTitleSim + 0.5*artistSim)
}

// bestComponentSimilarity splits both artist strings on common separators
// and returns the highest pairwise similarity across all components.
func bestComponentSimilarity(a, b string) float64 {
	aParts := SplitArtists(a)
	bParts := SplitArtists(b)

	best := 0.0
	for _, ap := range aParts {
		for _, bp := range bParts {
			if sim := Similarity(Normalize(ap), Normalize(bp)); sim > best {
				best = sim
			}
		}
	}
	return best
}

// QualityScore combines a format weight (0-1, caller-supplied from the
// configured quality-tier priority) with the match confidence. Confidence
// dominates: a low-confidence match of the preferred format is still
// riskier than a confident match of a lesser one.
func QualityScore(confidence, formatWeight float64) float64 {
	return clamp01(0.7*confidence + 0.3*formatWeight)
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
