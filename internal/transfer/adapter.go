package transfer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/cache"
	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

const (
	pollInterval          = 1 * time.Second
	earlyExitResponseCount = 30
	maxRetries            = 3

	// responseDedupCapacity/TTL bound the per-search ExactLRU: a single
	// search rarely sees more than a few hundred distinct responses, and
	// nothing needs remembering once the search itself has ended.
	responseDedupCapacity = 2000
	responseDedupTTL      = 10 * time.Minute
)

// Adapter is the full C4 behavior stack over a DaemonTransport: a
// process-wide non-reentrant lock serializing every outbound request, a
// sliding-window rate limiter gating new search starts, the poll-and-diff
// search pipeline, and search-history pruning.
type Adapter struct {
	transport DaemonTransport
	cfg       *config.SoulseekConfig

	// lock is the spec §4.4/§9 "only one outgoing request to the daemon
	// may be in flight at a time" guard. Not re-entrant and held across a
	// whole request including its retries.
	lock sync.Mutex

	limiter *slidingWindowLimiter

	activeMu sync.Mutex
	active   map[string]chan struct{} // searchID -> closed-on-cancel

	ignoredUsers   *cache.Trie
	titleBlacklist *cache.AhoCorasick
}

// New wraps transport with the C4 adapter behavior. cfg supplies rate
// limits, polling timeouts, and the ignored-user/title-blacklist filters.
func New(transport DaemonTransport, cfg *config.SoulseekConfig) *Adapter {
	ignored := cache.NewTrie()
	for _, u := range cfg.IgnoredUsers {
		ignored.Insert(u)
	}

	blacklist := cache.NewAhoCorasick()
	for _, term := range cfg.TitleBlacklist {
		blacklist.AddPattern(term, nil)
	}
	blacklist.Build()

	return &Adapter{
		transport:      transport,
		cfg:            cfg,
		limiter:        newSlidingWindowLimiter(cfg.RateLimitMaxStarts, cfg.RateLimitWindow),
		active:         make(map[string]chan struct{}),
		ignoredUsers:   ignored,
		titleBlacklist: blacklist,
	}
}

// withLock runs fn under the process-wide daemon lock.
func (a *Adapter) withLock(fn func() error) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return fn()
}

// withRetry retries fn up to maxRetries times on a 429 (rate-limited)
// condition with exponential backoff (500ms, 1s, 2s), per spec §4.4.
// Transport implementations signal a 429 by returning an error whose text
// contains "429" (see isTooManyRequests); any other error is returned
// immediately.
func (a *Adapter) withRetry(ctx context.Context, operation string, fn func() error) error {
	delay := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			metrics.DaemonRequestsTotal.WithLabelValues(operation, "success").Inc()
			return nil
		}
		if !isTooManyRequests(lastErr) {
			metrics.DaemonRequestsTotal.WithLabelValues(operation, "failed").Inc()
			return lastErr
		}
		if attempt == maxRetries {
			break
		}
		metrics.DaemonRequestsTotal.WithLabelValues(operation, "retried").Inc()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("transfer daemon %s: %w (exhausted %d retries)", operation, lastErr, maxRetries)
}

// isTooManyRequests reports whether err represents an HTTP 429. The
// transport boundary is out of scope (spec §1), so this is a best-effort
// string check rather than a typed sentinel the transport is required to
// produce.
func isTooManyRequests(err error) bool {
	return err != nil && strings.Contains(err.Error(), "429")
}

// Search runs the full poll-and-stream search pipeline (spec §4.4): rate
// limit, submit, register in active_searches, poll every second for up to
// configured timeout + buffer, diffing and grouping each tick, invoking
// progress after every tick, and early-exiting once 30 responses have
// been seen.
func (a *Adapter) Search(ctx context.Context, req SearchRequest, progress func(SearchProgress)) (SearchResults, error) {
	if err := a.limiter.Await(ctx); err != nil {
		return SearchResults{}, err
	}

	var searchID string
	err := a.withLock(func() error {
		return a.withRetry(ctx, "search", func() error {
			id, err := a.transport.StartSearch(ctx, req)
			if err != nil {
				return err
			}
			searchID = id
			return nil
		})
	})
	if err != nil {
		return SearchResults{}, fmt.Errorf("start search: %w", err)
	}

	cancelCh := make(chan struct{})
	a.activeMu.Lock()
	a.active[searchID] = cancelCh
	a.activeMu.Unlock()
	metrics.DaemonActiveSearches.Inc()
	defer func() {
		a.activeMu.Lock()
		delete(a.active, searchID)
		a.activeMu.Unlock()
		metrics.DaemonActiveSearches.Dec()
		_ = a.withLock(func() error { return a.transport.DeleteSearch(ctx, searchID) })
	}()

	deadline := time.Duration(req.TimeoutMS)*time.Millisecond + a.cfg.SearchTimeoutBuffer
	timeoutCh := time.After(deadline)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var results SearchResults
	seenUsernameFiles := cache.NewExactLRU(responseDedupCapacity, responseDedupTTL)

	for {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case <-cancelCh:
			return SearchResults{}, nil
		case <-timeoutCh:
			return results, nil
		case <-ticker.C:
			var responses []RawResponse
			err := a.withLock(func() error {
				return a.withRetry(ctx, "poll_responses", func() error {
					r, err := a.transport.PollResponses(ctx, searchID)
					if err != nil {
						return err
					}
					responses = r
					return nil
				})
			})
			if err != nil {
				logging.Warn().Err(err).Str("search_id", searchID).Msg("poll responses failed")
				continue
			}

			newResponses := 0
			for _, resp := range responses {
				if a.isIgnoredUser(resp.Username) {
					continue
				}
				resp = a.filterBlacklisted(resp)

				responseKey := resp.Username + "|" + fmt.Sprint(len(resp.Files))
				if seenUsernameFiles.IsDuplicate(responseKey) {
					continue
				}
				newResponses++

				tracks, albums := processResponse(resp)
				results.Tracks = append(results.Tracks, tracks...)
				results.Albums = append(results.Albums, albums...)
			}
			results.ResponsesSeen += newResponses

			if progress != nil {
				progress(SearchProgress{
					CumulativeTracks:   len(results.Tracks),
					CumulativeAlbums:   len(results.Albums),
					TotalResponsesSeen: results.ResponsesSeen,
				})
			}

			if results.ResponsesSeen >= earlyExitResponseCount {
				return results, nil
			}
		}
	}
}

// CancelSearch closes searchID's cancel channel and removes it from
// active_searches; the poll loop returns as soon as it sees the closed
// channel, and its deferred cleanup issues a best-effort DeleteSearch
// (spec §5 "Cancellation").
func (a *Adapter) CancelSearch(searchID string) {
	a.activeMu.Lock()
	defer a.activeMu.Unlock()
	if ch, ok := a.active[searchID]; ok {
		close(ch)
		delete(a.active, searchID)
	}
}

func (a *Adapter) isIgnoredUser(username string) bool {
	_, ignored := a.ignoredUsers.Search(username)
	return ignored
}

// filterBlacklisted drops files whose filename contains any configured
// blacklisted title substring, per seekarr's title_blacklist idiom. The
// blacklist is matched in one pass per filename regardless of how many
// terms are configured.
func (a *Adapter) filterBlacklisted(resp RawResponse) RawResponse {
	if a.titleBlacklist.PatternCount() == 0 {
		return resp
	}
	kept := resp.Files[:0:0]
	for _, f := range resp.Files {
		if !a.titleBlacklist.Contains(f.Filename) {
			kept = append(kept, f)
		}
	}
	resp.Files = kept
	return resp
}

// EnqueueDownload submits files for username in a single transport call,
// retried only on a 429; it tries no alternative endpoints or payload
// shapes. It returns the daemon-assigned id, or files[0].Filename as a
// fallback identifier when the daemon accepts the files without an id.
// When nothing could be enqueued it returns "" and the error; an empty
// files list returns ("", nil).
func (a *Adapter) EnqueueDownload(ctx context.Context, username string, files []DownloadFile) (string, error) {
	if len(files) == 0 {
		return "", nil
	}

	var id string
	err := a.withLock(func() error {
		return a.withRetry(ctx, "enqueue", func() error {
			result, err := a.transport.EnqueueDownload(ctx, username, files)
			if err != nil {
				return err
			}
			id = result
			return nil
		})
	})
	if err != nil {
		logging.Warn().Err(err).Str("user", username).Msg("enqueue download failed after retries")
		return "", err
	}
	if id == "" {
		return files[0].Filename, nil
	}
	return id, nil
}

// AllDownloads returns the daemon's current downloads.
func (a *Adapter) AllDownloads(ctx context.Context) ([]DownloadStatus, error) {
	var out []DownloadStatus
	err := a.withLock(func() error {
		return a.withRetry(ctx, "status", func() error {
			r, err := a.transport.AllDownloads(ctx)
			if err != nil {
				return err
			}
			out = r
			return nil
		})
	})
	return out, err
}

// CancelDownload removes one download.
func (a *Adapter) CancelDownload(ctx context.Context, username, downloadID string) error {
	return a.withLock(func() error {
		return a.withRetry(ctx, "cancel", func() error {
			return a.transport.CancelDownload(ctx, username, downloadID)
		})
	})
}

// PruneSearchHistory keeps a rolling window of search history: once the
// live count exceeds cfg.SearchHistoryTrigger, the oldest entries are
// deleted until only cfg.SearchHistoryKeep remain (spec §4.4).
func (a *Adapter) PruneSearchHistory(ctx context.Context) error {
	var history []SearchHistoryEntry
	err := a.withLock(func() error {
		return a.withRetry(ctx, "list_history", func() error {
			h, err := a.transport.ListSearchHistory(ctx)
			if err != nil {
				return err
			}
			history = h
			return nil
		})
	})
	if err != nil {
		return err
	}

	trigger := a.cfg.SearchHistoryTrigger
	keep := a.cfg.SearchHistoryKeep
	if trigger <= 0 {
		trigger = 200
	}
	if keep <= 0 {
		keep = 50
	}
	if len(history) <= trigger {
		return nil
	}

	sort.Slice(history, func(i, j int) bool { return history[i].StartedAt < history[j].StartedAt })
	toDelete := len(history) - keep
	for i := 0; i < toDelete && i < len(history); i++ {
		if err := a.withLock(func() error {
			return a.transport.DeleteSearchHistory(ctx, history[i].ID)
		}); err != nil {
			logging.Debug().Err(err).Str("search_id", history[i].ID).Msg("search history delete failed (likely already gone)")
		}
	}
	return nil
}
