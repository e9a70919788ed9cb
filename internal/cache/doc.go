// Package cache provides small, dependency-free in-memory data structures
// reused across the sync pipeline for deduplication and fast lookups.
//
// # Contents
//
//   - Cache: generic TTL key-value store, used by the media-server client
//     to avoid re-fetching a library listing on every reconciliation pass.
//   - LRUCache / ExactLRU: bounded, zero-false-positive deduplication
//     caches. The transfer-daemon adapter uses an ExactLRU keyed by
//     username and response size to skip a search response it has already
//     processed on an earlier poll tick.
//   - Trie: exact-match, case-insensitive membership set. The
//     transfer-daemon adapter uses it to hold the configured list of
//     ignored Soulseek usernames.
//   - AhoCorasick: multi-pattern matcher. The transfer-daemon adapter uses
//     it to test a result filename against a configured title blacklist in
//     a single pass instead of one substring scan per blacklisted term.
//
// None of these types talk to a database or the network; they are pure
// in-memory helpers so they can be unit tested without any external service.
package cache
