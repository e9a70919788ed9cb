// Package match implements the matching/reconciliation engine (C1): string
// normalization, similarity scoring, album/track title variation
// generation, and confidence calculation. It is pure — no I/O, no database,
// no network — so it can be exercised standalone and reused by the catalog
// store's candidate rescoring pass.
package match
