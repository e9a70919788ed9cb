package transfer

import (
	"context"
	"errors"
)

// errDaemonNotConfigured is returned by every NoopTransport method. A real
// deployment replaces NoopTransport with a concrete slskd/Soulseek wire
// client implementing DaemonTransport — intentionally out of scope for
// this repository (spec §1/§4.4).
var errDaemonNotConfigured = errors.New("transfer: no daemon transport configured")

// NoopTransport is the default DaemonTransport wired by cmd/playlistbridged
// when no concrete transfer-daemon client has been registered.
type NoopTransport struct{}

var _ DaemonTransport = NoopTransport{}

func (NoopTransport) StartSearch(ctx context.Context, req SearchRequest) (string, error) {
	return "", errDaemonNotConfigured
}
func (NoopTransport) PollResponses(ctx context.Context, searchID string) ([]RawResponse, error) {
	return nil, errDaemonNotConfigured
}
func (NoopTransport) DeleteSearch(ctx context.Context, searchID string) error {
	return errDaemonNotConfigured
}
func (NoopTransport) EnqueueDownload(ctx context.Context, username string, files []DownloadFile) (string, error) {
	return "", errDaemonNotConfigured
}
func (NoopTransport) AllDownloads(ctx context.Context) ([]DownloadStatus, error) {
	return nil, errDaemonNotConfigured
}
func (NoopTransport) CancelDownload(ctx context.Context, username, downloadID string) error {
	return errDaemonNotConfigured
}
func (NoopTransport) ClearCompletedDownloads(ctx context.Context) error {
	return errDaemonNotConfigured
}
func (NoopTransport) ListSearchHistory(ctx context.Context) ([]SearchHistoryEntry, error) {
	return nil, errDaemonNotConfigured
}
func (NoopTransport) DeleteSearchHistory(ctx context.Context, searchID string) error {
	return errDaemonNotConfigured
}
func (NoopTransport) Session(ctx context.Context) error {
	return errDaemonNotConfigured
}
