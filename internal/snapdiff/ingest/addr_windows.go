//go:build windows

package ingest

// Addr names the page as an alternate data stream on the snapshot
// container, which is how the diff facility exposes pages on windows
func (s *PageSource) Addr(cookie string) string {
	return s.SnapDir + ":snapdiff." + s.Snap1 + "^" + s.Snap2 + "^" + cookie
}
