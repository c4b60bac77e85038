//go:build !windows

package ingest

import "path/filepath"

// Addr names the page file the diff facility materializes inside the
// snapshot container
func (s *PageSource) Addr(cookie string) string {
	return filepath.Join(s.SnapDir, s.Snap1+"^"+s.Snap2+"^"+cookie)
}
