package viewer

import "fmt"

// FormatRemaining renders a seconds budget as zero-padded HH:MM:SS.
// Negative values clamp to zero. Pure and side-effect free.
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
