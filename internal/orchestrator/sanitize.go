package orchestrator

import "strings"

// sanitize is a conservative, deterministic, idempotent transformation of a
// provider's raw content (spec §4.3 step 5): trims surrounding whitespace
// and strips ASCII control characters a vendor might leak into a response.
func sanitize(content string) string {
	trimmed := strings.TrimSpace(content)
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
