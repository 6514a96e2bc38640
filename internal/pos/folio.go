package pos

import "time"

// GenerateFolio derives the human-facing order identifier from the wall
// clock, down to the second (ORD-YYYYMMDDHHMMSS). Two orders opened within
// the same second collide; the schema deliberately does not enforce folio
// uniqueness, so the collision is visible rather than silently corrected.
func GenerateFolio(t time.Time) string {
	return "ORD-" + t.Format("20060102150405")
}
