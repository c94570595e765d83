package domain

// Wait-time bands shown to waitlist families.
const (
	WaitBandShort  = "1-2 weeks"
	WaitBandMedium = "1-2 months"
	WaitBandLong   = "2-4 months"
)

// DefaultWaitlistPriority is stored on every new entry. It is never read
// for ordering; back-office staff re-prioritise manually.
const DefaultWaitlistPriority = "normal"

// EstimateWait maps a 1-based queue position to a coarse wait-time band.
func EstimateWait(position int) string {
	switch {
	case position <= 5:
		return WaitBandShort
	case position <= 15:
		return WaitBandMedium
	default:
		return WaitBandLong
	}
}
