package domain

import (
	"regexp"
	"strings"
	"time"
)

// CleanText prepares a single-line value for storage:
//   - trims leading/trailing whitespace
//   - compresses runs of spaces into one
//
// Case is preserved.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PhonePolicy describes how a form normalizes and accepts phone numbers.
// PhonePolicy bounds the digit count of a phone number.
type PhonePolicy struct {
	MinDigits int
	MaxDigits int
	// KeepPlus retains a single leading '+' in the normalized value.
	// When false the '+' is stripped along with other formatting characters.
	KeepPlus bool
}

var (
	// PhoneLoose is used by the short public forms (waitlist, contact, availability).
	PhoneLoose = PhonePolicy{MinDigits: 7, MaxDigits: 15, KeepPlus: true}
	// PhoneStrict is used by the parent and staff forms.
	PhoneStrict = PhonePolicy{MinDigits: 10, MaxDigits: 15, KeepPlus: false}
)

var phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")

// NormalizePhone strips formatting characters and checks the digit count.
// It returns the normalized number and whether it satisfies the policy.
func NormalizePhone(raw string, p PhonePolicy) (string, bool) {
	s := phoneFormatting.Replace(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	plus := strings.HasPrefix(s, "+")
	digits := strings.TrimPrefix(s, "+")
	if strings.Contains(digits, "+") {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if len(digits) < p.MinDigits || len(digits) > p.MaxDigits {
		return "", false
	}

	if plus && p.KeepPlus {
		return "+" + digits, true
	}
	return digits, true
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s has a local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail trims and lower-cases an email address for comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// AgeOn returns the age in whole years of someone born on dob at the given
// instant: the year difference minus one if the birthday has not yet
// occurred in now's year.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
