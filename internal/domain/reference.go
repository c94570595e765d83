package domain

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	referenceAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceSuffixLen = 6
)

// Reference prefixes per form type.
var referencePrefixes = map[FormType]string{
	FormRegistration:    "REG",
	FormMedical:         "MED",
	FormConsent:         "CON",
	FormFunding:         "FUN",
	FormChangeOfDetails: "CHG",
	FormAboutMe:         "ABT",
	FormJobApplication:  "JOB",
	FormWaitlist:        "WL",
	FormContact:         "CNT",
	FormAvailability:    "AVL",
}

// ReferencePrefix returns the tracking-code prefix for a form type.
func ReferencePrefix(f FormType) string {
	if p, ok := referencePrefixes[f]; ok {
		return p
	}
	return "SUB"
}

// GenerateReference returns a human-readable tracking code of the form
// PREFIX-<base36 millis>-<6 random base36 chars>, upper-cased.
// Uniqueness is probabilistic; the store enforces it with a unique index.
func GenerateReference(prefix string, now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	var b strings.Builder
	b.Grow(len(prefix) + len(ts) + referenceSuffixLen + 2)
	b.WriteString(strings.ToUpper(prefix))
	b.WriteByte('-')
	b.WriteString(ts)
	b.WriteByte('-')
	b.WriteString(randomSuffix(referenceSuffixLen))
	return b.String()
}

func randomSuffix(n int) string {
	max := big.NewInt(int64(len(referenceAlphabet)))
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to the clock.
			v = big.NewInt(time.Now().UnixNano() % int64(len(referenceAlphabet)))
		}
		out[i] = referenceAlphabet[v.Int64()]
	}
	return string(out)
}
