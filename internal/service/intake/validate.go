package intake

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// checker collects every rule violation of one form, in field order.
type checker struct {
	errs []domain.FieldError
}

func (c *checker) add(field, message string) {
	c.errs = append(c.errs, domain.FieldError{Field: field, Message: message})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return domain.NewValidationErrors(c.errs)
}

// text cleans *v in place and checks its length in runes. min 0 means optional.
func (c *checker) text(field string, v *string, min, max int, label string) {
	*v = domain.CleanText(*v)
	n := utf8.RuneCountInString(*v)
	switch {
	case min > 0 && n == 0:
		c.add(field, label+" is required")
	case n > 0 && n < min:
		c.add(field, label+" must be at least "+strconv.Itoa(min)+" characters")
	case max > 0 && n > max:
		c.add(field, label+" must be "+strconv.Itoa(max)+" characters or fewer")
	}
}

// longText is text for multi-line values: only surrounding whitespace is trimmed.
func (c *checker) longText(field string, v *string, min, max int, label string) {
	*v = strings.TrimSpace(*v)
	n := utf8.RuneCountInString(*v)
	switch {
	case min > 0 && n == 0:
		c.add(field, label+" is required")
	case n > 0 && n < min:
		c.add(field, label+" must be at least "+strconv.Itoa(min)+" characters")
	case max > 0 && n > max:
		c.add(field, label+" must be "+strconv.Itoa(max)+" characters or fewer")
	}
}

func (c *checker) phone(field string, v *string, p domain.PhonePolicy, label string) {
	if strings.TrimSpace(*v) == "" {
		c.add(field, label+" is required")
		return
	}
	normalized, ok := domain.NormalizePhone(*v, p)
	if !ok {
		c.add(field, "Please enter a valid "+strings.ToLower(label))
		return
	}
	*v = normalized
}

func (c *checker) email(field string, v *string, required bool) {
	*v = domain.NormalizeEmail(*v)
	switch {
	case *v == "" && required:
		c.add(field, "Email address is required")
	case *v != "" && !domain.IsValidEmail(*v):
		c.add(field, "Please enter a valid email address")
	}
}

// yesNo normalizes *v to "yes" or "no", case-insensitively.
func (c *checker) yesNo(field string, v *string, label string) {
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "yes":
		*v = "yes"
	case "no":
		*v = "no"
	case "":
		c.add(field, label+" is required")
	default:
		c.add(field, label+" must be yes or no")
	}
}

func (c *checker) declaration(field string, v bool, message string) {
	if !v {
		c.add(field, message)
	}
}

func (c *checker) oneOf(field string, v *string, allowed []string, label string) {
	*v = strings.ToLower(strings.TrimSpace(*v))
	if *v == "" {
		c.add(field, label+" is required")
		return
	}
	if !contains(allowed, *v) {
		c.add(field, "Please select a valid "+strings.ToLower(label))
	}
}

// subset normalizes and de-duplicates *vs and checks each entry against allowed.
func (c *checker) subset(field string, vs *[]string, allowed []string, required bool, label string) {
	var out []string
	for _, v := range *vs {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || contains(out, v) {
			continue
		}
		if !contains(allowed, v) {
			c.add(field, "Invalid "+strings.ToLower(label)+": "+v)
			continue
		}
		out = append(out, v)
	}
	*vs = out
	if required && len(out) == 0 {
		c.add(field, "Please select at least one "+strings.ToLower(label))
	}
}

// date parses a YYYY-MM-DD value. It returns the zero time on failure.
func (c *checker) date(field string, v *string, required bool, label string) time.Time {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		if required {
			c.add(field, label+" is required")
		}
		return time.Time{}
	}
	d, err := domain.ParseDate(*v)
	if err != nil {
		c.add(field, label+" must be a valid date (YYYY-MM-DD)")
		return time.Time{}
	}
	return d
}

func (c *checker) notFuture(field string, d, now time.Time, label string) {
	if !d.IsZero() && d.After(now) {
		c.add(field, label+" cannot be in the future")
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// niNumberPattern is the HMRC National Insurance number shape.
var niNumberPattern = regexp.MustCompile(`^[A-CEGHJ-PR-TW-Z][A-CEGHJ-NPR-TW-Z][0-9]{6}[A-D]$`)

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
