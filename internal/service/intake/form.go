// Package intake validates, de-duplicates and persists form submissions and
// hands them to the notification dispatcher.
package intake

import (
	"strings"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
)

// Form is one typed intake form decoded from a request body.
type Form interface {
	Type() domain.FormType
	// Validate normalizes the form in place and returns a
	// *domain.ValidationError listing every violated rule.
	Validate(now time.Time) error
	// Record is only meaningful after a successful Validate.
	Record() Record
}

// Record is the storable and notifiable view of a validated form.
type Record struct {
	Status      domain.SubmissionStatus
	SubjectName string
	Phone       string
	Email       string
	Fields      []domain.Field
	Content     notify.Content
}

// duplicateRule is a store query that must match nothing for the form to
// be accepted, and the error returned when it does match.
type duplicateRule struct {
	query  domain.Query
	reject error
}

// deduplicated is implemented by forms with a uniqueness or recency rule.
type deduplicated interface {
	duplicateRule(now time.Time) duplicateRule
}

// NewForm returns an empty form of the given type, ready to be decoded into.
func NewForm(t domain.FormType) (Form, bool) {
	switch t {
	case domain.FormRegistration:
		return &RegistrationForm{}, true
	case domain.FormMedical:
		return &MedicalForm{}, true
	case domain.FormConsent:
		return &ConsentForm{}, true
	case domain.FormFunding:
		return &FundingForm{}, true
	case domain.FormChangeOfDetails:
		return &ChangeOfDetailsForm{}, true
	case domain.FormAboutMe:
		return &AboutMeForm{}, true
	case domain.FormJobApplication:
		return &JobApplicationForm{}, true
	case domain.FormWaitlist:
		return &WaitlistForm{}, true
	case domain.FormContact:
		return &ContactForm{}, true
	case domain.FormAvailability:
		return &AvailabilityForm{}, true
	}
	return nil, false
}

// fields accumulates the ordered payload of a Record.
type fields []domain.Field

func (f *fields) add(key, label, value string) {
	*f = append(*f, domain.Field{Key: key, Label: label, Value: value})
}

func (f *fields) list(key, label string, values []string) {
	f.add(key, label, strings.Join(values, ", "))
}

// pick returns the subset of fs with the given keys, in fs order.
func pick(fs []domain.Field, keys ...string) []domain.Field {
	var out []domain.Field
	for _, f := range fs {
		for _, k := range keys {
			if f.Key == k {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
