package domain

import (
	"time"

	"github.com/google/uuid"
)

// FormType identifies which intake form produced a submission.
type FormType string

const (
	FormRegistration    FormType = "registration"
	FormMedical         FormType = "medical"
	FormConsent         FormType = "consent"
	FormFunding         FormType = "funding"
	FormChangeOfDetails FormType = "change_of_details"
	FormAboutMe         FormType = "about_me"
	FormJobApplication  FormType = "job_application"
	FormWaitlist        FormType = "waitlist"
	FormContact         FormType = "contact"
	FormAvailability    FormType = "availability"
)

func (f FormType) String() string { return string(f) }

func (f FormType) IsValid() bool {
	switch f {
	case FormRegistration, FormMedical, FormConsent, FormFunding, FormChangeOfDetails,
		FormAboutMe, FormJobApplication, FormWaitlist, FormContact, FormAvailability:
		return true
	}
	return false
}

// SubmissionStatus is the lifecycle state of a submission. The intake pipeline
// only ever sets the initial status; later transitions belong to back-office tooling.
type SubmissionStatus string

const (
	StatusPending             SubmissionStatus = "pending"
	StatusSubmitted           SubmissionStatus = "submitted"
	StatusActive              SubmissionStatus = "active"
	StatusCompleted           SubmissionStatus = "completed"
	StatusPendingVerification SubmissionStatus = "pending_verification"
	StatusOffered             SubmissionStatus = "offered"
	StatusEnrolled            SubmissionStatus = "enrolled"
	StatusRemoved             SubmissionStatus = "removed"
)

func (s SubmissionStatus) String() string { return string(s) }

// Field is one labelled value of a submission payload. Order is preserved
// through storage, rendering and email templates.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Source holds best-effort metadata about the submitting client.
type Source struct {
	UserAgent string
	Browser   string
	OS        string
	ClientIP  string
}

// UnknownUserAgent is stored when the client sent no User-Agent header.
const UnknownUserAgent = "unknown"

// Submission is one persisted form intake.
type Submission struct {
	ID          uuid.UUID
	Reference   string
	FormType    FormType
	Status      SubmissionStatus
	SubjectName string
	Phone       *string
	Email       *string
	Payload     []Field
	Priority    *string
	Position    *int
	Source      Source
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Value returns the payload value stored under key, or "" if absent.
func (s *Submission) Value(key string) string {
	for _, f := range s.Payload {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Query selects submissions in the store. Zero-valued fields are ignored.
type Query struct {
	FormType      FormType
	Phone         string
	Email         string
	Status        SubmissionStatus
	Reference     string
	PayloadEquals map[string]string
	CreatedAfter  time.Time
	CreatedBefore time.Time
	// Newest orders FindOne by created_at descending instead of ascending.
	Newest bool
}
