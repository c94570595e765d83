package intake

import (
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
)

// Recency windows for the duplicate guard.
const (
	ContactWindow = 5 * time.Minute
	JobWindow     = 30 * 24 * time.Hour
	MinimumAge    = 16
)

// JobApplicationForm applies for a staff vacancy.
type JobApplicationForm struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	Position    string `json:"position"`
	RightToWork string `json:"rightToWork"`
	Experience  string `json:"experience"`
	CoverLetter string `json:"coverLetter"`
	Declaration bool   `json:"declaration"`
}

var jobPositions = []string{"nursery-practitioner", "room-leader", "apprentice", "cook", "bank-staff", "other"}

func (f *JobApplicationForm) Type() domain.FormType { return domain.FormJobApplication }

func (f *JobApplicationForm) Validate(now time.Time) error {
	var c checker
	c.text("fullName", &f.FullName, 2, 100, "Full name")
	c.email("email", &f.Email, true)
	c.phone("phoneNumber", &f.PhoneNumber, domain.PhoneStrict, "Phone number")
	dob := c.date("dateOfBirth", &f.DateOfBirth, true, "Date of birth")
	if !dob.IsZero() && domain.AgeOn(dob, now) < MinimumAge {
		c.add("dateOfBirth", "You must be at least 16 years old to apply")
	}
	c.oneOf("position", &f.Position, jobPositions, "Position")
	c.yesNo("rightToWork", &f.RightToWork, "Right to work in the UK")
	c.longText("experience", &f.Experience, 0, 3000, "Experience")
	c.longText("coverLetter", &f.CoverLetter, 0, 3000, "Cover letter")
	c.declaration("declaration", f.Declaration, "You must confirm the declaration")
	return c.err()
}

func (f *JobApplicationForm) Record() Record {
	var fs fields
	fs.add("fullName", "Full name", f.FullName)
	fs.add("email", "Email", f.Email)
	fs.add("phoneNumber", "Phone number", f.PhoneNumber)
	fs.add("dateOfBirth", "Date of birth", f.DateOfBirth)
	fs.add("position", "Position", f.Position)
	fs.add("rightToWork", "Right to work in the UK", f.RightToWork)
	fs.add("experience", "Experience", f.Experience)
	fs.add("coverLetter", "Cover letter", f.CoverLetter)

	content := notify.Content{
		Fields: pick(fs, "position", "phoneNumber", "rightToWork"),
		NextSteps: []string{
			"Our manager will review your application within 10 working days.",
			"Shortlisted applicants will be invited to an interview and a paid trial session.",
		},
		Reminder: "All roles are subject to an enhanced DBS check and two references.",
	}
	if f.RightToWork == "no" {
		content.AdminAlert = "Applicant has indicated they do not have the right to work in the UK."
	}
	return Record{
		Status:      domain.StatusPending,
		SubjectName: f.FullName,
		Phone:       f.PhoneNumber,
		Email:       f.Email,
		Fields:      fs,
		Content:     content,
	}
}

func (f *JobApplicationForm) duplicateRule(now time.Time) duplicateRule {
	return duplicateRule{
		query: domain.Query{
			FormType:      domain.FormJobApplication,
			Email:         f.Email,
			PayloadEquals: map[string]string{"position": f.Position},
			CreatedAfter:  now.Add(-JobWindow),
		},
		reject: &domain.ConflictError{
			Message: "You have already applied for this position in the last 30 days. We will be in touch about your existing application.",
		},
	}
}

// WaitlistForm joins the waiting list for a place.
type WaitlistForm struct {
	FullName           string `json:"fullName"`
	PhoneNumber        string `json:"phoneNumber"`
	ChildName          string `json:"childName"`
	ChildAge           string `json:"childAge"`
	PreferredStartDate string `json:"preferredStartDate"`
	Notes              string `json:"notes"`
}

func (f *WaitlistForm) Type() domain.FormType { return domain.FormWaitlist }

func (f *WaitlistForm) Validate(time.Time) error {
	var c checker
	c.text("fullName", &f.FullName, 2, 100, "Full name")
	c.phone("phoneNumber", &f.PhoneNumber, domain.PhoneLoose, "Phone number")
	c.text("childName", &f.ChildName, 0, 100, "Child's name")
	c.text("childAge", &f.ChildAge, 0, 50, "Child's age")
	c.date("preferredStartDate", &f.PreferredStartDate, false, "Preferred start date")
	c.longText("notes", &f.Notes, 0, 1500, "Notes")
	return c.err()
}

func (f *WaitlistForm) Record() Record {
	var fs fields
	fs.add("fullName", "Full name", f.FullName)
	fs.add("phoneNumber", "Phone number", f.PhoneNumber)
	fs.add("childName", "Child's name", f.ChildName)
	fs.add("childAge", "Child's age", f.ChildAge)
	fs.add("preferredStartDate", "Preferred start date", f.PreferredStartDate)
	fs.add("notes", "Notes", f.Notes)

	return Record{
		Status:      domain.StatusActive,
		SubjectName: f.FullName,
		Phone:       f.PhoneNumber,
		Fields:      fs,
		Content:     notify.Content{Fields: fs},
	}
}

func (f *WaitlistForm) duplicateRule(time.Time) duplicateRule {
	return duplicateRule{
		query: domain.Query{FormType: domain.FormWaitlist, Phone: f.PhoneNumber},
		reject: &domain.ConflictError{
			Message: "This phone number is already on our waitlist. Use the status lookup to see your current position.",
		},
	}
}

// ContactForm is a general enquiry.
type ContactForm struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

func (f *ContactForm) Type() domain.FormType { return domain.FormContact }

func (f *ContactForm) Validate(time.Time) error {
	var c checker
	c.text("fullName", &f.FullName, 2, 100, "Full name")
	c.phone("phoneNumber", &f.PhoneNumber, domain.PhoneLoose, "Phone number")
	c.longText("message", &f.Message, 10, 1500, "Message")
	return c.err()
}

func (f *ContactForm) Record() Record {
	var fs fields
	fs.add("fullName", "Full name", f.FullName)
	fs.add("phoneNumber", "Phone number", f.PhoneNumber)
	fs.add("message", "Message", f.Message)

	return Record{
		Status:      domain.StatusPending,
		SubjectName: f.FullName,
		Phone:       f.PhoneNumber,
		Fields:      fs,
		Content:     notify.Content{Fields: fs},
	}
}

func (f *ContactForm) duplicateRule(now time.Time) duplicateRule {
	return duplicateRule{
		query: domain.Query{
			FormType:      domain.FormContact,
			Phone:         f.PhoneNumber,
			PayloadEquals: map[string]string{"message": f.Message},
			CreatedAfter:  now.Add(-ContactWindow),
		},
		reject: &domain.RateLimitedError{
			Message: "Duplicate submission detected. We already received this message a moment ago; please wait a few minutes before sending it again.",
		},
	}
}

// AvailabilityForm asks whether a place is available on given days.
type AvailabilityForm struct {
	FullName      string   `json:"fullName"`
	PhoneNumber   string   `json:"phoneNumber"`
	ChildAge      string   `json:"childAge"`
	PreferredDays []string `json:"preferredDays"`
	Message       string   `json:"message"`
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func (f *AvailabilityForm) Type() domain.FormType { return domain.FormAvailability }

func (f *AvailabilityForm) Validate(time.Time) error {
	var c checker
	c.text("fullName", &f.FullName, 2, 100, "Full name")
	c.phone("phoneNumber", &f.PhoneNumber, domain.PhoneLoose, "Phone number")
	c.text("childAge", &f.ChildAge, 1, 50, "Child's age")
	c.subset("preferredDays", &f.PreferredDays, weekdays, true, "Preferred day")
	c.longText("message", &f.Message, 0, 1500, "Message")
	return c.err()
}

func (f *AvailabilityForm) Record() Record {
	var fs fields
	fs.add("fullName", "Full name", f.FullName)
	fs.add("phoneNumber", "Phone number", f.PhoneNumber)
	fs.add("childAge", "Child's age", f.ChildAge)
	fs.list("preferredDays", "Preferred days", f.PreferredDays)
	fs.add("message", "Message", f.Message)

	return Record{
		Status:      domain.StatusPending,
		SubjectName: f.FullName,
		Phone:       f.PhoneNumber,
		Fields:      fs,
		Content:     notify.Content{Fields: fs},
	}
}

func (f *AvailabilityForm) duplicateRule(time.Time) duplicateRule {
	return duplicateRule{
		query: domain.Query{FormType: domain.FormAvailability, Phone: f.PhoneNumber},
		reject: &domain.ConflictError{
			Message: "We already have an availability request for this phone number and will be in touch soon.",
		},
	}
}
