package domain

import "time"

var formLabels = map[FormType]string{
	FormRegistration:    "Registration",
	FormMedical:         "Medical",
	FormConsent:         "Consent",
	FormFunding:         "Funding",
	FormChangeOfDetails: "Change_of_Details",
	FormAboutMe:         "About_Me",
	FormJobApplication:  "Job_Application",
	FormWaitlist:        "Waitlist",
	FormContact:         "Contact",
	FormAvailability:    "Availability",
}

// FormLabel returns the label used in attachment names and object keys.
func FormLabel(f FormType) string {
	if l, ok := formLabels[f]; ok {
		return l
	}
	return "Submission"
}

// FormTitle is FormLabel with underscores shown as spaces.
func FormTitle(f FormType) string {
	b := []byte(FormLabel(f))
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

// HasDocument reports whether submissions of this type get a PDF record.
func HasDocument(f FormType) bool {
	switch f {
	case FormWaitlist, FormContact, FormAvailability:
		return false
	}
	return f.IsValid()
}

// Document is the input to the PDF renderer.
type Document struct {
	FormType    FormType
	Reference   string
	SubjectName string
	SubmittedAt time.Time
	Fields      []Field
}

// Label returns the document's form label.
func (d Document) Label() string { return FormLabel(d.FormType) }

// AdminAttachmentName is the PDF filename sent to staff.
func (d Document) AdminAttachmentName() string {
	return d.Label() + "_" + d.Reference + ".pdf"
}

// SubmitterAttachmentName is the PDF filename sent to the submitter.
func (d Document) SubmitterAttachmentName() string {
	return "Your_" + d.AdminAttachmentName()
}

// DocumentFor builds the renderer input for a persisted submission.
func DocumentFor(s *Submission) Document {
	return Document{
		FormType:    s.FormType,
		Reference:   s.Reference,
		SubjectName: s.SubjectName,
		SubmittedAt: s.CreatedAt,
		Fields:      s.Payload,
	}
}
