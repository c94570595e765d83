package intake

import (
	"strings"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
)

// parentContact is embedded by every form a parent fills in about a child.
type parentContact struct {
	ChildFullName  string `json:"childFullName"`
	ParentFullName string `json:"parentFullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
}

func (p *parentContact) validate(c *checker) {
	c.text("childFullName", &p.ChildFullName, 2, 100, "Child's full name")
	c.text("parentFullName", &p.ParentFullName, 2, 100, "Parent or guardian name")
	c.email("email", &p.Email, true)
	c.phone("phoneNumber", &p.PhoneNumber, domain.PhoneStrict, "Phone number")
}

func (p *parentContact) addTo(f *fields) {
	f.add("childFullName", "Child's full name", p.ChildFullName)
	f.add("parentFullName", "Parent/guardian name", p.ParentFullName)
	f.add("email", "Email", p.Email)
	f.add("phoneNumber", "Phone number", p.PhoneNumber)
}

func (p *parentContact) record(status domain.SubmissionStatus, f fields, c notify.Content) Record {
	return Record{
		Status:      status,
		SubjectName: p.ParentFullName,
		Phone:       p.PhoneNumber,
		Email:       p.Email,
		Fields:      f,
		Content:     c,
	}
}

// RegistrationForm registers a child for a place.
type RegistrationForm struct {
	parentContact
	ChildDateOfBirth string   `json:"childDateOfBirth"`
	Address          string   `json:"address"`
	Postcode         string   `json:"postcode"`
	StartDate        string   `json:"startDate"`
	Sessions         []string `json:"sessions"`
	AdditionalNeeds  string   `json:"additionalNeeds"`
	Declaration      bool     `json:"declaration"`
}

var registrationSessions = []string{"mornings", "afternoons", "full-days"}

func (f *RegistrationForm) Type() domain.FormType { return domain.FormRegistration }

func (f *RegistrationForm) Validate(now time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	dob := c.date("childDateOfBirth", &f.ChildDateOfBirth, true, "Child's date of birth")
	c.notFuture("childDateOfBirth", dob, now, "Child's date of birth")
	c.text("address", &f.Address, 5, 300, "Address")
	c.text("postcode", &f.Postcode, 5, 8, "Postcode")
	f.Postcode = strings.ToUpper(f.Postcode)
	c.date("startDate", &f.StartDate, true, "Preferred start date")
	c.subset("sessions", &f.Sessions, registrationSessions, true, "Session")
	c.longText("additionalNeeds", &f.AdditionalNeeds, 0, 2000, "Additional needs")
	c.declaration("declaration", f.Declaration, "You must confirm the declaration")
	return c.err()
}

func (f *RegistrationForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.add("childDateOfBirth", "Child's date of birth", f.ChildDateOfBirth)
	fs.add("address", "Address", f.Address)
	fs.add("postcode", "Postcode", f.Postcode)
	fs.add("startDate", "Preferred start date", f.StartDate)
	fs.list("sessions", "Sessions", f.Sessions)
	fs.add("additionalNeeds", "Additional needs", f.AdditionalNeeds)

	content := notify.Content{
		Fields: pick(fs, "childFullName", "childDateOfBirth", "startDate", "sessions"),
		NextSteps: []string{
			"Our team will review your registration and contact you within 3 working days.",
			"We will arrange a settling-in visit before your child's start date.",
		},
		Reminder: "Please have your child's birth certificate and red book ready for your first visit.",
	}
	if f.AdditionalNeeds != "" {
		content.AdminAlert = "Additional needs noted on this registration."
	}
	return f.parentContact.record(domain.StatusPending, fs, content)
}

// MedicalForm records a child's health information.
type MedicalForm struct {
	parentContact
	ChildDateOfBirth          string `json:"childDateOfBirth"`
	GPName                    string `json:"gpName"`
	GPPhone                   string `json:"gpPhone"`
	HasAllergies              string `json:"hasAllergies"`
	AllergyDetails            string `json:"allergyDetails"`
	TakesMedication           string `json:"takesMedication"`
	MedicationDetails         string `json:"medicationDetails"`
	EmergencyContactName      string `json:"emergencyContactName"`
	EmergencyContactPhone     string `json:"emergencyContactPhone"`
	MedicalConditions         string `json:"medicalConditions"`
	EmergencyTreatmentConsent bool   `json:"emergencyTreatmentConsent"`
}

func (f *MedicalForm) Type() domain.FormType { return domain.FormMedical }

func (f *MedicalForm) Validate(now time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	dob := c.date("childDateOfBirth", &f.ChildDateOfBirth, true, "Child's date of birth")
	c.notFuture("childDateOfBirth", dob, now, "Child's date of birth")
	c.text("gpName", &f.GPName, 2, 100, "GP name")
	c.phone("gpPhone", &f.GPPhone, domain.PhoneStrict, "GP phone number")
	c.yesNo("hasAllergies", &f.HasAllergies, "Allergies")
	if f.HasAllergies == "yes" {
		c.longText("allergyDetails", &f.AllergyDetails, 2, 1000, "Allergy details")
	} else {
		c.longText("allergyDetails", &f.AllergyDetails, 0, 1000, "Allergy details")
	}
	c.yesNo("takesMedication", &f.TakesMedication, "Medication")
	if f.TakesMedication == "yes" {
		c.longText("medicationDetails", &f.MedicationDetails, 2, 1000, "Medication details")
	} else {
		c.longText("medicationDetails", &f.MedicationDetails, 0, 1000, "Medication details")
	}
	c.text("emergencyContactName", &f.EmergencyContactName, 2, 100, "Emergency contact name")
	c.phone("emergencyContactPhone", &f.EmergencyContactPhone, domain.PhoneStrict, "Emergency contact phone number")
	c.longText("medicalConditions", &f.MedicalConditions, 0, 2000, "Medical conditions")
	c.declaration("emergencyTreatmentConsent", f.EmergencyTreatmentConsent, "You must consent to emergency treatment")
	return c.err()
}

func (f *MedicalForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.add("childDateOfBirth", "Child's date of birth", f.ChildDateOfBirth)
	fs.add("gpName", "GP name", f.GPName)
	fs.add("gpPhone", "GP phone", f.GPPhone)
	fs.add("hasAllergies", "Allergies", f.HasAllergies)
	fs.add("allergyDetails", "Allergy details", f.AllergyDetails)
	fs.add("takesMedication", "Medication", f.TakesMedication)
	fs.add("medicationDetails", "Medication details", f.MedicationDetails)
	fs.add("emergencyContactName", "Emergency contact", f.EmergencyContactName)
	fs.add("emergencyContactPhone", "Emergency contact phone", f.EmergencyContactPhone)
	fs.add("medicalConditions", "Medical conditions", f.MedicalConditions)

	content := notify.Content{
		Fields: pick(fs, "childFullName", "hasAllergies", "takesMedication", "emergencyContactName"),
		NextSteps: []string{
			"Your child's key person will review this information before their next session.",
			"Please tell us straight away if anything changes.",
		},
	}
	switch {
	case f.HasAllergies == "yes" && f.TakesMedication == "yes":
		content.AdminAlert = "Allergies and medication reported: " + f.AllergyDetails + "; " + f.MedicationDetails
	case f.HasAllergies == "yes":
		content.AdminAlert = "Allergies reported: " + f.AllergyDetails
	case f.TakesMedication == "yes":
		content.AdminAlert = "Medication reported: " + f.MedicationDetails
	}
	if f.TakesMedication == "yes" {
		content.Reminder = "Medication must be handed to staff in its original packaging with the pharmacy label."
	}
	return f.parentContact.record(domain.StatusSubmitted, fs, content)
}

// ConsentForm records a parent's permissions.
type ConsentForm struct {
	parentContact
	PhotoConsent    string `json:"photoConsent"`
	OutingsConsent  string `json:"outingsConsent"`
	SunCreamConsent string `json:"sunCreamConsent"`
	FirstAidConsent string `json:"firstAidConsent"`
	Signature       string `json:"signature"`
	Declaration     bool   `json:"declaration"`
}

func (f *ConsentForm) Type() domain.FormType { return domain.FormConsent }

func (f *ConsentForm) Validate(time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	c.yesNo("photoConsent", &f.PhotoConsent, "Photo consent")
	c.yesNo("outingsConsent", &f.OutingsConsent, "Outings consent")
	c.yesNo("sunCreamConsent", &f.SunCreamConsent, "Sun cream consent")
	c.yesNo("firstAidConsent", &f.FirstAidConsent, "First aid consent")
	c.text("signature", &f.Signature, 2, 100, "Signature")
	c.declaration("declaration", f.Declaration, "You must confirm the declaration")
	return c.err()
}

func (f *ConsentForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.add("photoConsent", "Photographs", f.PhotoConsent)
	fs.add("outingsConsent", "Local outings", f.OutingsConsent)
	fs.add("sunCreamConsent", "Sun cream", f.SunCreamConsent)
	fs.add("firstAidConsent", "First aid", f.FirstAidConsent)
	fs.add("signature", "Signed by", f.Signature)

	content := notify.Content{
		Fields:    pick(fs, "childFullName", "photoConsent", "outingsConsent", "sunCreamConsent", "firstAidConsent"),
		NextSteps: []string{"You can change any of these permissions at any time by submitting a new consent form."},
	}
	if f.PhotoConsent == "no" {
		content.AdminAlert = "No photo consent: exclude this child from photographs."
	}
	return f.parentContact.record(domain.StatusSubmitted, fs, content)
}

// FundingForm applies for government-funded hours.
type FundingForm struct {
	parentContact
	ChildDateOfBirth string `json:"childDateOfBirth"`
	FundingType      string `json:"fundingType"`
	EligibilityCode  string `json:"eligibilityCode"`
	NINumber         string `json:"niNumber"`
	Declaration      bool   `json:"declaration"`
}

var fundingTypes = []string{"15-hours", "30-hours", "2-year-old"}

func (f *FundingForm) Type() domain.FormType { return domain.FormFunding }

func (f *FundingForm) Validate(now time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	dob := c.date("childDateOfBirth", &f.ChildDateOfBirth, true, "Child's date of birth")
	c.notFuture("childDateOfBirth", dob, now, "Child's date of birth")
	c.oneOf("fundingType", &f.FundingType, fundingTypes, "Funding type")

	f.EligibilityCode = strings.ReplaceAll(strings.TrimSpace(f.EligibilityCode), " ", "")
	switch {
	case f.FundingType == "30-hours" && f.EligibilityCode == "":
		c.add("eligibilityCode", "An eligibility code is required for 30 hours funding")
	case f.EligibilityCode != "" && !isDigits(f.EligibilityCode, 11):
		c.add("eligibilityCode", "Eligibility code must be 11 digits")
	}

	f.NINumber = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(f.NINumber), " ", ""))
	if f.NINumber == "" {
		c.add("niNumber", "National Insurance number is required")
	} else if !niNumberPattern.MatchString(f.NINumber) {
		c.add("niNumber", "Please enter a valid National Insurance number")
	}
	c.declaration("declaration", f.Declaration, "You must confirm the declaration")
	return c.err()
}

func (f *FundingForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.add("childDateOfBirth", "Child's date of birth", f.ChildDateOfBirth)
	fs.add("fundingType", "Funding type", f.FundingType)
	fs.add("eligibilityCode", "Eligibility code", f.EligibilityCode)
	fs.add("niNumber", "National Insurance number", f.NINumber)

	content := notify.Content{
		Fields: pick(fs, "childFullName", "fundingType"),
		NextSteps: []string{
			"We will verify your eligibility with the local authority.",
			"Funded hours start from the term after verification is complete.",
		},
	}
	if f.FundingType == "30-hours" {
		content.Reminder = "Remember to reconfirm your eligibility code every three months."
	}
	return f.parentContact.record(domain.StatusPendingVerification, fs, content)
}

// ChangeOfDetailsForm updates information already held about a child.
type ChangeOfDetailsForm struct {
	parentContact
	ChangeTypes   []string `json:"changeTypes"`
	Details       string   `json:"details"`
	EffectiveDate string   `json:"effectiveDate"`
	Declaration   bool     `json:"declaration"`
}

var changeTypes = []string{"address", "phone", "email", "emergency-contact", "medical", "collection", "other"}

func (f *ChangeOfDetailsForm) Type() domain.FormType { return domain.FormChangeOfDetails }

func (f *ChangeOfDetailsForm) Validate(time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	c.subset("changeTypes", &f.ChangeTypes, changeTypes, true, "Change type")
	c.longText("details", &f.Details, 10, 2000, "Details of the change")
	c.date("effectiveDate", &f.EffectiveDate, false, "Effective date")
	c.declaration("declaration", f.Declaration, "You must confirm the declaration")
	return c.err()
}

func (f *ChangeOfDetailsForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.list("changeTypes", "What has changed", f.ChangeTypes)
	fs.add("details", "Details", f.Details)
	fs.add("effectiveDate", "Effective from", f.EffectiveDate)

	content := notify.Content{
		Fields:    pick(fs, "childFullName", "changeTypes", "effectiveDate"),
		NextSteps: []string{"We will update your child's records and confirm once done."},
	}
	if contains(f.ChangeTypes, "medical") || contains(f.ChangeTypes, "collection") {
		content.AdminAlert = "Safeguarding-relevant change (" + strings.Join(f.ChangeTypes, ", ") + "): update the register today."
	}
	return f.parentContact.record(domain.StatusSubmitted, fs, content)
}

// AboutMeForm tells staff about a child's routines and personality.
type AboutMeForm struct {
	parentContact
	Likes         string `json:"likes"`
	Dislikes      string `json:"dislikes"`
	Routines      string `json:"routines"`
	Comforters    string `json:"comforters"`
	Communication string `json:"communication"`
	Other         string `json:"other"`
}

func (f *AboutMeForm) Type() domain.FormType { return domain.FormAboutMe }

func (f *AboutMeForm) Validate(time.Time) error {
	var c checker
	f.parentContact.validate(&c)
	c.longText("likes", &f.Likes, 0, 1500, "Likes")
	c.longText("dislikes", &f.Dislikes, 0, 1500, "Dislikes")
	c.longText("routines", &f.Routines, 0, 1500, "Routines")
	c.longText("comforters", &f.Comforters, 0, 1500, "Comforters")
	c.longText("communication", &f.Communication, 0, 1500, "Communication")
	c.longText("other", &f.Other, 0, 1500, "Anything else")
	return c.err()
}

func (f *AboutMeForm) Record() Record {
	var fs fields
	f.parentContact.addTo(&fs)
	fs.add("likes", "Likes", f.Likes)
	fs.add("dislikes", "Dislikes", f.Dislikes)
	fs.add("routines", "Routines", f.Routines)
	fs.add("comforters", "Comforters", f.Comforters)
	fs.add("communication", "Communication", f.Communication)
	fs.add("other", "Anything else", f.Other)

	content := notify.Content{
		Fields:    pick(fs, "childFullName"),
		NextSteps: []string{"Your child's key person will read this before their first session."},
	}
	return f.parentContact.record(domain.StatusSubmitted, fs, content)
}
