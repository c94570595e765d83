package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Audience selects which template pair a message is rendered from.
type Audience string

const (
	AudienceAdmin     Audience = "admin"
	AudienceSubmitter Audience = "submitter"
)

// messageData is the view model shared by all four templates.
type messageData struct {
	SiteName      string
	SitePhone     string
	FormTitle     string
	Reference     string
	SubjectName   string
	SubmittedAt   string
	Fields        []domain.Field
	Alert         string
	NextSteps     []string
	Reminder      string
	DocumentURL   string
	HasAttachment bool
}

type templates struct {
	html map[Audience]*htmltemplate.Template
	text map[Audience]*texttemplate.Template
}

func loadTemplates() (*templates, error) {
	t := &templates{
		html: make(map[Audience]*htmltemplate.Template),
		text: make(map[Audience]*texttemplate.Template),
	}
	for _, a := range []Audience{AudienceAdmin, AudienceSubmitter} {
		h, err := htmltemplate.ParseFS(templateFS, "templates/"+string(a)+".html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s html template: %w", a, err)
		}
		x, err := texttemplate.ParseFS(templateFS, "templates/"+string(a)+".txt.tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s text template: %w", a, err)
		}
		t.html[a] = h
		t.text[a] = x
	}
	return t, nil
}

// render returns the HTML and plain-text bodies for one audience.
func (t *templates) render(a Audience, data messageData) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := t.html[a].Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", a, err)
	}
	if err := t.text[a].Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", a, err)
	}
	return hb.String(), tb.String(), nil
}

func subjectFor(a Audience, data messageData) string {
	if a == AudienceAdmin {
		return fmt.Sprintf("New %s submission: %s (%s)", data.FormTitle, data.SubjectName, data.Reference)
	}
	return fmt.Sprintf("We've received your %s form (%s)", data.FormTitle, data.Reference)
}
