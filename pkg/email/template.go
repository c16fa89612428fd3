package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/submission.html
var submissionTemplate string

const (
	longDateLayout   = "January 2, 2006"
	receivedAtLayout = "Monday, January 2, 2006 at 03:04 PM"
)

// dateLayouts are tried in order when parsing the requested completion date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// SubmissionEmailData holds the fields of a contact form submission as shown in the email.
type SubmissionEmailData struct {
	Name    string
	Email   string
	Company string
	Goal    string
	Date    string
	Budget  string
	Details string
}

type submissionView struct {
	SubmissionEmailData
	ReceivedAt string
}

// Renderer turns a submission into the HTML body of the notification email.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewRenderer parses the embedded template. now defaults to time.Now when nil.
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{
		tmpl: template.Must(template.New("submission").Parse(submissionTemplate)),
		now:  now,
	}
}

// Render executes the template. All values are HTML escaped.
func (r *Renderer) Render(data SubmissionEmailData) (string, error) {
	view := submissionView{
		SubmissionEmailData: data,
		ReceivedAt:          r.now().Format(receivedAtLayout),
	}
	view.Date = FormatLongDate(data.Date)

	var body bytes.Buffer
	if err := r.tmpl.Execute(&body, view); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

// FormatLongDate renders "2024-05-01" as "May 1, 2024". Unparsable input is returned as given.
func FormatLongDate(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(longDateLayout)
		}
	}
	return value
}
