package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const subjectFollowUpDigestFmt = "Follow-up due: %s"

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

// DigestAction is one recommendation listed in a follow-up digest.
type DigestAction struct {
	Action   string
	Priority string
	Reason   string
}

// FollowUpDigest describes a lead whose follow-up is due.
type FollowUpDigest struct {
	CompanyName string
	ContactName string
	Score       int
	Grade       string
	Actions     []DigestAction
}

type followUpDigestEmailData struct {
	baseEmailData
	FollowUpDigest
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderFollowUpDigest(d FollowUpDigest) (subject, htmlBody, textBody string, err error) {
	subject = fmt.Sprintf(subjectFollowUpDigestFmt, d.CompanyName)
	htmlBody, err = renderEmailTemplate("followup_digest.html", followUpDigestEmailData{
		baseEmailData: baseEmailData{
			Title:      subject,
			Heading:    "Follow-up due",
			Subheading: fmt.Sprintf("%s needs your attention today.", d.CompanyName),
		},
		FollowUpDigest: d,
	})
	if err != nil {
		return "", "", "", err
	}
	return subject, htmlBody, plainTextDigest(d), nil
}

func plainTextDigest(d FollowUpDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", d.CompanyName)
	if d.ContactName != "" {
		fmt.Fprintf(&b, " (%s)", d.ContactName)
	}
	fmt.Fprintf(&b, "\nScore %d (%s)\n\n", d.Score, d.Grade)
	for i, a := range d.Actions {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, a.Priority, a.Action, a.Reason)
	}
	return b.String()
}
