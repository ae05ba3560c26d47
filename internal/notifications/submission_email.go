package notifications

import (
	"bytes"
	"html/template"

	"github.com/Mrwire/geniusad-sub002/internal/submissions"
)

const submissionNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>Nouvelle demande : {{.Title}}</h3>
  {{- with .Sub.Subsidiary}}
  <p><strong>Filiale:</strong> {{.}}</p>
  {{- end}}
  {{- with .Sub.Locale}}
  <p><strong>Langue:</strong> {{.}}</p>
  {{- end}}
  {{- range .Sub.Entries}}{{if .Value}}
  <p><strong>{{.Label}}:</strong> {{.Value}}</p>
  {{- end}}{{end}}
  <p><strong>ID:</strong> {{.Sub.ID}}</p>
</body>
</html>`

const submissionConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
{{- if eq .Sub.Locale "en"}}
  <p>Hello {{.Name}},</p>
  <p>We have received your request "{{.Title}}" and will get back to you shortly.</p>
  <p><strong>Reference: {{.Sub.ID}}</strong></p>
  <p>Thank you.</p>
{{- else}}
  <p>Bonjour {{.Name}},</p>
  <p>Nous avons bien recu votre demande "{{.Title}}" et reviendrons vers vous rapidement.</p>
  <p><strong>Reference : {{.Sub.ID}}</strong></p>
  <p>Merci.</p>
{{- end}}
</body>
</html>`

var submissionNotificationTmpl = template.Must(template.New("submission_notification").Parse(submissionNotificationTemplate))
var submissionConfirmationTmpl = template.Must(template.New("submission_confirmation").Parse(submissionConfirmationTemplate))

type submissionView struct {
	Title string
	Name  string
	Sub   submissions.Submission
}

func newSubmissionView(sub submissions.Submission) submissionView {
	name := sub.Name
	if name == "" {
		name = sub.Email
	}
	return submissionView{Title: formTitle(sub), Name: name, Sub: sub}
}

func formTitle(sub submissions.Submission) string {
	if sub.FormTitle != "" {
		return sub.FormTitle
	}
	return sub.FormID
}

func confirmationSubject(locale string) string {
	if locale == "en" {
		return "We received your request"
	}
	return "Nous avons bien recu votre demande"
}

func buildSubmissionNotificationHTML(sub submissions.Submission) (string, error) {
	var buf bytes.Buffer
	if err := submissionNotificationTmpl.Execute(&buf, newSubmissionView(sub)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildSubmissionConfirmationHTML(sub submissions.Submission) (string, error) {
	var buf bytes.Buffer
	if err := submissionConfirmationTmpl.Execute(&buf, newSubmissionView(sub)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
