package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// ExamResultData feeds the exam result email
type ExamResultData struct {
	Name              string
	CourseTitle       string
	Score             int
	PassingScore      int
	Passed            bool
	CorrectAnswers    int
	TotalQuestions    int
	CertificateNumber string
	VerifyURL         string
}

var examResultTemplate = template.Must(template.New("exam_result").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">{{if .Passed}}Congratulations, you passed!{{else}}Your exam result{{end}}</h2>
		<p>Hello {{.Name}},</p>
		<p>You scored <strong>{{.Score}}%</strong> on the <strong>{{.CourseTitle}}</strong> exam
		({{.CorrectAnswers}} of {{.TotalQuestions}} correct; passing score {{.PassingScore}}%).</p>
		{{- if .Passed}}
		{{- if .CertificateNumber}}
		<p>Your certificate number is <strong>{{.CertificateNumber}}</strong>.</p>
		{{- if .VerifyURL}}
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.VerifyURL}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">View certificate</a>
		</div>
		{{- end}}
		{{- else}}
		<p>Your certificate is being prepared and will appear in your account shortly.</p>
		{{- end}}
		{{- else}}
		<p>You did not reach the passing score this time. Review the course material before your next attempt.</p>
		{{- end}}
		<p>Best regards,<br>The Certification Team</p>
	</div>
</body>
</html>`))

// RenderExamResult renders the exam result email and returns its subject and HTML body
func RenderExamResult(data ExamResultData) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := examResultTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render exam result email: %w", err)
	}

	subject = fmt.Sprintf("Your %s exam result", data.CourseTitle)
	if data.Passed {
		subject = fmt.Sprintf("You passed %s", data.CourseTitle)
	}
	return subject, buf.String(), nil
}
