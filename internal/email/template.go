package email

import (
	"bytes"
	"html/template"

	"barbearia/internal/model"
	apperrors "barbearia/pkg/errors"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<html>
<body>
  <h2>Agendamento recebido!</h2>
  <p>Olá {{.Name}}, recebemos o seu agendamento:</p>
  <ul>
    <li><strong>Serviço:</strong> {{.Service}}</li>
    <li><strong>Data:</strong> {{.Date}}</li>
    <li><strong>Horário:</strong> {{.Time}}</li>
    <li><strong>Telefone:</strong> {{.Phone}}</li>
    {{if .Notes}}<li><strong>Observações:</strong> {{.Notes}}</li>{{end}}
  </ul>
  <p>Aguarde a confirmação. Até breve!</p>
</body>
</html>`))

// RenderConfirmation builds the booking confirmation body for an
// appointment.
func RenderConfirmation(apt *model.Appointment) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, apt); err != nil {
		return "", apperrors.Delivery("failed to render confirmation template", err)
	}
	return buf.String(), nil
}

// RenderBulk parses a campaign body template and executes it per
// recipient. The template may reference {{.Email}}.
func RenderBulk(bodyTemplate, recipient string) (string, error) {
	tmpl, err := template.New("bulk").Parse(bodyTemplate)
	if err != nil {
		return "", apperrors.Delivery("invalid campaign template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Email string }{Email: recipient}); err != nil {
		return "", apperrors.Delivery("failed to render campaign template", err)
	}
	return buf.String(), nil
}
