package jobs

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pedidoflow/pedidoflow/internal/brdoc"
)

// Mailer sends plain-text e-mails over SMTP.
type Mailer struct {
	addr string
	from string
}

// NewMailer constructs a Mailer for the given SMTP host and port.
func NewMailer(host string, port int, from string) *Mailer {
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

// Send delivers one message.
func (m *Mailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("jobs: send mail to %s: %w", to, err)
	}
	return nil
}

func statusEmailBody(p PedidoStatusPayload) (subject, body string) {
	subject = fmt.Sprintf("Pedido #%d - %s", p.PedidoID, statusLabel(p.Status))
	body = fmt.Sprintf(
		"Olá %s,\n\nSeu pedido #%d está com o status: %s.\nValor total: %s.\n\nEquipe PedidoFlow",
		p.Cliente, p.PedidoID, statusLabel(p.Status), brdoc.FormatBRL(p.Total),
	)
	return subject, body
}

func resetEmailBody(p UserResetPayload) (subject, body string) {
	subject = "Redefinição de senha - PedidoFlow"
	body = fmt.Sprintf(
		"Olá %s,\n\nRecebemos um pedido de redefinição de senha para sua conta.\nProcure o administrador do sistema para concluir a troca.\n\nEquipe PedidoFlow",
		p.Nome,
	)
	return subject, body
}

func statusLabel(status string) string {
	switch status {
	case "rascunho":
		return "orçamento salvo"
	case "enviado":
		return "enviado"
	case "processado":
		return "processado"
	case "encaminhado":
		return "encaminhado"
	default:
		return status
	}
}
