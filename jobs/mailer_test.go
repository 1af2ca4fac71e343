package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusEmailBody(t *testing.T) {
	subject, body := statusEmailBody(PedidoStatusPayload{
		To:       "compras@ferragens.com.br",
		PedidoID: 17,
		Cliente:  "Ferragens Ipiranga LTDA",
		Status:   "processado",
		Total:    1327.5,
	})

	assert.Equal(t, "Pedido #17 - processado", subject)
	assert.Contains(t, body, "Ferragens Ipiranga LTDA")
	assert.Contains(t, body, "R$ 1.327,50")
	assert.Contains(t, body, "processado")
}

func TestStatusEmailBodyRascunho(t *testing.T) {
	subject, _ := statusEmailBody(PedidoStatusPayload{PedidoID: 3, Status: "rascunho"})
	assert.Equal(t, "Pedido #3 - orçamento salvo", subject)
}

func TestResetEmailBody(t *testing.T) {
	subject, body := resetEmailBody(UserResetPayload{Nome: "Ana Souza", UserID: 9})
	assert.Equal(t, "Redefinição de senha - PedidoFlow", subject)
	assert.Contains(t, body, "Ana Souza")
}
