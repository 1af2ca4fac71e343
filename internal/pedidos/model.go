// Package pedidos implements order and quote intake plus the status
// approval pipeline.
package pedidos

import "time"

// Status values follow the Portuguese wire vocabulary the API exposes.
const (
	StatusRascunho    = "rascunho"
	StatusEnviado     = "enviado"
	StatusProcessado  = "processado"
	StatusEncaminhado = "encaminhado"
)

// Payment types accepted on submission.
const (
	PagamentoAntecipado   = "antecipado"
	PagamentoRLAntecipado = "rl-antecipado"
	PagamentoPrazo        = "prazo"
)

// Tipo distinguishes a submitted order from a saved quote.
const (
	TipoPedido    = "pedido"
	TipoOrcamento = "orcamento"
)

// CNPJ adicional categories.
const (
	CNPJComercial  = "comercial"
	CNPJFinanceiro = "financeiro"
)

// Pedido is the order/quote aggregate.
type Pedido struct {
	ID                int64           `json:"id"`
	Data              time.Time       `json:"data"`
	ClienteCNPJ       string          `json:"clienteCnpj"`
	ClienteRazao      string          `json:"clienteRazaoSocial"`
	ClienteEndereco   string          `json:"clienteEndereco,omitempty"`
	ClienteEmail      string          `json:"clienteEmail,omitempty"`
	ClienteTelefone   string          `json:"clienteTelefone,omitempty"`
	Fornecedor        string          `json:"fornecedor,omitempty"`
	IPI               float64         `json:"ipi"`
	Desconto          float64         `json:"desconto"`
	TipoPagamento     string          `json:"tipoPagamento,omitempty"`
	CondicaoPagamento string          `json:"condicaoPagamento,omitempty"`
	Observacao        string          `json:"observacao,omitempty"`
	VendedorID        int64           `json:"vendedorId"`
	VendedorNome      string          `json:"vendedorNome,omitempty"`
	Status            string          `json:"status"`
	Total             float64         `json:"total"`
	Itens             []ItemPedido    `json:"itens"`
	CNPJsAdicionais   []CNPJAdicional `json:"cnpjsAdicionais,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ItemPedido is one product line inside an order.
type ItemPedido struct {
	ID            string  `json:"id"`
	ProdutoCodigo string  `json:"produtoCodigo"`
	Descricao     string  `json:"descricao"`
	Quantidade    float64 `json:"quantidade"`
	Desconto      float64 `json:"desconto"`
	PrecoUnitario float64 `json:"precoUnitario"`
	Posicao       int     `json:"-"`
}

// CNPJAdicional is a secondary billing or shipping identity on an order.
type CNPJAdicional struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razaoSocial,omitempty"`
	Endereco    string `json:"endereco,omitempty"`
	Email       string `json:"email,omitempty"`
	Telefone    string `json:"telefone,omitempty"`
	Tipo        string `json:"tipo"`
	Observacao  string `json:"observacao,omitempty"`
	Selecionado bool   `json:"selecionado"`
}

// Resumo carries per-status counts for the admin dashboard.
type Resumo struct {
	Enviados     int64 `json:"enviados"`
	Processados  int64 `json:"processados"`
	Encaminhados int64 `json:"encaminhados"`
	Orcamentos   int64 `json:"orcamentos"`
}

// statusTransitions enumerates the only forward edges of the pipeline.
var statusTransitions = map[string]string{
	StatusEnviado:    StatusProcessado,
	StatusProcessado: StatusEncaminhado,
}

// CanTransition reports whether an order may move from one status to
// another. Backwards moves, skips and repeats are all rejected.
func CanTransition(from, to string) bool {
	next, ok := statusTransitions[from]
	return ok && next == to
}
