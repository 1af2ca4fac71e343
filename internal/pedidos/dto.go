package pedidos

// SubmitRequest is the payload vendors post to create an order or quote.
type SubmitRequest struct {
	Tipo              string                 `json:"tipo" validate:"required,oneof=pedido orcamento"`
	ClienteCNPJ       string                 `json:"clienteCnpj" validate:"required"`
	ClienteRazao      string                 `json:"clienteRazaoSocial" validate:"required"`
	ClienteEndereco   string                 `json:"clienteEndereco"`
	ClienteEmail      string                 `json:"clienteEmail" validate:"omitempty,email"`
	ClienteTelefone   string                 `json:"clienteTelefone"`
	Fornecedor        string                 `json:"fornecedor"`
	IPI               float64                `json:"ipi" validate:"gte=0,lte=100"`
	Desconto          float64                `json:"desconto" validate:"gte=0,lte=100"`
	TipoPagamento     string                 `json:"tipoPagamento" validate:"omitempty,oneof=antecipado rl-antecipado prazo"`
	CondicaoPagamento string                 `json:"condicaoPagamento"`
	Observacao        string                 `json:"observacao"`
	Itens             []SubmitItemRequest    `json:"itens" validate:"required,min=1,dive"`
	CNPJsAdicionais   []CNPJAdicionalRequest `json:"cnpjsAdicionais" validate:"omitempty,dive"`
}

// SubmitItemRequest is one line of a SubmitRequest.
type SubmitItemRequest struct {
	ProdutoCodigo string  `json:"produtoCodigo" validate:"required"`
	Descricao     string  `json:"descricao" validate:"required"`
	Quantidade    float64 `json:"quantidade" validate:"required,gt=0"`
	Desconto      float64 `json:"desconto" validate:"gte=0,lte=100"`
	PrecoUnitario float64 `json:"precoUnitario" validate:"gte=0"`
}

// CNPJAdicionalRequest is a secondary CNPJ entry on a SubmitRequest.
type CNPJAdicionalRequest struct {
	CNPJ        string `json:"cnpj" validate:"required"`
	RazaoSocial string `json:"razaoSocial"`
	Endereco    string `json:"endereco"`
	Email       string `json:"email" validate:"omitempty,email"`
	Telefone    string `json:"telefone"`
	Tipo        string `json:"tipo" validate:"omitempty,oneof=comercial financeiro"`
	Observacao  string `json:"observacao"`
	Selecionado bool   `json:"selecionado"`
}

// AdvanceStatusRequest moves an order forward in the pipeline.
type AdvanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=processado encaminhado"`
}

// ListFilter narrows List queries.
type ListFilter struct {
	Status     string
	VendedorID int64
	DateFrom   string
	DateTo     string
	Limit      int
	Offset     int
}

// PedidoResponse decorates a Pedido with display helpers.
type PedidoResponse struct {
	Pedido
	TotalFormatado string `json:"totalFormatado"`
}
