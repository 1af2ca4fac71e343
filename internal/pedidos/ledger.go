package pedidos

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Ledger validation errors.
var (
	ErrProdutoObrigatorio   = errors.New("produto codigo obrigatorio")
	ErrDescricaoObrigatoria = errors.New("descricao obrigatoria")
	ErrQuantidadeInvalida   = errors.New("quantidade deve ser maior que zero")
	ErrPrecoInvalido        = errors.New("preco unitario nao pode ser negativo")
)

// AddItem validates the candidate and appends it with a fresh ID.
// The input slice is never mutated; insertion order is preserved.
func AddItem(items []ItemPedido, candidate ItemPedido) ([]ItemPedido, error) {
	if strings.TrimSpace(candidate.ProdutoCodigo) == "" {
		return items, ErrProdutoObrigatorio
	}
	if strings.TrimSpace(candidate.Descricao) == "" {
		return items, ErrDescricaoObrigatoria
	}
	if candidate.Quantidade <= 0 {
		return items, ErrQuantidadeInvalida
	}
	if candidate.PrecoUnitario < 0 {
		return items, ErrPrecoInvalido
	}

	candidate.ID = uuid.NewString()
	candidate.Posicao = len(items)

	out := make([]ItemPedido, len(items), len(items)+1)
	copy(out, items)
	return append(out, candidate), nil
}

// RemoveItem drops the item with the given ID. Unknown IDs are a no-op.
func RemoveItem(items []ItemPedido, id string) []ItemPedido {
	out := make([]ItemPedido, 0, len(items))
	for _, it := range items {
		if it.ID == id {
			continue
		}
		it.Posicao = len(out)
		out = append(out, it)
	}
	return out
}

// LineTotal computes quantidade * preco * (1 - desconto/100). The
// discount is applied as given, without clamping.
func LineTotal(item ItemPedido) float64 {
	return item.Quantidade * item.PrecoUnitario * (1 - item.Desconto/100)
}

// OrderTotal sums line totals in insertion order. Empty ledgers total 0.
func OrderTotal(items []ItemPedido) float64 {
	var total float64
	for _, it := range items {
		total += LineTotal(it)
	}
	return total
}
