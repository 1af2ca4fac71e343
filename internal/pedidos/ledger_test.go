package pedidos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	items, err := AddItem(nil, ItemPedido{
		ProdutoCodigo: "P-100",
		Descricao:     "Parafuso sextavado",
		Quantidade:    5,
		PrecoUnitario: 200,
		Desconto:      10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, 0, items[0].Posicao)

	items, err = AddItem(items, ItemPedido{
		ProdutoCodigo: "P-200",
		Descricao:     "Porca",
		Quantidade:    3,
		PrecoUnitario: 142.5,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[1].Posicao)
	assert.Zero(t, items[1].Desconto)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestAddItemValidation(t *testing.T) {
	valid := ItemPedido{ProdutoCodigo: "P-1", Descricao: "Item", Quantidade: 1, PrecoUnitario: 10}

	cases := []struct {
		name   string
		mutate func(*ItemPedido)
		want   error
	}{
		{"missing codigo", func(i *ItemPedido) { i.ProdutoCodigo = "  " }, ErrProdutoObrigatorio},
		{"missing descricao", func(i *ItemPedido) { i.Descricao = "" }, ErrDescricaoObrigatoria},
		{"zero quantidade", func(i *ItemPedido) { i.Quantidade = 0 }, ErrQuantidadeInvalida},
		{"negative quantidade", func(i *ItemPedido) { i.Quantidade = -2 }, ErrQuantidadeInvalida},
		{"negative preco", func(i *ItemPedido) { i.PrecoUnitario = -1 }, ErrPrecoInvalido},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := valid
			tc.mutate(&candidate)
			items, err := AddItem([]ItemPedido{valid}, candidate)
			assert.ErrorIs(t, err, tc.want)
			assert.Len(t, items, 1)
		})
	}

	// zero price is allowed
	items, err := AddItem(nil, ItemPedido{ProdutoCodigo: "B-1", Descricao: "Bonificado", Quantidade: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRemoveItem(t *testing.T) {
	items, err := AddItem(nil, ItemPedido{ProdutoCodigo: "A", Descricao: "a", Quantidade: 1, PrecoUnitario: 1})
	require.NoError(t, err)
	items, err = AddItem(items, ItemPedido{ProdutoCodigo: "B", Descricao: "b", Quantidade: 1, PrecoUnitario: 1})
	require.NoError(t, err)

	out := RemoveItem(items, items[0].ID)
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].ProdutoCodigo)
	assert.Equal(t, 0, out[0].Posicao)

	same := RemoveItem(out, "nope")
	assert.Len(t, same, 1)
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 900.0, LineTotal(ItemPedido{Quantidade: 5, PrecoUnitario: 200, Desconto: 10}))
	assert.Equal(t, 427.5, LineTotal(ItemPedido{Quantidade: 3, PrecoUnitario: 142.5}))
	assert.Equal(t, 0.0, LineTotal(ItemPedido{Quantidade: 2, PrecoUnitario: 50, Desconto: 100}))
}

func TestOrderTotal(t *testing.T) {
	assert.Zero(t, OrderTotal(nil))

	items := []ItemPedido{
		{Quantidade: 5, PrecoUnitario: 200, Desconto: 10},
		{Quantidade: 3, PrecoUnitario: 142.5},
	}
	assert.Equal(t, 1327.5, OrderTotal(items))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusEnviado, StatusProcessado))
	assert.True(t, CanTransition(StatusProcessado, StatusEncaminhado))

	assert.False(t, CanTransition(StatusRascunho, StatusEnviado))
	assert.False(t, CanTransition(StatusRascunho, StatusEncaminhado))
	assert.False(t, CanTransition(StatusEnviado, StatusEncaminhado))
	assert.False(t, CanTransition(StatusProcessado, StatusEnviado))
	assert.False(t, CanTransition(StatusEncaminhado, StatusProcessado))
	assert.False(t, CanTransition(StatusEnviado, StatusEnviado))
}
