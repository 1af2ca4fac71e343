package pedidos

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedidoflow/pedidoflow/internal/observability"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
)

type mockRepo struct {
	pedidos     map[int64]*Pedido
	nextID      int64
	createCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{pedidos: make(map[int64]*Pedido), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, pedido *Pedido) error {
	m.createCalls++
	pedido.ID = m.nextID
	m.nextID++
	stored := *pedido
	m.pedidos[pedido.ID] = &stored
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Pedido, error) {
	pedido, ok := m.pedidos[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *pedido
	return &copied, nil
}

func (m *mockRepo) List(_ context.Context, filter ListFilter) ([]Pedido, error) {
	var out []Pedido
	for _, p := range m.pedidos {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.VendedorID > 0 && p.VendedorID != filter.VendedorID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, status string) (*Pedido, error) {
	pedido, ok := m.pedidos[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	pedido.Status = status
	copied := *pedido
	return &copied, nil
}

func (m *mockRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, p := range m.pedidos {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

type mockNotifier struct {
	calls []int64
}

func (m *mockNotifier) PedidoStatusChanged(_ context.Context, pedido *Pedido) error {
	m.calls = append(m.calls, pedido.ID)
	return nil
}

type mockIdem struct {
	claims   map[string]string
	released []string
}

func newMockIdem() *mockIdem {
	return &mockIdem{claims: make(map[string]string)}
}

func (m *mockIdem) Claim(_ context.Context, scope, key, entityID string) (string, error) {
	k := scope + "/" + key
	if existing, ok := m.claims[k]; ok {
		return existing, shared.ErrIdempotencyReplay
	}
	m.claims[k] = entityID
	return entityID, nil
}

func (m *mockIdem) Release(_ context.Context, scope, key string) error {
	k := scope + "/" + key
	delete(m.claims, k)
	m.released = append(m.released, k)
	return nil
}

// flakyRepo fails Create a fixed number of times before delegating.
type flakyRepo struct {
	*mockRepo
	failuresLeft int
}

func (f *flakyRepo) Create(ctx context.Context, pedido *Pedido) error {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return errors.New("connection reset by peer")
	}
	return f.mockRepo.Create(ctx, pedido)
}

type mockAuditor struct {
	entries []shared.AuditEntry
}

func (m *mockAuditor) Record(_ context.Context, entry shared.AuditEntry) {
	m.entries = append(m.entries, entry)
}

func newTestService(repo *mockRepo) (*Service, *mockNotifier, *mockAuditor) {
	notifier := &mockNotifier{}
	auditor := &mockAuditor{}
	svc := NewService(repo, nil, auditor, notifier, nil, nil, slog.Default())
	return svc, notifier, auditor
}

func validSubmit() SubmitRequest {
	return SubmitRequest{
		Tipo:          TipoPedido,
		ClienteCNPJ:   "12345678000199",
		ClienteRazao:  "Ferragens Ipiranga LTDA",
		TipoPagamento: PagamentoAntecipado,
		Itens: []SubmitItemRequest{
			{ProdutoCodigo: "P-100", Descricao: "Parafuso", Quantidade: 5, PrecoUnitario: 200, Desconto: 10},
			{ProdutoCodigo: "P-200", Descricao: "Porca", Quantidade: 3, PrecoUnitario: 142.5},
		},
	}
}

func TestSubmitPedido(t *testing.T) {
	repo := newMockRepo()
	svc, notifier, auditor := newTestService(repo)

	pedido, err := svc.Submit(context.Background(), validSubmit(), Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	assert.Equal(t, StatusEnviado, pedido.Status)
	assert.Equal(t, "12.345.678/0001-99", pedido.ClienteCNPJ)
	assert.Equal(t, 1327.5, pedido.Total)
	assert.Equal(t, int64(7), pedido.VendedorID)
	require.Len(t, pedido.Itens, 2)
	assert.NotEmpty(t, pedido.Itens[0].ID)
	assert.Equal(t, 0, pedido.Itens[0].Posicao)
	assert.Equal(t, 1, pedido.Itens[1].Posicao)

	assert.Equal(t, []int64{pedido.ID}, notifier.calls)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "pedido.submit", auditor.entries[0].Action)
}

func TestSubmitOrcamentoFicaRascunho(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.Tipo = TipoOrcamento

	pedido, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)
	assert.Equal(t, StatusRascunho, pedido.Status)
}

func TestSubmitSemItens(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.Itens = nil

	_, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.createCalls)
}

func TestSubmitCNPJInvalido(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.ClienteCNPJ = "123456780001"

	_, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.createCalls)
}

func TestSubmitItemInvalido(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.Itens[1].Quantidade = 0

	_, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.createCalls)
}

func TestSubmitCNPJAdicionalDuplicado(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.CNPJsAdicionais = []CNPJAdicionalRequest{
		{CNPJ: "98765432000188", Tipo: CNPJFinanceiro},
		{CNPJ: "98.765.432/0001-88"},
	}

	_, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSubmitNormalizaCNPJAdicional(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.CNPJsAdicionais = []CNPJAdicionalRequest{{CNPJ: "98765432000188", Selecionado: true}}

	pedido, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)
	require.Len(t, pedido.CNPJsAdicionais, 1)
	assert.Equal(t, "98.765.432/0001-88", pedido.CNPJsAdicionais[0].CNPJ)
	assert.Equal(t, CNPJComercial, pedido.CNPJsAdicionais[0].Tipo)
	assert.True(t, pedido.CNPJsAdicionais[0].Selecionado)
}

func TestSubmitLimpaCondicaoPagamento(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	req := validSubmit()
	req.TipoPagamento = PagamentoAntecipado
	req.CondicaoPagamento = "30/60/90"

	pedido, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)
	assert.Empty(t, pedido.CondicaoPagamento)

	req = validSubmit()
	req.TipoPagamento = PagamentoPrazo
	req.CondicaoPagamento = "30/60/90"

	pedido, err = svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)
	assert.Equal(t, "30/60/90", pedido.CondicaoPagamento)
}

func TestSubmitComChaveRepetida(t *testing.T) {
	repo := newMockRepo()
	idem := newMockIdem()
	svc := NewService(repo, nil, nil, nil, idem, nil, slog.Default())
	vendor := Actor{ID: 7, Role: "vendor"}

	_, err := svc.Submit(context.Background(), validSubmit(), vendor, "chave-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validSubmit(), vendor, "chave-1")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.Equal(t, 1, repo.createCalls)

	// a different key goes through
	_, err = svc.Submit(context.Background(), validSubmit(), vendor, "chave-2")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.createCalls)
}

func TestSubmitLiberaChaveQuandoCreateFalha(t *testing.T) {
	repo := &flakyRepo{mockRepo: newMockRepo(), failuresLeft: 1}
	idem := newMockIdem()
	svc := NewService(repo, nil, nil, nil, idem, nil, slog.Default())
	vendor := Actor{ID: 7, Role: "vendor"}

	_, err := svc.Submit(context.Background(), validSubmit(), vendor, "chave-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, httpx.ErrDuplicate)
	assert.Empty(t, repo.pedidos)
	assert.Len(t, idem.released, 1)

	// same key must be usable again after the failed attempt
	pedido, err := svc.Submit(context.Background(), validSubmit(), vendor, "chave-1")
	require.NoError(t, err)
	assert.Equal(t, StatusEnviado, pedido.Status)
	assert.Len(t, repo.pedidos, 1)
}

func TestSubmitSemChaveNaoGuarda(t *testing.T) {
	repo := newMockRepo()
	idem := newMockIdem()
	svc := NewService(repo, nil, nil, nil, idem, nil, slog.Default())
	vendor := Actor{ID: 7, Role: "vendor"}

	_, err := svc.Submit(context.Background(), validSubmit(), vendor, "")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validSubmit(), vendor, "")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.createCalls)
	assert.Empty(t, idem.claims)
}

func TestSubmitIncrementaMetricas(t *testing.T) {
	repo := newMockRepo()
	metrics := observability.NewMetrics()
	svc := NewService(repo, nil, nil, &mockNotifier{}, nil, metrics, slog.Default())

	req := validSubmit()
	req.ClienteEmail = "compras@ferragens.com.br"
	_, err := svc.Submit(context.Background(), req, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EmailsEnqueued))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PedidosCreated.WithLabelValues(TipoPedido, StatusEnviado)))
}

func TestAdvanceStatus(t *testing.T) {
	repo := newMockRepo()
	svc, notifier, auditor := newTestService(repo)

	pedido, err := svc.Submit(context.Background(), validSubmit(), Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	admin := Actor{ID: 1, Role: "admin"}

	updated, err := svc.AdvanceStatus(context.Background(), pedido.ID, StatusProcessado, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessado, updated.Status)

	updated, err = svc.AdvanceStatus(context.Background(), pedido.ID, StatusEncaminhado, admin)
	require.NoError(t, err)
	assert.Equal(t, StatusEncaminhado, updated.Status)

	assert.Len(t, notifier.calls, 3)
	assert.Len(t, auditor.entries, 3)
}

func TestAdvanceStatusTransicoesInvalidas(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)
	admin := Actor{ID: 1, Role: "admin"}

	// rascunho never advances through this operation
	quote := validSubmit()
	quote.Tipo = TipoOrcamento
	rascunho, err := svc.Submit(context.Background(), quote, Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), rascunho.ID, StatusProcessado, admin)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	pedido, err := svc.Submit(context.Background(), validSubmit(), Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	// skipping a step
	_, err = svc.AdvanceStatus(context.Background(), pedido.ID, StatusEncaminhado, admin)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	// repeating the current status
	_, err = svc.AdvanceStatus(context.Background(), pedido.ID, StatusEnviado, admin)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.AdvanceStatus(context.Background(), pedido.ID, StatusProcessado, admin)
	require.NoError(t, err)

	// moving backwards
	_, err = svc.AdvanceStatus(context.Background(), pedido.ID, StatusEnviado, admin)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestAdvanceStatusNaoEncontrado(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.AdvanceStatus(context.Background(), 999, StatusProcessado, Actor{ID: 1, Role: "admin"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestGetRestringeVendedor(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	pedido, err := svc.Submit(context.Background(), validSubmit(), Actor{ID: 7, Role: "vendor"}, "")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), pedido.ID, Actor{ID: 8, Role: "vendor"})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	got, err := svc.Get(context.Background(), pedido.ID, Actor{ID: 7, Role: "vendor"})
	require.NoError(t, err)
	assert.Equal(t, pedido.ID, got.ID)

	got, err = svc.Get(context.Background(), pedido.ID, Actor{ID: 1, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, pedido.ID, got.ID)
}

func TestGetResumo(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)
	vendor := Actor{ID: 7, Role: "vendor"}
	admin := Actor{ID: 1, Role: "admin"}

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), validSubmit(), vendor, "")
		require.NoError(t, err)
	}
	quote := validSubmit()
	quote.Tipo = TipoOrcamento
	_, err := svc.Submit(context.Background(), quote, vendor, "")
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), 1, StatusProcessado, admin)
	require.NoError(t, err)

	resumo, err := svc.GetResumo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resumo.Enviados)
	assert.Equal(t, int64(1), resumo.Processados)
	assert.Equal(t, int64(0), resumo.Encaminhados)
	assert.Equal(t, int64(1), resumo.Orcamentos)
}
