package pedidos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/pedidoflow/pedidoflow/internal/brdoc"
	"github.com/pedidoflow/pedidoflow/internal/observability"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

// ErrInvalidStatus rejects transitions outside the forward pipeline.
var ErrInvalidStatus = fmt.Errorf("transicao de status invalida: %w", httpx.ErrConflict)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   int64
	Role string
}

// Auditor records domain events. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, entry shared.AuditEntry)
}

// Notifier enqueues acknowledgement emails. Satisfied by jobs.Enqueuer.
type Notifier interface {
	PedidoStatusChanged(ctx context.Context, pedido *Pedido) error
}

// Idempotency guards duplicate submissions. Satisfied by
// shared.IdempotencyStore.
type Idempotency interface {
	Claim(ctx context.Context, scope, key, entityID string) (string, error)
	Release(ctx context.Context, scope, key string) error
}

const submitIdempotencyScope = "pedidos:submit"

// Service orchestrates the order lifecycle.
type Service struct {
	repo        Repository
	cache       *ResumoCache
	audit       Auditor
	notifier    Notifier
	idempotency Idempotency
	metrics     *observability.Metrics
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewService constructs a Service. Cache, audit, notifier, idempotency
// and metrics may be nil; the service degrades gracefully without them.
func NewService(
	repo Repository,
	cache *ResumoCache,
	audit Auditor,
	notifier Notifier,
	idempotency Idempotency,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		audit:       audit,
		notifier:    notifier,
		idempotency: idempotency,
		metrics:     metrics,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Submit validates, normalizes and persists a new order or quote.
// Quotes land in rascunho, orders in enviado. When idemKey is non-empty
// a repeated submission with the same key is rejected as a duplicate.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, actor Actor, idemKey string) (*Pedido, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	if !brdoc.IsValidCNPJ(req.ClienteCNPJ) {
		return nil, fmt.Errorf("%w: cnpj do cliente deve ter 14 digitos", httpx.ErrValidation)
	}

	items := make([]ItemPedido, 0, len(req.Itens))
	for _, candidate := range req.Itens {
		next, err := AddItem(items, ItemPedido{
			ProdutoCodigo: candidate.ProdutoCodigo,
			Descricao:     candidate.Descricao,
			Quantidade:    candidate.Quantidade,
			Desconto:      candidate.Desconto,
			PrecoUnitario: candidate.PrecoUnitario,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
		}
		items = next
	}

	extras, err := normalizeCNPJsAdicionais(req.CNPJsAdicionais)
	if err != nil {
		return nil, err
	}

	condicao := req.CondicaoPagamento
	if req.TipoPagamento != PagamentoPrazo {
		condicao = ""
	}

	status := StatusEnviado
	if req.Tipo == TipoOrcamento {
		status = StatusRascunho
	}

	claimed := false
	if idemKey != "" && s.idempotency != nil {
		if _, err := s.idempotency.Claim(ctx, submitIdempotencyScope, idemKey, strconv.FormatInt(actor.ID, 10)); err != nil {
			if errors.Is(err, shared.ErrIdempotencyReplay) {
				return nil, fmt.Errorf("%w: pedido ja submetido com esta chave", httpx.ErrDuplicate)
			}
			return nil, err
		}
		claimed = true
	}

	pedido := &Pedido{
		ClienteCNPJ:       brdoc.FormatCNPJ(req.ClienteCNPJ),
		ClienteRazao:      req.ClienteRazao,
		ClienteEndereco:   req.ClienteEndereco,
		ClienteEmail:      req.ClienteEmail,
		ClienteTelefone:   req.ClienteTelefone,
		Fornecedor:        req.Fornecedor,
		IPI:               req.IPI,
		Desconto:          req.Desconto,
		TipoPagamento:     req.TipoPagamento,
		CondicaoPagamento: condicao,
		Observacao:        req.Observacao,
		VendedorID:        actor.ID,
		Status:            status,
		Itens:             items,
		CNPJsAdicionais:   extras,
		Total:             OrderTotal(items),
	}

	if err := s.repo.Create(ctx, pedido); err != nil {
		if claimed {
			if relErr := s.idempotency.Release(ctx, submitIdempotencyScope, idemKey); relErr != nil {
				s.logger.Warn("idempotency key release failed",
					slog.String("key", idemKey),
					slog.Any("error", relErr),
				)
			}
		}
		return nil, err
	}

	s.recordAudit(ctx, actor, "pedido.submit", pedido.ID, map[string]any{
		"status": pedido.Status,
		"total":  pedido.Total,
		"itens":  len(pedido.Itens),
	})
	s.notifyStatus(ctx, pedido)
	s.invalidateResumo(ctx)
	if s.metrics != nil {
		s.metrics.PedidosCreated.WithLabelValues(req.Tipo, pedido.Status).Inc()
	}

	return pedido, nil
}

// AdvanceStatus moves an order one step forward in the pipeline.
// Only enviado→processado and processado→encaminhado are permitted.
func (s *Service) AdvanceStatus(ctx context.Context, id int64, target string, actor Actor) (*Pedido, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}

	if !CanTransition(current.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, current.Status, target)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}

	s.recordAudit(ctx, actor, "pedido.status", id, map[string]any{
		"from": current.Status,
		"to":   target,
	})
	s.notifyStatus(ctx, updated)
	s.invalidateResumo(ctx)
	if s.metrics != nil {
		s.metrics.StatusAdvanced.WithLabelValues(target).Inc()
	}

	return updated, nil
}

// Get loads an order. Vendors may only read their own.
func (s *Service) Get(ctx context.Context, id int64, actor Actor) (*Pedido, error) {
	pedido, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if actor.Role != users.RoleAdmin && pedido.VendedorID != actor.ID {
		return nil, httpx.ErrForbidden
	}
	return pedido, nil
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Pedido, error) {
	return s.repo.List(ctx, filter)
}

// ListByVendedor returns one vendor's orders, newest first.
func (s *Service) ListByVendedor(ctx context.Context, vendedorID int64, filter ListFilter) ([]Pedido, error) {
	filter.VendedorID = vendedorID
	return s.repo.List(ctx, filter)
}

// GetResumo returns per-status counts for the admin dashboard. Counts
// are queried concurrently and cached for a short window.
func (s *Service) GetResumo(ctx context.Context) (*Resumo, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("resumo cache read failed", slog.Any("error", err))
		} else if cached != nil {
			if s.metrics != nil {
				s.metrics.ResumoCacheHits.Inc()
			}
			return cached, nil
		}
	}

	var resumo Resumo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resumo.Enviados, err = s.repo.CountByStatus(gctx, StatusEnviado)
		return err
	})
	g.Go(func() (err error) {
		resumo.Processados, err = s.repo.CountByStatus(gctx, StatusProcessado)
		return err
	})
	g.Go(func() (err error) {
		resumo.Encaminhados, err = s.repo.CountByStatus(gctx, StatusEncaminhado)
		return err
	})
	g.Go(func() (err error) {
		resumo.Orcamentos, err = s.repo.CountByStatus(gctx, StatusRascunho)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &resumo); err != nil {
			s.logger.Warn("resumo cache write failed", slog.Any("error", err))
		}
	}
	return &resumo, nil
}

func normalizeCNPJsAdicionais(reqs []CNPJAdicionalRequest) ([]CNPJAdicional, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(reqs))
	out := make([]CNPJAdicional, 0, len(reqs))
	for _, req := range reqs {
		if !brdoc.IsValidCNPJ(req.CNPJ) {
			return nil, fmt.Errorf("%w: cnpj adicional %q deve ter 14 digitos", httpx.ErrValidation, req.CNPJ)
		}
		digits := brdoc.CleanCNPJ(req.CNPJ)
		if _, dup := seen[digits]; dup {
			return nil, fmt.Errorf("%w: cnpj adicional duplicado %s", httpx.ErrValidation, brdoc.FormatCNPJ(digits))
		}
		seen[digits] = struct{}{}

		tipo := req.Tipo
		if tipo == "" {
			tipo = CNPJComercial
		}
		out = append(out, CNPJAdicional{
			CNPJ:        brdoc.FormatCNPJ(digits),
			RazaoSocial: req.RazaoSocial,
			Endereco:    req.Endereco,
			Email:       req.Email,
			Telefone:    req.Telefone,
			Tipo:        tipo,
			Observacao:  req.Observacao,
			Selecionado: req.Selecionado,
		})
	}
	return out, nil
}

func (s *Service) recordAudit(ctx context.Context, actor Actor, action string, pedidoID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  strconv.FormatInt(actor.ID, 10),
		Action:   action,
		Entity:   "pedido",
		EntityID: strconv.FormatInt(pedidoID, 10),
		Metadata: meta,
	})
}

func (s *Service) notifyStatus(ctx context.Context, pedido *Pedido) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PedidoStatusChanged(ctx, pedido); err != nil {
		s.logger.Warn("status notification enqueue failed",
			slog.Int64("pedido_id", pedido.ID),
			slog.Any("error", err),
		)
		return
	}
	if s.metrics != nil {
		s.metrics.EmailsEnqueued.Inc()
	}
}

func (s *Service) invalidateResumo(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("resumo cache invalidation failed", slog.Any("error", err))
	}
}
