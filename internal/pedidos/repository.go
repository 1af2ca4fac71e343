package pedidos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedidoflow/pedidoflow/internal/platform/db"
	"github.com/pedidoflow/pedidoflow/internal/shared"
)

// Repository abstracts persistence for orders and quotes.
type Repository interface {
	Create(ctx context.Context, pedido *Pedido) error
	Get(ctx context.Context, id int64) (*Pedido, error)
	List(ctx context.Context, filter ListFilter) ([]Pedido, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Pedido, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create persists the order together with its items and additional
// CNPJs in a single transaction.
func (r *PGRepository) Create(ctx context.Context, pedido *Pedido) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertPedido = `
			INSERT INTO pedidos (
				cliente_cnpj, cliente_razao_social, cliente_endereco,
				cliente_email, cliente_telefone, fornecedor, ipi, desconto,
				tipo_pagamento, condicao_pagamento, observacao,
				vendedor_id, status, total
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, data, created_at, updated_at`

		err := tx.QueryRow(ctx, insertPedido,
			pedido.ClienteCNPJ,
			pedido.ClienteRazao,
			pedido.ClienteEndereco,
			pedido.ClienteEmail,
			pedido.ClienteTelefone,
			pedido.Fornecedor,
			pedido.IPI,
			pedido.Desconto,
			nullString(pedido.TipoPagamento),
			nullString(pedido.CondicaoPagamento),
			pedido.Observacao,
			pedido.VendedorID,
			pedido.Status,
			pedido.Total,
		).Scan(&pedido.ID, &pedido.Data, &pedido.CreatedAt, &pedido.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert pedido: %w", err)
		}

		const insertItem = `
			INSERT INTO pedido_itens (
				id, pedido_id, produto_codigo, descricao,
				quantidade, desconto, preco_unitario, posicao
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		for _, item := range pedido.Itens {
			if _, err := tx.Exec(ctx, insertItem,
				item.ID, pedido.ID, item.ProdutoCodigo, item.Descricao,
				item.Quantidade, item.Desconto, item.PrecoUnitario, item.Posicao,
			); err != nil {
				return fmt.Errorf("insert item %s: %w", item.ProdutoCodigo, err)
			}
		}

		const insertCNPJ = `
			INSERT INTO pedido_cnpjs (
				pedido_id, cnpj, razao_social, endereco, email,
				telefone, tipo, observacao, selecionado
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		for _, extra := range pedido.CNPJsAdicionais {
			if _, err := tx.Exec(ctx, insertCNPJ,
				pedido.ID, extra.CNPJ, extra.RazaoSocial, extra.Endereco,
				extra.Email, extra.Telefone, extra.Tipo, extra.Observacao,
				extra.Selecionado,
			); err != nil {
				return fmt.Errorf("insert cnpj adicional %s: %w", extra.CNPJ, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pedidos: create: %w", err)
	}
	return nil
}

// Get loads one order with items and additional CNPJs.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Pedido, error) {
	const query = `
		SELECT p.id, p.data, p.cliente_cnpj, p.cliente_razao_social,
		       p.cliente_endereco, p.cliente_email, p.cliente_telefone,
		       p.fornecedor, p.ipi, p.desconto,
		       COALESCE(p.tipo_pagamento, ''), COALESCE(p.condicao_pagamento, ''),
		       p.observacao, p.vendedor_id, COALESCE(u.nome, ''),
		       p.status, p.total, p.created_at, p.updated_at
		FROM pedidos p
		LEFT JOIN users u ON u.id = p.vendedor_id
		WHERE p.id = $1`

	var p Pedido
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Data, &p.ClienteCNPJ, &p.ClienteRazao,
		&p.ClienteEndereco, &p.ClienteEmail, &p.ClienteTelefone,
		&p.Fornecedor, &p.IPI, &p.Desconto,
		&p.TipoPagamento, &p.CondicaoPagamento,
		&p.Observacao, &p.VendedorID, &p.VendedorNome,
		&p.Status, &p.Total, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pedidos: get %d: %w", id, err)
	}

	if p.Itens, err = r.loadItens(ctx, id); err != nil {
		return nil, err
	}
	if p.CNPJsAdicionais, err = r.loadCNPJs(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns orders matching the filter, newest first. Items are
// loaded per order; list pages stay small enough for that.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Pedido, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT p.id, p.data, p.cliente_cnpj, p.cliente_razao_social,
		       p.cliente_endereco, p.cliente_email, p.cliente_telefone,
		       p.fornecedor, p.ipi, p.desconto,
		       COALESCE(p.tipo_pagamento, ''), COALESCE(p.condicao_pagamento, ''),
		       p.observacao, p.vendedor_id, COALESCE(u.nome, ''),
		       p.status, p.total, p.created_at, p.updated_at
		FROM pedidos p
		LEFT JOIN users u ON u.id = p.vendedor_id
		WHERE 1=1`)

	args := make([]any, 0, 6)
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&query, " AND p.status = $%d", len(args))
	}
	if filter.VendedorID > 0 {
		args = append(args, filter.VendedorID)
		fmt.Fprintf(&query, " AND p.vendedor_id = $%d", len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		fmt.Fprintf(&query, " AND p.data >= $%d", len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		fmt.Fprintf(&query, " AND p.data <= $%d", len(args))
	}

	query.WriteString(" ORDER BY p.data DESC, p.id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	fmt.Fprintf(&query, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pedidos: list: %w", err)
	}
	defer rows.Close()

	var out []Pedido
	for rows.Next() {
		var p Pedido
		if err := rows.Scan(
			&p.ID, &p.Data, &p.ClienteCNPJ, &p.ClienteRazao,
			&p.ClienteEndereco, &p.ClienteEmail, &p.ClienteTelefone,
			&p.Fornecedor, &p.IPI, &p.Desconto,
			&p.TipoPagamento, &p.CondicaoPagamento,
			&p.Observacao, &p.VendedorID, &p.VendedorNome,
			&p.Status, &p.Total, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pedidos: scan list row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pedidos: list rows: %w", err)
	}

	for i := range out {
		if out[i].Itens, err = r.loadItens(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus persists the new status and returns the updated record.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string) (*Pedido, error) {
	const update = `
		UPDATE pedidos
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, update, id, status)
	if err != nil {
		return nil, fmt.Errorf("pedidos: update status %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// CountByStatus counts orders currently in the given status.
func (r *PGRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	const query = `SELECT COUNT(*) FROM pedidos WHERE status = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("pedidos: count by status %s: %w", status, err)
	}
	return count, nil
}

func (r *PGRepository) loadItens(ctx context.Context, pedidoID int64) ([]ItemPedido, error) {
	const query = `
		SELECT id, produto_codigo, descricao, quantidade, desconto,
		       preco_unitario, posicao
		FROM pedido_itens
		WHERE pedido_id = $1
		ORDER BY posicao`

	rows, err := r.pool.Query(ctx, query, pedidoID)
	if err != nil {
		return nil, fmt.Errorf("pedidos: load itens %d: %w", pedidoID, err)
	}
	defer rows.Close()

	var itens []ItemPedido
	for rows.Next() {
		var it ItemPedido
		if err := rows.Scan(
			&it.ID, &it.ProdutoCodigo, &it.Descricao, &it.Quantidade,
			&it.Desconto, &it.PrecoUnitario, &it.Posicao,
		); err != nil {
			return nil, fmt.Errorf("pedidos: scan item: %w", err)
		}
		itens = append(itens, it)
	}
	return itens, rows.Err()
}

func (r *PGRepository) loadCNPJs(ctx context.Context, pedidoID int64) ([]CNPJAdicional, error) {
	const query = `
		SELECT cnpj, razao_social, endereco, email, telefone,
		       tipo, observacao, selecionado
		FROM pedido_cnpjs
		WHERE pedido_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, pedidoID)
	if err != nil {
		return nil, fmt.Errorf("pedidos: load cnpjs %d: %w", pedidoID, err)
	}
	defer rows.Close()

	var extras []CNPJAdicional
	for rows.Next() {
		var c CNPJAdicional
		if err := rows.Scan(
			&c.CNPJ, &c.RazaoSocial, &c.Endereco, &c.Email,
			&c.Telefone, &c.Tipo, &c.Observacao, &c.Selecionado,
		); err != nil {
			return nil, fmt.Errorf("pedidos: scan cnpj adicional: %w", err)
		}
		extras = append(extras, c)
	}
	return extras, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
