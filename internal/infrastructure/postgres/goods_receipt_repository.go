package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.GoodsReceiptRepository = (*GoodsReceiptRepo)(nil)

// GoodsReceiptRepo lectura de recepciones confirmadas (solo consulta; el
// proceso de recepción es externo).
type GoodsReceiptRepo struct {
	q Querier
}

// NewGoodsReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGoodsReceiptRepository(q Querier) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{q: q}
}

// GetByID carga la recepción con sus líneas; nil si no existe.
func (r *GoodsReceiptRepo) GetByID(companyID, id string) (*entity.GoodsReceipt, error) {
	ctx := context.Background()
	query := `
		SELECT id, company_id, number, staging_location_id, received_at
		FROM goods_receipts
		WHERE company_id = $1 AND id = $2`
	var gr entity.GoodsReceipt
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&gr.ID, &gr.CompanyID, &gr.Number, &gr.StagingLocationID, &gr.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goods receipt: %w", err)
	}

	linesQuery := `
		SELECT id, receipt_id, line_number, product_id, batch_number, quantity_received
		FROM goods_receipt_lines
		WHERE receipt_id = $1
		ORDER BY line_number`
	rows, err := r.q.Query(ctx, linesQuery, gr.ID)
	if err != nil {
		return nil, fmt.Errorf("load goods receipt lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.GoodsReceiptLine
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.LineNumber, &l.ProductID, &l.BatchNumber, &l.QuantityReceived); err != nil {
			return nil, fmt.Errorf("scan goods receipt line: %w", err)
		}
		gr.Lines = append(gr.Lines, &l)
	}
	return &gr, rows.Err()
}
