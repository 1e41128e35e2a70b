package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persistencia del agregado Transfer sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, business_id, transfer_number, from_location_id, to_location_id, transfer_date, status,
	stock_deducted, notes, checker_notes, version, created_by, created_at, updated_at,
	submitted_by, submitted_at, checked_by, checked_at, sent_by, sent_at, arrived_by, arrived_at,
	completed_by, completed_at, cancelled_by, cancelled_at, cancellation_reason`

// Create inserta cabecera e ítems.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.BusinessID, t.TransferNumber, t.FromLocationID, t.ToLocationID, t.TransferDate, string(t.Status),
		t.StockDeducted, t.Notes, t.CheckerNotes, t.Version, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
		nullIfEmpty(t.SubmittedBy), t.SubmittedAt, nullIfEmpty(t.CheckedBy), t.CheckedAt,
		nullIfEmpty(t.SentBy), t.SentAt, nullIfEmpty(t.ArrivedBy), t.ArrivedAt,
		nullIfEmpty(t.CompletedBy), t.CompletedAt, nullIfEmpty(t.CancelledBy), t.CancelledAt, t.CancellationReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.TransferNumber)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return r.insertItems(ctx, t)
}

func (r *TransferRepo) insertItems(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfer_items (id, transfer_id, product_id, variation_id, quantity_requested,
			quantity_received, verified, verified_by, verified_at, has_discrepancy, line_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i, it := range t.Items {
		_, err := r.q.Exec(ctx, query,
			it.ID, t.ID, it.ProductID, it.VariationID, it.QuantityRequested,
			it.QuantityReceived, it.Verified, nullIfEmpty(it.VerifiedBy), it.VerifiedAt, it.HasDiscrepancy, i+1,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el agregado sin bloquear.
func (r *TransferRepo) GetByID(ctx context.Context, businessID, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE business_id = $1 AND id = $2`, businessID, id)
}

// GetForUpdate obtiene el agregado bloqueando la cabecera: las transiciones sobre el mismo traslado se serializan.
func (r *TransferRepo) GetForUpdate(ctx context.Context, businessID, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE business_id = $1 AND id = $2 FOR UPDATE`, businessID, id)
}

func (r *TransferRepo) get(ctx context.Context, query, businessID, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, businessID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	items, err := r.items(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *TransferRepo) items(ctx context.Context, transferID string) ([]entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, product_id, variation_id, quantity_requested, quantity_received,
			verified, verified_by, verified_at, has_discrepancy
		FROM transfer_items WHERE transfer_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	var list []entity.TransferItem
	for rows.Next() {
		var (
			it         entity.TransferItem
			received   decimal.NullDecimal
			verifiedBy *string
		)
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.VariationID, &it.QuantityRequested, &received,
			&it.Verified, &verifiedBy, &it.VerifiedAt, &it.HasDiscrepancy); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		if received.Valid {
			q := received.Decimal
			it.QuantityReceived = &q
		}
		it.VerifiedBy = emptyIfNull(verifiedBy)
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var (
		t                                                      entity.Transfer
		status                                                 string
		submittedBy, checkedBy, sentBy, arrivedBy, completedBy *string
		cancelledBy                                            *string
		submittedAt, checkedAt, sentAt, arrivedAt, completedAt *time.Time
		cancelledAt                                            *time.Time
	)
	err := row.Scan(
		&t.ID, &t.BusinessID, &t.TransferNumber, &t.FromLocationID, &t.ToLocationID, &t.TransferDate, &status,
		&t.StockDeducted, &t.Notes, &t.CheckerNotes, &t.Version, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&submittedBy, &submittedAt, &checkedBy, &checkedAt, &sentBy, &sentAt, &arrivedBy, &arrivedAt,
		&completedBy, &completedAt, &cancelledBy, &cancelledAt, &t.CancellationReason,
	)
	if err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.SubmittedBy, t.SubmittedAt = emptyIfNull(submittedBy), submittedAt
	t.CheckedBy, t.CheckedAt = emptyIfNull(checkedBy), checkedAt
	t.SentBy, t.SentAt = emptyIfNull(sentBy), sentAt
	t.ArrivedBy, t.ArrivedAt = emptyIfNull(arrivedBy), arrivedAt
	t.CompletedBy, t.CompletedAt = emptyIfNull(completedBy), completedAt
	t.CancelledBy, t.CancelledAt = emptyIfNull(cancelledBy), cancelledAt
	return &t, nil
}

// Update persiste la cabecera condicionada a la versión leída y la incrementa.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer, expectedVersion int) error {
	query := `
		UPDATE transfers SET
			transfer_date = $3, status = $4, stock_deducted = $5, notes = $6, checker_notes = $7,
			version = version + 1, updated_at = $8,
			submitted_by = $9, submitted_at = $10, checked_by = $11, checked_at = $12,
			sent_by = $13, sent_at = $14, arrived_by = $15, arrived_at = $16,
			completed_by = $17, completed_at = $18, cancelled_by = $19, cancelled_at = $20,
			cancellation_reason = $21
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, expectedVersion, t.TransferDate, string(t.Status), t.StockDeducted, t.Notes, t.CheckerNotes, t.UpdatedAt,
		nullIfEmpty(t.SubmittedBy), t.SubmittedAt, nullIfEmpty(t.CheckedBy), t.CheckedAt,
		nullIfEmpty(t.SentBy), t.SentAt, nullIfEmpty(t.ArrivedBy), t.ArrivedAt,
		nullIfEmpty(t.CompletedBy), t.CompletedAt, nullIfEmpty(t.CancelledBy), t.CancelledAt,
		t.CancellationReason,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: el traslado %s cambió desde la versión %d", domain.ErrInvalidTransition, t.TransferNumber, expectedVersion)
	}
	return nil
}

// ReplaceItems reemplaza las líneas de un borrador.
func (r *TransferRepo) ReplaceItems(ctx context.Context, t *entity.Transfer) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transfer_items WHERE transfer_id = $1`, t.ID); err != nil {
		return fmt.Errorf("delete transfer items: %w", err)
	}
	return r.insertItems(ctx, t)
}

// UpdateItem persiste la verificación de una línea.
func (r *TransferRepo) UpdateItem(ctx context.Context, it *entity.TransferItem) error {
	query := `
		UPDATE transfer_items SET quantity_received = $3, verified = $4, verified_by = $5, verified_at = $6,
			has_discrepancy = $7
		WHERE id = $1 AND transfer_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		it.ID, it.TransferID, it.QuantityReceived, it.Verified, nullIfEmpty(it.VerifiedBy), it.VerifiedAt, it.HasDiscrepancy,
	)
	if err != nil {
		return fmt.Errorf("update transfer item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, it.ID)
	}
	return nil
}

// List lista traslados (con ítems) filtrados y paginados, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	where := []string{"business_id = $1"}
	args := []any{f.BusinessID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.FromLocationID != "" {
		add("from_location_id = $%d", f.FromLocationID)
	}
	if f.ToLocationID != "" {
		add("to_location_id = $%d", f.ToLocationID)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE %s ORDER BY created_at DESC, transfer_number DESC LIMIT $%d OFFSET $%d`,
		transferColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	// Los ítems se leen después de cerrar el cursor: la conexión no admite dos consultas abiertas.
	for _, t := range list {
		if t.Items, err = r.items(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// NextNumber reserva el siguiente consecutivo (UPSERT atómico por negocio y año).
func (r *TransferRepo) NextNumber(ctx context.Context, businessID string, year int) (int, error) {
	query := `
		INSERT INTO transfer_sequences (business_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (business_id, year) DO UPDATE SET last_value = transfer_sequences.last_value + 1
		RETURNING last_value`
	var seq int
	if err := r.q.QueryRow(ctx, query, businessID, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next transfer number: %w", err)
	}
	return seq, nil
}
