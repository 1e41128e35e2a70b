package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/inventory"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de stock fuera del flujo de traslados
// (saldo inicial y ajustes) por la misma ruta de asientos: bloqueo del saldo, validación y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	locationRepo  repository.LocationRepository
	variationRepo repository.VariationRepository
	cache         BalanceCache
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	locationRepo repository.LocationRepository,
	variationRepo repository.VariationRepository,
	cache BalanceCache,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		locationRepo:  locationRepo,
		variationRepo: variationRepo,
		cache:         orNoCache(cache),
	}
}

// MovementInput entrada para registrar un movimiento.
// opening_stock: Quantity > 0. adjustment: Quantity con signo, distinta de cero.
type MovementInput struct {
	BusinessID  string
	UserID      string
	LocationID  string
	VariationID string
	Type        entity.LedgerTransactionType
	Quantity    decimal.Decimal
	Note        string
}

// RegisterMovement valida la entrada, aplica el asiento dentro de una transacción y devuelve el asiento creado.
// Un ajuste negativo que dejaría el saldo en negativo falla con domain.ErrInsufficientStock.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.StockLedgerEntry, error) {
	switch input.Type {
	case entity.LedgerOpeningStock:
		if !input.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: el saldo inicial debe ser positivo", domain.ErrInvalidInput)
		}
	case entity.LedgerAdjustment:
		if input.Quantity.IsZero() {
			return nil, fmt.Errorf("%w: el ajuste no puede ser cero", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q no admitido (opening_stock, adjustment)", domain.ErrInvalidInput, input.Type)
	}
	if err := inventory.ValidateScale(input.Quantity); err != nil {
		return nil, err
	}
	if input.LocationID == "" || input.VariationID == "" {
		return nil, fmt.Errorf("%w: ubicación y variación son obligatorias", domain.ErrInvalidInput)
	}

	// Validar que ubicación y variación existan y sean del negocio
	loc, err := uc.locationRepo.GetByID(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.BusinessID != input.BusinessID {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, input.LocationID)
	}
	variation, err := uc.variationRepo.GetByID(ctx, input.VariationID)
	if err != nil {
		return nil, err
	}
	if variation == nil || variation.BusinessID != input.BusinessID {
		return nil, fmt.Errorf("%w: variación %s", domain.ErrNotFound, input.VariationID)
	}

	refType := entity.ReferenceAdjustment
	if input.Type == entity.LedgerOpeningStock {
		refType = entity.ReferenceOpeningStock
	}
	ref := PostRef{
		BusinessID:    input.BusinessID,
		ActorID:       input.UserID,
		ReferenceType: refType,
		ReferenceID:   uuid.New().String(),
	}
	posting := inventory.Posting{
		LocationID:  input.LocationID,
		VariationID: input.VariationID,
		Type:        input.Type,
		Delta:       input.Quantity,
		Note:        input.Note,
	}

	var entries []*entity.StockLedgerEntry
	err = uc.txRunner.Run(ctx, func(ledgerRepo repository.StockLedgerRepository) error {
		var err error
		entries, err = Post(ctx, ledgerRepo, ref, []inventory.Posting{posting}, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Invalidate(ctx, input.BusinessID, PairsOf(entries)...)
	return entries[0], nil
}
