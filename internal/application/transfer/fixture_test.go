package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/auth"
	invapp "github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	workflow "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// fixture negocio con dos ubicaciones, dos variaciones y un usuario por rol.
type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *transfer.Service

	businessID string
	from, to   string
	varA, varB string
	productID  string

	keeper     transfer.Actor // bodeguero
	keeper2    transfer.Actor // bodeguero
	supervisor transfer.Actor
	seller     transfer.Actor // vendedor
	admin      transfer.Actor
	admin2     transfer.Actor
}

type fixtureOption func(*transfer.Deps)

func withAudit(repo repository.AuditRepository) fixtureOption {
	return func(d *transfer.Deps) { d.Audit = repo }
}

func withLogger(log *logger.Logger) fixtureOption {
	return func(d *transfer.Deps) { d.Logger = log }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		ctx:        context.Background(),
		store:      memory.New(),
		businessID: uuid.NewString(),
		from:       uuid.NewString(),
		to:         uuid.NewString(),
		varA:       uuid.NewString(),
		varB:       uuid.NewString(),
		productID:  uuid.NewString(),
	}
	now := time.Now()
	f.store.AddBusiness(entity.Business{ID: f.businessID, Name: "Tienda Centro", Status: "active"},
		entity.BusinessModule{ID: uuid.NewString(), BusinessID: f.businessID, ModuleName: entity.ModuleInventory, IsActive: true, ActivatedAt: now})
	f.store.AddLocation(entity.Location{ID: f.from, BusinessID: f.businessID, Name: "Bodega principal", IsActive: true})
	f.store.AddLocation(entity.Location{ID: f.to, BusinessID: f.businessID, Name: "Sucursal norte", IsActive: true})
	f.store.AddVariation(entity.ProductVariation{ID: f.varA, BusinessID: f.businessID, ProductID: f.productID, SKU: "CAM-M", Name: "Camiseta M", Unit: "und"})
	f.store.AddVariation(entity.ProductVariation{ID: f.varB, BusinessID: f.businessID, ProductID: f.productID, SKU: "CAM-L", Name: "Camiseta L", Unit: "und"})

	f.keeper = f.addUser(entity.RoleBodeguero)
	f.keeper2 = f.addUser(entity.RoleBodeguero)
	f.supervisor = f.addUser(entity.RoleSupervisor)
	f.seller = f.addUser(entity.RoleVendedor)
	f.admin = f.addUser(entity.RoleAdmin)
	f.admin2 = f.addUser(entity.RoleAdmin)

	deps := transfer.Deps{
		TxRunner:   f.store,
		Transfers:  f.store.Transfers(),
		Locations:  f.store.Locations(),
		Variations: f.store.Variations(),
		Audit:      f.store.Audit(),
		Authorizer: auth.NewRolePermissionAuthorizer(f.store.Users()),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = transfer.NewService(deps)
	return f
}

func (f *fixture) addUser(role string) transfer.Actor {
	id := uuid.NewString()
	f.store.AddUser(entity.User{ID: id, BusinessID: f.businessID, Email: id + "@tienda.co", Role: role, Status: "active"})
	return transfer.Actor{UserID: id, BusinessID: f.businessID}
}

// stock registra saldo inicial en una ubicación.
func (f *fixture) stock(t *testing.T, locationID, variationID string, qty int64) {
	t.Helper()
	f.stockQty(t, locationID, variationID, decimal.NewFromInt(qty))
}

func (f *fixture) stockQty(t *testing.T, locationID, variationID string, qty decimal.Decimal) {
	t.Helper()
	uc := invapp.NewRegisterMovementUseCase(f.store, f.store.Locations(), f.store.Variations(), nil)
	_, err := uc.RegisterMovement(f.ctx, invapp.MovementInput{
		BusinessID:  f.businessID,
		UserID:      f.admin.UserID,
		LocationID:  locationID,
		VariationID: variationID,
		Type:        entity.LedgerOpeningStock,
		Quantity:    qty,
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, locationID, variationID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Ledger().GetBalance(f.ctx, f.businessID, locationID, variationID)
	require.NoError(t, err)
	if b == nil {
		return decimal.Zero
	}
	return b.Quantity
}

func (f *fixture) requireBalance(t *testing.T, want int64, locationID, variationID string) {
	t.Helper()
	got := f.balance(t, locationID, variationID)
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "saldo esperado %d, obtenido %s", want, got.String())
}

func item(variationID string, qty int64) workflow.ItemInput {
	return workflow.ItemInput{VariationID: variationID, Quantity: decimal.NewFromInt(qty)}
}

// create crea un borrador desde el origen al destino del fixture.
func (f *fixture) create(t *testing.T, items ...workflow.ItemInput) *entity.Transfer {
	t.Helper()
	tr, err := f.svc.Create(f.ctx, f.keeper, transfer.CreateInput{
		FromLocationID: f.from,
		ToLocationID:   f.to,
		Items:          items,
	})
	require.NoError(t, err)
	return tr
}

// checked lleva un traslado nuevo hasta checked.
func (f *fixture) checked(t *testing.T, items ...workflow.ItemInput) *entity.Transfer {
	t.Helper()
	tr := f.create(t, items...)
	_, err := f.svc.Submit(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	tr, err = f.svc.Approve(f.ctx, f.supervisor, tr.ID)
	require.NoError(t, err)
	return tr
}

// verifying lleva un traslado nuevo hasta verifying (stock ya descontado).
func (f *fixture) verifying(t *testing.T, items ...workflow.ItemInput) *entity.Transfer {
	t.Helper()
	tr := f.checked(t, items...)
	_, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkArrived(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	tr, err = f.svc.StartVerification(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	return tr
}

func (f *fixture) transferEntries(t *testing.T, transferID string) []*entity.StockLedgerEntry {
	t.Helper()
	entries, err := f.store.Ledger().ListByReference(f.ctx, f.businessID, entity.ReferenceTransfer, transferID)
	require.NoError(t, err)
	return entries
}
