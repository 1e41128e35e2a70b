// Package memory implementa los puertos de persistencia en memoria. Las transacciones se serializan
// con un mutex y se revierten restaurando una copia del estado transaccional, de modo que una
// transición fallida no deja asientos ni cambios de estado parciales.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ transfer.TxRunner  = (*Store)(nil)

	_ repository.UserRepository        = (*UserRepo)(nil)
	_ repository.BusinessRepository    = (*BusinessRepo)(nil)
	_ repository.LocationRepository    = (*LocationRepo)(nil)
	_ repository.VariationRepository   = (*VariationRepo)(nil)
	_ repository.TransferRepository    = (*TransferRepo)(nil)
	_ repository.StockLedgerRepository = (*LedgerRepo)(nil)
	_ repository.AuditRepository       = (*AuditRepo)(nil)
)

// txState tablas que participan en transacciones.
type txState struct {
	transfers map[string]*entity.Transfer
	sequences map[string]int
	balances  map[string]*entity.StockBalance
	entries   []*entity.StockLedgerEntry
}

func (s txState) clone() txState {
	c := txState{
		transfers: make(map[string]*entity.Transfer, len(s.transfers)),
		sequences: maps.Clone(s.sequences),
		balances:  make(map[string]*entity.StockBalance, len(s.balances)),
		entries:   append([]*entity.StockLedgerEntry(nil), s.entries...),
	}
	for k, t := range s.transfers {
		c.transfers[k] = t.Clone()
	}
	for k, b := range s.balances {
		v := *b
		c.balances[k] = &v
	}
	return c
}

// Store almacenamiento en memoria para desarrollo y pruebas.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	businesses map[string]*entity.Business
	modules    []entity.BusinessModule
	users      map[string]*entity.User
	locations  map[string]*entity.Location
	variations map[string]*entity.ProductVariation
	audits     []*entity.AuditEntry
	tx         txState
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		businesses: map[string]*entity.Business{},
		users:      map[string]*entity.User{},
		locations:  map[string]*entity.Location{},
		variations: map[string]*entity.ProductVariation{},
		tx: txState{
			transfers: map[string]*entity.Transfer{},
			sequences: map[string]int{},
			balances:  map[string]*entity.StockBalance{},
		},
	}
}

// Run ejecuta fn con el libro de stock dentro de una transacción serializada.
func (s *Store) Run(ctx context.Context, fn func(ledgerRepo repository.StockLedgerRepository) error) error {
	return s.inTx(ctx, func() error { return fn(s.Ledger()) })
}

// RunTransfer ejecuta fn con traslados y libro de stock dentro de una transacción serializada.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.TransferRepository,
	ledgerRepo repository.StockLedgerRepository,
) error) error {
	return s.inTx(ctx, func() error { return fn(s.Transfers(), s.Ledger()) })
}

func (s *Store) inTx(ctx context.Context, fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.RLock()
	saved := s.tx.clone()
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.tx = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Businesses repositorio de negocios.
func (s *Store) Businesses() *BusinessRepo { return &BusinessRepo{s: s} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Variations repositorio de variaciones.
func (s *Store) Variations() *VariationRepo { return &VariationRepo{s: s} }

// Transfers repositorio de traslados.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s: s} }

// Ledger repositorio del libro de stock.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Audit repositorio de auditoría.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// AddBusiness registra un negocio con sus módulos.
func (s *Store) AddBusiness(b entity.Business, modules ...entity.BusinessModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses[b.ID] = &b
	s.modules = append(s.modules, modules...)
}

// AddVariation registra una variación del catálogo.
func (s *Store) AddVariation(v entity.ProductVariation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variations[v.ID] = &v
}

// ──── Usuarios y negocios ────────────────────────────────────────────────────

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email %s", domain.ErrDuplicate, user.Email)
		}
	}
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// BusinessRepo negocios en memoria.
type BusinessRepo struct{ s *Store }

func (r *BusinessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *BusinessRepo) HasActiveModule(_ context.Context, businessID, moduleName string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	for _, m := range r.s.modules {
		if m.BusinessID == businessID && m.ModuleName == moduleName && m.IsUsable(now) {
			return true, nil
		}
	}
	return false, nil
}

// ──── Catálogo ───────────────────────────────────────────────────────────────

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if l.BusinessID == location.BusinessID && l.Name == location.Name {
			return fmt.Errorf("%w: ubicación %s", domain.ErrDuplicate, location.Name)
		}
	}
	c := *location
	r.s.locations[location.ID] = &c
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *LocationRepo) Update(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[location.ID]; !ok {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, location.ID)
	}
	c := *location
	r.s.locations[location.ID] = &c
	return nil
}

func (r *LocationRepo) ListByBusiness(_ context.Context, businessID string, limit, offset int) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Location
	for _, l := range r.s.locations {
		if l.BusinessID == businessID {
			c := *l
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// VariationRepo variaciones en memoria.
type VariationRepo struct{ s *Store }

func (r *VariationRepo) GetByID(_ context.Context, id string) (*entity.ProductVariation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.variations[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

// ──── Traslados ──────────────────────────────────────────────────────────────

// TransferRepo traslados en memoria.
type TransferRepo struct{ s *Store }

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tx.transfers {
		if existing.BusinessID == t.BusinessID && existing.TransferNumber == t.TransferNumber {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.TransferNumber)
		}
	}
	r.s.tx.transfers[t.ID] = t.Clone()
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, businessID, id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tx.transfers[id]
	if !ok || t.BusinessID != businessID {
		return nil, nil
	}
	return t.Clone(), nil
}

// GetForUpdate equivale a GetByID: el bloqueo lo da la serialización de transacciones.
func (r *TransferRepo) GetForUpdate(ctx context.Context, businessID, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, businessID, id)
}

func (r *TransferRepo) Update(_ context.Context, t *entity.Transfer, expectedVersion int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tx.transfers[t.ID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: el traslado %s cambió (versión %d, esperada %d)",
			domain.ErrInvalidTransition, t.TransferNumber, stored.Version, expectedVersion)
	}
	c := t.Clone()
	c.Items = stored.Items
	c.Version = expectedVersion + 1
	r.s.tx.transfers[t.ID] = c
	return nil
}

func (r *TransferRepo) ReplaceItems(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tx.transfers[t.ID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	stored.Items = t.Clone().Items
	return nil
}

func (r *TransferRepo) UpdateItem(_ context.Context, item *entity.TransferItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tx.transfers[item.TransferID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, item.TransferID)
	}
	it := stored.Item(item.ID)
	if it == nil {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	*it = *item
	if item.QuantityReceived != nil {
		q := *item.QuantityReceived
		it.QuantityReceived = &q
	}
	if item.VerifiedAt != nil {
		v := *item.VerifiedAt
		it.VerifiedAt = &v
	}
	return nil
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Transfer
	for _, t := range r.s.tx.transfers {
		if t.BusinessID != f.BusinessID ||
			(f.Status != "" && t.Status != f.Status) ||
			(f.FromLocationID != "" && t.FromLocationID != f.FromLocationID) ||
			(f.ToLocationID != "" && t.ToLocationID != f.ToLocationID) {
			continue
		}
		list = append(list, t.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].TransferNumber > list[j].TransferNumber
	})
	return paginate(list, f.Limit, f.Offset), nil
}

func (r *TransferRepo) NextNumber(_ context.Context, businessID string, year int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := fmt.Sprintf("%s|%d", businessID, year)
	r.s.tx.sequences[key]++
	return r.s.tx.sequences[key], nil
}

// ──── Libro de stock ─────────────────────────────────────────────────────────

// LedgerRepo libro de stock en memoria.
type LedgerRepo struct{ s *Store }

func balanceKey(businessID, locationID, variationID string) string {
	return businessID + "|" + locationID + "|" + variationID
}

func (r *LedgerRepo) LockBalance(_ context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey(businessID, locationID, variationID)
	b, ok := r.s.tx.balances[key]
	if !ok {
		b = &entity.StockBalance{BusinessID: businessID, LocationID: locationID, VariationID: variationID, Quantity: decimal.Zero}
		r.s.tx.balances[key] = b
	}
	c := *b
	return &c, nil
}

func (r *LedgerRepo) GetBalance(_ context.Context, businessID, locationID, variationID string) (*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.tx.balances[balanceKey(businessID, locationID, variationID)]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *LedgerRepo) SaveBalance(_ context.Context, balance *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *balance
	r.s.tx.balances[balanceKey(balance.BusinessID, balance.LocationID, balance.VariationID)] = &c
	return nil
}

func (r *LedgerRepo) Append(_ context.Context, entry *entity.StockLedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *entry
	r.s.tx.entries = append(r.s.tx.entries, &c)
	return nil
}

func (r *LedgerRepo) SumDeltas(_ context.Context, businessID, locationID, variationID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range r.s.tx.entries {
		if e.BusinessID == businessID && e.LocationID == locationID && e.VariationID == variationID {
			sum = sum.Add(e.QuantityDelta)
		}
	}
	return sum, nil
}

func (r *LedgerRepo) ListBalances(_ context.Context, businessID, locationID string) ([]*entity.StockBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockBalance
	for _, b := range r.s.tx.balances {
		if b.BusinessID == businessID && (locationID == "" || b.LocationID == locationID) {
			c := *b
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LocationID != list[j].LocationID {
			return list[i].LocationID < list[j].LocationID
		}
		return list[i].VariationID < list[j].VariationID
	})
	return list, nil
}

func (r *LedgerRepo) ListEntries(_ context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockLedgerEntry
	for _, e := range r.s.tx.entries {
		if e.BusinessID != f.BusinessID ||
			(f.LocationID != "" && e.LocationID != f.LocationID) ||
			(f.VariationID != "" && e.VariationID != f.VariationID) ||
			(f.From != nil && e.CreatedAt.Before(*f.From)) ||
			(f.To != nil && e.CreatedAt.After(*f.To)) {
			continue
		}
		c := *e
		list = append(list, &c)
	}
	return paginate(list, f.Limit, f.Offset), nil
}

func (r *LedgerRepo) ListByReference(_ context.Context, businessID, referenceType, referenceID string) ([]*entity.StockLedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockLedgerEntry
	for _, e := range r.s.tx.entries {
		if e.BusinessID == businessID && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			c := *e
			list = append(list, &c)
		}
	}
	return list, nil
}

// ──── Auditoría ──────────────────────────────────────────────────────────────

// AuditRepo auditoría en memoria (fuera de las transacciones, como en PostgreSQL tras el commit).
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Create(_ context.Context, entry *entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *entry
	r.s.audits = append(r.s.audits, &c)
	return nil
}

func (r *AuditRepo) ListByEntity(_ context.Context, businessID, entityType, entityID string) ([]*entity.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.AuditEntry
	for _, e := range r.s.audits {
		if e.BusinessID == businessID && e.EntityType == entityType && e.EntityID == entityID {
			c := *e
			list = append(list, &c)
		}
	}
	return list, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// AddLocation registra una ubicación (semillas de pruebas).
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = &l
}

// AddUser registra un usuario (semillas de pruebas).
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}
