package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invapp "github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/inventory"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	workflow "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// DefaultNumberPrefix prefijo del consecutivo si la configuración no define otro.
const DefaultNumberPrefix = "TR-"

// Deps colaboradores del servicio de traslados.
type Deps struct {
	TxRunner      TxRunner
	Transfers     repository.TransferRepository
	Locations     repository.LocationRepository
	Variations    repository.VariationRepository
	Audit         repository.AuditRepository
	Authorizer    Authorizer
	Notifier      Notifier
	Cache         invapp.BalanceCache
	Renderer      DispatchNoteRenderer
	Logger        *logger.Logger
	NumberPrefix  string
	NotifyTimeout time.Duration
}

// Service casos de uso del flujo de traslados: una operación por transición.
// Cada transición lee el agregado bloqueado, valida estado y guardas, aplica los asientos del libro y
// persiste el nuevo estado en una sola transacción; la auditoría, la notificación y la invalidación de
// caché ocurren después del commit.
type Service struct {
	txRunner      TxRunner
	transfers     repository.TransferRepository
	locations     repository.LocationRepository
	variations    repository.VariationRepository
	authz         Authorizer
	audit         *AuditEmitter
	auditRepo     repository.AuditRepository
	notifier      Notifier
	cache         invapp.BalanceCache
	renderer      DispatchNoteRenderer
	log           *logger.Logger
	numberPrefix  string
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	if d.NumberPrefix == "" {
		d.NumberPrefix = DefaultNumberPrefix
	}
	if d.NotifyTimeout <= 0 {
		d.NotifyTimeout = 2 * time.Second
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	if d.Cache == nil {
		d.Cache = noCache{}
	}
	return &Service{
		txRunner:      d.TxRunner,
		transfers:     d.Transfers,
		locations:     d.Locations,
		variations:    d.Variations,
		authz:         d.Authorizer,
		audit:         NewAuditEmitter(d.Audit, d.Logger),
		auditRepo:     d.Audit,
		notifier:      d.Notifier,
		cache:         d.Cache,
		renderer:      d.Renderer,
		log:           d.Logger,
		numberPrefix:  d.NumberPrefix,
		notifyTimeout: d.NotifyTimeout,
		now:           time.Now,
	}
}

// CreateInput datos para crear un traslado.
type CreateInput struct {
	FromLocationID string
	ToLocationID   string
	TransferDate   time.Time
	Notes          string
	Items          []workflow.ItemInput
}

// UpdateDraftInput corrección de un borrador (reemplaza notas, fecha e ítems).
type UpdateDraftInput struct {
	TransferDate time.Time
	Notes        string
	Items        []workflow.ItemInput
}

func (s *Service) authorize(ctx context.Context, actor Actor, perm entity.Permission) error {
	if actor.UserID == "" || actor.BusinessID == "" {
		return domain.ErrUnauthorized
	}
	ok, err := s.authz.HasPermission(ctx, actor.UserID, perm)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: se requiere el permiso %s", domain.ErrForbidden, perm)
	}
	return nil
}

// checkCatalog valida ubicaciones y variaciones del negocio y completa el producto de cada ítem.
func (s *Service) checkCatalog(ctx context.Context, businessID, fromID, toID string, items []workflow.ItemInput) ([]workflow.ItemInput, error) {
	for _, id := range []string{fromID, toID} {
		loc, err := s.locations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if loc == nil || loc.BusinessID != businessID {
			return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
		if !loc.IsActive {
			return nil, fmt.Errorf("%w: la ubicación %s está inactiva", domain.ErrInvalidInput, loc.Name)
		}
	}
	out := make([]workflow.ItemInput, len(items))
	for i, it := range items {
		v, err := s.variations.GetByID(ctx, it.VariationID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.BusinessID != businessID {
			return nil, fmt.Errorf("%w: variación %s", domain.ErrNotFound, it.VariationID)
		}
		if it.ProductID != "" && it.ProductID != v.ProductID {
			return nil, fmt.Errorf("%w: la variación %s no pertenece al producto %s", domain.ErrInvalidInput, v.SKU, it.ProductID)
		}
		it.ProductID = v.ProductID
		out[i] = it
	}
	return out, nil
}

// requireStockRecords exige que cada variación tenga registro de stock en el origen.
func requireStockRecords(ctx context.Context, ledgerRepo repository.StockLedgerRepository, businessID, fromID string, items []workflow.ItemInput) error {
	for _, it := range items {
		b, err := ledgerRepo.GetBalance(ctx, businessID, fromID, it.VariationID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: la variación %s no tiene registro de stock en el origen", domain.ErrInvalidInput, it.VariationID)
		}
	}
	return nil
}

// Create crea el traslado en borrador con su consecutivo.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*entity.Transfer, error) {
	if err := s.authorize(ctx, actor, entity.PermTransferCreate); err != nil {
		return nil, err
	}
	if err := workflow.ValidateDraft(in.FromLocationID, in.ToLocationID, in.Items); err != nil {
		return nil, err
	}
	items, err := s.checkCatalog(ctx, actor.BusinessID, in.FromLocationID, in.ToLocationID, in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := in.TransferDate
	if date.IsZero() {
		date = now
	}
	t := &entity.Transfer{
		ID:             uuid.New().String(),
		BusinessID:     actor.BusinessID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		TransferDate:   date,
		Status:         entity.TransferDraft,
		Notes:          in.Notes,
		Version:        1,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	t.Items = workflow.BuildItems(t.ID, items, newID)

	err = s.txRunner.RunTransfer(ctx, func(transferRepo repository.TransferRepository, ledgerRepo repository.StockLedgerRepository) error {
		if err := requireStockRecords(ctx, ledgerRepo, actor.BusinessID, t.FromLocationID, items); err != nil {
			return err
		}
		seq, err := transferRepo.NextNumber(ctx, actor.BusinessID, date.Year())
		if err != nil {
			return err
		}
		t.TransferNumber = FormatNumber(s.numberPrefix, date.Year(), seq)
		return transferRepo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, string(workflow.OpCreate), actor, nil, t, nil, nil)
	return t, nil
}

// FormatNumber arma el consecutivo legible: <prefijo><año>/<secuencia de 4 dígitos>.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%d/%04d", prefix, year, seq)
}

func newID() string { return uuid.New().String() }

type discardNotifier struct{}

func (discardNotifier) Publish(context.Context, Event) error { return nil }

type noCache struct{}

func (noCache) Get(context.Context, string, string, string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
func (noCache) Set(context.Context, string, string, string, decimal.Decimal) {}
func (noCache) Invalidate(context.Context, string, ...invapp.Pair)           {}

// effect resultado de aplicar una operación al agregado bloqueado.
type effect struct {
	postings     []inventory.Posting
	replaceItems bool
	stockChecks  []workflow.ItemInput // variaciones que deben tener registro de stock en el origen
	item         *entity.TransferItem
	meta         map[string]any
}

// mutation aplica una operación sobre el agregado (ya bloqueado dentro de la tx).
type mutation func(t *entity.Transfer, now time.Time) (effect, error)

// transition ejecuta el patrón común: permiso, lectura con bloqueo, guardas, asientos, persistencia
// condicionada a la versión leída y, tras el commit, auditoría, notificación e invalidación de caché.
func (s *Service) transition(ctx context.Context, actor Actor, transferID string, op workflow.Operation, perm entity.Permission, mutate mutation) (*entity.Transfer, error) {
	if err := s.authorize(ctx, actor, perm); err != nil {
		return nil, err
	}
	var (
		before, after *entity.Transfer
		entries       []*entity.StockLedgerEntry
		meta          map[string]any
	)
	now := s.now()
	err := s.txRunner.RunTransfer(ctx, func(transferRepo repository.TransferRepository, ledgerRepo repository.StockLedgerRepository) error {
		t, err := transferRepo.GetForUpdate(ctx, actor.BusinessID, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
		}
		before = t.Clone()
		version := t.Version

		eff, err := mutate(t, now)
		if err != nil {
			return err
		}
		if err := requireStockRecords(ctx, ledgerRepo, actor.BusinessID, t.FromLocationID, eff.stockChecks); err != nil {
			return err
		}
		entries = nil
		if len(eff.postings) > 0 {
			entries, err = invapp.Post(ctx, ledgerRepo, invapp.PostRef{
				BusinessID:    actor.BusinessID,
				ActorID:       actor.UserID,
				ReferenceType: entity.ReferenceTransfer,
				ReferenceID:   t.ID,
			}, eff.postings, now)
			if err != nil {
				return err
			}
		}
		if eff.replaceItems {
			if err := transferRepo.ReplaceItems(ctx, t); err != nil {
				return err
			}
		}
		if eff.item != nil {
			if err := transferRepo.UpdateItem(ctx, eff.item); err != nil {
				return err
			}
		}
		if err := transferRepo.Update(ctx, t, version); err != nil {
			return err
		}
		t.Version = version + 1
		after = t
		meta = eff.meta
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, string(op), actor, before, after, entries, meta)
	return after, nil
}

func (s *Service) afterCommit(ctx context.Context, action string, actor Actor, before, after *entity.Transfer, entries []*entity.StockLedgerEntry, meta map[string]any) {
	if len(entries) > 0 {
		s.cache.Invalidate(context.WithoutCancel(ctx), actor.BusinessID, invapp.PairsOf(entries)...)
	}
	s.audit.Emit(ctx, action, actor, before, after, entries, meta)
	s.log.Info().
		Str("transfer_id", after.ID).
		Str("transfer_number", after.TransferNumber).
		Str("action", action).
		Str("status", string(after.Status)).
		Str("actor_id", actor.UserID).
		Int("postings", len(entries)).
		Msg("transición de traslado")
	s.notify(ctx, Event{
		BusinessID:     actor.BusinessID,
		TransferID:     after.ID,
		TransferNumber: after.TransferNumber,
		Action:         action,
		Status:         after.Status,
		ActorID:        actor.UserID,
		OccurredAt:     s.now(),
	})
}

// notify publica en segundo plano; un fallo solo se registra.
func (s *Service) notify(ctx context.Context, evt Event) {
	parent := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(parent, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Publish(nctx, evt); err != nil {
			s.log.Warn().
				Err(err).
				Str("error_class", "notify_failed").
				Str("transfer_id", evt.TransferID).
				Str("action", evt.Action).
				Msg("no se pudo publicar el evento del traslado")
		}
	}()
}

// Get devuelve el traslado con sus ítems.
func (s *Service) Get(ctx context.Context, actor Actor, transferID string) (*entity.Transfer, error) {
	if err := s.authorize(ctx, actor, entity.PermTransferView); err != nil {
		return nil, err
	}
	t, err := s.transfers.GetByID(ctx, actor.BusinessID, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
	}
	return t, nil
}

// List lista traslados del negocio del actor.
func (s *Service) List(ctx context.Context, actor Actor, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	if err := s.authorize(ctx, actor, entity.PermTransferView); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	filter.BusinessID = actor.BusinessID
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.transfers.List(ctx, filter)
}

// History entradas de auditoría del traslado en orden cronológico.
func (s *Service) History(ctx context.Context, actor Actor, transferID string) ([]*entity.AuditEntry, error) {
	if _, err := s.Get(ctx, actor, transferID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByEntity(ctx, actor.BusinessID, EntityTypeTransfer, transferID)
}
