package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invapp "github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
	workflow "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestService_FlujoCompletoConDiscrepancia(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 20)
	f.stock(t, f.from, f.varB, 5)

	tr := f.create(t, item(f.varA, 10), item(f.varB, 5))
	assert.Equal(t, entity.TransferDraft, tr.Status)
	assert.Equal(t, 1, tr.Version)
	assert.Equal(t, f.productID, tr.Items[0].ProductID, "el producto se completa desde la variación")

	tr, err := f.svc.Submit(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPendingCheck, tr.Status)
	assert.Equal(t, f.keeper.UserID, tr.SubmittedBy)

	tr, err = f.svc.Approve(f.ctx, f.supervisor, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferChecked, tr.Status)
	f.requireBalance(t, 20, f.from, f.varA)

	tr, err = f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferInTransit, tr.Status)
	assert.True(t, tr.StockDeducted)
	f.requireBalance(t, 10, f.from, f.varA)
	f.requireBalance(t, 0, f.from, f.varB)

	tr, err = f.svc.MarkArrived(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferArrived, tr.Status)

	tr, err = f.svc.StartVerification(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferVerifying, tr.Status)

	_, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	tr, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[1].ID, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.False(t, tr.Items[0].HasDiscrepancy)
	assert.True(t, tr.Items[1].HasDiscrepancy)

	tr, err = f.svc.Complete(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, tr.Status)
	assert.True(t, tr.StockDeducted)
	assert.Equal(t, 1, tr.DiscrepancyCount())
	assert.Equal(t, 9, tr.Version)

	// El destino recibe lo contado, no lo solicitado; el origen no cambia al completar.
	f.requireBalance(t, 10, f.to, f.varA)
	f.requireBalance(t, 4, f.to, f.varB)
	f.requireBalance(t, 10, f.from, f.varA)
	f.requireBalance(t, 0, f.from, f.varB)

	entries := f.transferEntries(t, tr.ID)
	require.Len(t, entries, 4)
	var out, in int
	for _, e := range entries {
		switch e.TransactionType {
		case entity.LedgerTransferOut:
			out++
			assert.True(t, e.QuantityDelta.IsNegative())
			assert.Equal(t, f.from, e.LocationID)
		case entity.LedgerTransferIn:
			in++
			assert.True(t, e.QuantityDelta.IsPositive())
			assert.Equal(t, f.to, e.LocationID)
		}
	}
	assert.Equal(t, 2, out)
	assert.Equal(t, 2, in)

	history, err := f.svc.History(f.ctx, f.seller, tr.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{
		"create", "submit_for_check", "check_approve", "send", "mark_arrived",
		"start_verification", "verify_item", "verify_item", "complete",
	}, actions)
}

func TestService_SendSinStockSuficiente_NoCambiaNada(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 3)
	f.stock(t, f.from, f.varB, 10)

	tr := f.checked(t, item(f.varB, 2), item(f.varA, 5))

	_, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := f.svc.Get(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferChecked, got.Status)
	assert.False(t, got.StockDeducted)
	assert.Equal(t, tr.Version, got.Version)

	// Ningún ítem se descuenta si uno falla.
	f.requireBalance(t, 3, f.from, f.varA)
	f.requireBalance(t, 10, f.from, f.varB)
	assert.Empty(t, f.transferEntries(t, tr.ID))
}

func TestService_SendConStockExacto_DejaCero(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 7)

	tr := f.checked(t, item(f.varA, 7))
	_, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	f.requireBalance(t, 0, f.from, f.varA)
}

func TestService_SeparacionDeFunciones(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.create(t, item(f.varA, 4))
	_, err := f.svc.Submit(f.ctx, f.admin, tr.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(f.ctx, f.admin, tr.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	got, err := f.svc.Get(f.ctx, f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPendingCheck, got.Status)

	got, err = f.svc.Approve(f.ctx, f.admin2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferChecked, got.Status)
	assert.Equal(t, f.admin2.UserID, got.CheckedBy)
}

func TestService_RechazoCorreccionYReenvio(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	f.stock(t, f.from, f.varB, 10)

	tr := f.create(t, item(f.varA, 4))
	_, err := f.svc.Submit(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(f.ctx, f.supervisor, tr.ID, "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "el rechazo exige motivo")

	tr, err = f.svc.Reject(f.ctx, f.supervisor, tr.ID, "faltan las tallas L")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferDraft, tr.Status)
	assert.Equal(t, "faltan las tallas L", tr.CheckerNotes)
	assert.Empty(t, tr.SubmittedBy)
	assert.Nil(t, tr.SubmittedAt)

	tr, err = f.svc.UpdateDraft(f.ctx, f.keeper, tr.ID, transfer.UpdateDraftInput{
		Notes: "con tallas L",
		Items: []workflow.ItemInput{item(f.varA, 4), item(f.varB, 3)},
	})
	require.NoError(t, err)
	require.Len(t, tr.Items, 2)
	assert.Equal(t, "con tallas L", tr.Notes)

	_, err = f.svc.Submit(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	tr, err = f.svc.Approve(f.ctx, f.supervisor, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferChecked, tr.Status)

	// Fuera de draft no se corrige.
	_, err = f.svc.UpdateDraft(f.ctx, f.keeper, tr.ID, transfer.UpdateDraftInput{Items: []workflow.ItemInput{item(f.varA, 1)}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestService_AnulacionTrasDespacho_RestituyeOrigen(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.checked(t, item(f.varA, 6))
	_, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkArrived(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	f.requireBalance(t, 4, f.from, f.varA)

	_, err = f.svc.Cancel(f.ctx, f.keeper, tr.ID, "error")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "bodeguero no anula")

	tr, err = f.svc.Cancel(f.ctx, f.supervisor, tr.ID, "mercancía equivocada")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCancelled, tr.Status)
	assert.False(t, tr.StockDeducted)
	assert.Equal(t, "mercancía equivocada", tr.CancellationReason)
	f.requireBalance(t, 10, f.from, f.varA)
	f.requireBalance(t, 0, f.to, f.varA)

	entries := f.transferEntries(t, tr.ID)
	require.Len(t, entries, 2)
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.QuantityDelta)
	}
	assert.True(t, sum.IsZero(), "despacho y reversa se compensan")

	_, err = f.svc.Cancel(f.ctx, f.supervisor, tr.ID, "otra vez")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrImmutableState))
	f.requireBalance(t, 10, f.from, f.varA)
}

func TestService_AnulacionEnBorrador_SinAsientos(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.create(t, item(f.varA, 6))
	tr, err := f.svc.Cancel(f.ctx, f.supervisor, tr.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCancelled, tr.Status)
	assert.Empty(t, f.transferEntries(t, tr.ID))
	f.requireBalance(t, 10, f.from, f.varA)
}

func TestService_CompletarConItemsPendientes(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	f.stock(t, f.from, f.varB, 10)

	tr := f.verifying(t, item(f.varA, 2), item(f.varB, 2))
	_, err := f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(2))
	require.NoError(t, err)

	_, err = f.svc.Complete(f.ctx, f.keeper2, tr.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationIncomplete))
	assert.Contains(t, err.Error(), "1 de 2")

	got, err := f.svc.Get(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferVerifying, got.Status)
	f.requireBalance(t, 0, f.to, f.varA)
}

func TestService_VerificarDosVeces(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.verifying(t, item(f.varA, 5))
	_, err := f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	_, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyVerified))

	got, err := f.svc.Get(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].QuantityReceived.Equal(decimal.NewFromInt(5)), "el primer conteo se conserva")
}

func TestService_VerificarItemInexistenteONegativo(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.verifying(t, item(f.varA, 5))
	_, err := f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, "no-existe", decimal.NewFromInt(5))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestService_RecibidoCero_NoGeneraIngreso(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	f.stock(t, f.from, f.varB, 10)

	tr := f.verifying(t, item(f.varA, 3), item(f.varB, 2))
	_, err := f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.NewFromInt(3))
	require.NoError(t, err)
	_, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[1].ID, decimal.Zero)
	require.NoError(t, err)

	tr, err = f.svc.Complete(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.DiscrepancyCount())
	f.requireBalance(t, 3, f.to, f.varA)
	f.requireBalance(t, 0, f.to, f.varB)

	entries := f.transferEntries(t, tr.ID)
	assert.Len(t, entries, 3, "dos salidas y un solo ingreso")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones inválidas y permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestService_TransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	tr := f.create(t, item(f.varA, 1))

	_, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	_, err = f.svc.Approve(f.ctx, f.supervisor, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	_, err = f.svc.Complete(f.ctx, f.keeper, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	_, err = f.svc.MarkArrived(f.ctx, f.keeper, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	got, err := f.svc.Get(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferDraft, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestService_Permisos(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	_, err := f.svc.Create(f.ctx, f.seller, transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item(f.varA, 1)}})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.Create(f.ctx, transfer.Actor{}, transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item(f.varA, 1)}})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	tr := f.create(t, item(f.varA, 1))
	_, err = f.svc.Submit(f.ctx, f.supervisor, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "supervisor no envía a revisión")

	_, err = f.svc.Submit(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(f.ctx, f.keeper2, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "bodeguero no revisa")

	// Otro negocio no ve el traslado.
	other := transfer.Actor{UserID: f.admin.UserID, BusinessID: "otro-negocio"}
	_, err = f.svc.Get(f.ctx, other, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestService_CreateValidaciones(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	cases := []struct {
		name string
		in   transfer.CreateInput
		want error
	}{
		{"mismo origen y destino", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.from, Items: []workflow.ItemInput{item(f.varA, 1)}}, domain.ErrInvalidInput},
		{"sin ítems", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to}, domain.ErrInvalidInput},
		{"cantidad cero", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item(f.varA, 0)}}, domain.ErrInvalidInput},
		{"variación repetida", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item(f.varA, 1), item(f.varA, 2)}}, domain.ErrInvalidInput},
		{"sin registro de stock en origen", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item(f.varB, 1)}}, domain.ErrInvalidInput},
		{"ubicación inexistente", transfer.CreateInput{FromLocationID: f.from, ToLocationID: "no-existe", Items: []workflow.ItemInput{item(f.varA, 1)}}, domain.ErrNotFound},
		{"variación inexistente", transfer.CreateInput{FromLocationID: f.from, ToLocationID: f.to, Items: []workflow.ItemInput{item("no-existe", 1)}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, f.keeper, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "error: %v", err)
		})
	}

	list, err := f.svc.List(f.ctx, f.keeper, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "una creación fallida no deja traslados")
}

func TestService_NumeracionConsecutiva(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	first := f.create(t, item(f.varA, 1))
	second := f.create(t, item(f.varA, 1))
	year := first.TransferDate.Year()
	assert.Equal(t, transfer.FormatNumber("TR-", year, 1), first.TransferNumber)
	assert.Equal(t, transfer.FormatNumber("TR-", year, 2), second.TransferNumber)
	assert.Equal(t, "TR-2026/0007", transfer.FormatNumber("TR-", 2026, 7))
}

func TestService_ListFiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	a := f.create(t, item(f.varA, 1))
	f.create(t, item(f.varA, 1))
	_, err := f.svc.Submit(f.ctx, f.keeper, a.ID)
	require.NoError(t, err)

	list, err := f.svc.List(f.ctx, f.seller, repository.TransferFilter{Status: entity.TransferPendingCheck})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = f.svc.List(f.ctx, f.seller, repository.TransferFilter{Status: "perdido"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestService_DespachoConcurrente_SoloUnoDescuenta(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	tr := f.checked(t, item(f.varA, 6))

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Send(context.Background(), f.keeper, tr.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if errors.Is(err, domain.ErrInvalidTransition) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	f.requireBalance(t, 4, f.from, f.varA)
	assert.Len(t, f.transferEntries(t, tr.ID), 1)
}

func TestService_DespachosConcurrentesCompitiendoPorStock(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)
	first := f.checked(t, item(f.varA, 6))
	second := f.checked(t, item(f.varA, 6))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.svc.Send(context.Background(), f.keeper, id)
		}(i, id)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
		}
	}
	assert.Equal(t, 1, failures, "solo uno de los dos despachos cabe en el saldo")
	f.requireBalance(t, 4, f.from, f.varA)
}

type failingAudit struct{}

func (failingAudit) Create(context.Context, *entity.AuditEntry) error {
	return errors.New("audit store caído")
}

func (failingAudit) ListByEntity(context.Context, string, string, string) ([]*entity.AuditEntry, error) {
	return nil, nil
}

func TestService_FalloDeAuditoria_NoRevierteLaTransicion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "info", Output: &buf})
	f := newFixture(t, withAudit(failingAudit{}), withLogger(log))
	f.stock(t, f.from, f.varA, 10)

	tr := f.checked(t, item(f.varA, 3))
	tr, err := f.svc.Send(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferInTransit, tr.Status)
	f.requireBalance(t, 7, f.from, f.varA)

	assert.Contains(t, buf.String(), `"error_class":"audit_emit_failed"`)
	assert.Contains(t, buf.String(), tr.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guía de traslado
// ──────────────────────────────────────────────────────────────────────────────

type capturingRenderer struct {
	note transfer.DispatchNote
}

func (r *capturingRenderer) Render(note transfer.DispatchNote) ([]byte, error) {
	r.note = note
	return []byte("%PDF-1.4 guia"), nil
}

func withRenderer(r transfer.DispatchNoteRenderer) fixtureOption {
	return func(d *transfer.Deps) { d.Renderer = r }
}

func TestService_DispatchNote(t *testing.T) {
	renderer := &capturingRenderer{}
	f := newFixture(t, withRenderer(renderer))
	f.stock(t, f.from, f.varA, 10)

	tr := f.checked(t, item(f.varA, 4))
	pdf, filename, err := f.svc.DispatchNote(f.ctx, f.seller, tr.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "guia-"+strings.ReplaceAll(tr.TransferNumber, "/", "-")+".pdf", filename)

	require.Len(t, renderer.note.Lines, 1)
	line := renderer.note.Lines[0]
	assert.Equal(t, "CAM-M", line.SKU)
	assert.Equal(t, "Camiseta M", line.Name)
	assert.Equal(t, "4", line.QuantityRequested)
	assert.Empty(t, line.QuantityReceived)
	assert.Equal(t, "Bodega principal", renderer.note.FromLocation.Name)
	assert.Equal(t, "Sucursal norte", renderer.note.ToLocation.Name)

	_, err = f.svc.Cancel(f.ctx, f.supervisor, tr.ID, "")
	require.NoError(t, err)
	_, _, err = f.svc.DispatchNote(f.ctx, f.seller, tr.ID)
	assert.True(t, errors.Is(err, domain.ErrImmutableState))
}

func TestService_CorreccionDeBorrador_ExigeRegistroDeStock(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	tr := f.create(t, item(f.varA, 2))

	_, err := f.svc.UpdateDraft(f.ctx, f.keeper, tr.ID, transfer.UpdateDraftInput{
		Items: []workflow.ItemInput{item(f.varA, 2), item(f.varB, 1)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)
	assert.Contains(t, err.Error(), f.varB)

	got, err := f.svc.Get(f.ctx, f.keeper, tr.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1, "la corrección rechazada no cambia las líneas")
	assert.Equal(t, f.varA, got.Items[0].VariationID)
	assert.Equal(t, 1, got.Version)
}

func TestService_CantidadMinima_FlujoCompletoConSaldosExactos(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 1)
	minQty := decimal.RequireFromString("0.0001")

	tr := f.verifying(t, workflow.ItemInput{VariationID: f.varA, Quantity: minQty})
	assert.True(t, f.balance(t, f.from, f.varA).Equal(decimal.RequireFromString("0.9999")))

	tr, err := f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, minQty)
	require.NoError(t, err)
	assert.False(t, tr.Items[0].HasDiscrepancy)

	tr, err = f.svc.Complete(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, tr.Status)

	assert.True(t, f.balance(t, f.from, f.varA).Equal(decimal.RequireFromString("0.9999")), "origen: %s", f.balance(t, f.from, f.varA))
	assert.True(t, f.balance(t, f.to, f.varA).Equal(minQty), "destino: %s", f.balance(t, f.to, f.varA))

	queries := invapp.NewLedgerQueries(f.store.Ledger(), nil)
	for _, loc := range []string{f.from, f.to} {
		rec, err := queries.Reconcile(f.ctx, f.businessID, loc, f.varA)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, "ubicación %s: saldo %s, libro %s", loc, rec.Materialized, rec.LedgerSum)
	}
}

func TestService_CantidadBajoLaUnidadMinima_Rechazada(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.from, f.varA, 10)

	_, err := f.svc.Create(f.ctx, f.keeper, transfer.CreateInput{
		FromLocationID: f.from,
		ToLocationID:   f.to,
		Items:          []workflow.ItemInput{{VariationID: f.varA, Quantity: decimal.RequireFromString("0.00001")}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)

	tr := f.verifying(t, item(f.varA, 5))
	_, err = f.svc.VerifyItem(f.ctx, f.keeper2, tr.ID, tr.Items[0].ID, decimal.RequireFromString("4.99999"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "error: %v", err)

	got, err := f.svc.Get(f.ctx, f.keeper2, tr.ID)
	require.NoError(t, err)
	assert.False(t, got.Items[0].Verified)
	assert.Nil(t, got.Items[0].QuantityReceived)
}
