package transfer_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

func TestAuditEmitter_MetadataNoSerializable_SeRegistraElFallo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "info", Output: &buf})
	store := memory.New()
	emitter := transfer.NewAuditEmitter(store.Audit(), log)

	actor := transfer.Actor{UserID: uuid.NewString(), BusinessID: uuid.NewString()}
	tr := &entity.Transfer{ID: uuid.NewString(), BusinessID: actor.BusinessID, TransferNumber: "TR-2026/0001", Status: entity.TransferDraft, Version: 1}

	emitter.Emit(context.Background(), "create", actor, nil, tr, nil, map[string]any{"canal": make(chan int)})

	out := buf.String()
	assert.Contains(t, out, `"error_class":"audit_emit_failed"`)
	assert.Contains(t, out, `"stage":"metadata"`)
	assert.Contains(t, out, tr.ID)

	entries, err := store.Audit().ListByEntity(context.Background(), actor.BusinessID, transfer.EntityTypeTransfer, tr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "la entrada se guarda con las partes que sí se pudieron serializar")
	assert.Nil(t, entries[0].Metadata)
	assert.NotEmpty(t, entries[0].After)
}

func TestAuditEmitter_SinErrores_NoRegistraFallos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "info", Output: &buf})
	store := memory.New()
	emitter := transfer.NewAuditEmitter(store.Audit(), log)

	actor := transfer.Actor{UserID: uuid.NewString(), BusinessID: uuid.NewString()}
	tr := &entity.Transfer{ID: uuid.NewString(), BusinessID: actor.BusinessID, Status: entity.TransferDraft, Version: 1}

	emitter.Emit(context.Background(), "create", actor, nil, tr, nil, map[string]any{"items": 2})

	assert.NotContains(t, buf.String(), "audit_emit_failed")
	entries, err := store.Audit().ListByEntity(context.Background(), actor.BusinessID, transfer.EntityTypeTransfer, tr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"items":2}`, string(entries[0].Metadata))
}
