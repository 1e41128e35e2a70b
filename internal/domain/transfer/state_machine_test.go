package transfer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

func TestNext_TransicionesValidas(t *testing.T) {
	cases := []struct {
		from entity.TransferStatus
		op   Operation
		want entity.TransferStatus
	}{
		{entity.TransferDraft, OpUpdateDraft, entity.TransferDraft},
		{entity.TransferDraft, OpSubmit, entity.TransferPendingCheck},
		{entity.TransferPendingCheck, OpApprove, entity.TransferChecked},
		{entity.TransferPendingCheck, OpReject, entity.TransferDraft},
		{entity.TransferChecked, OpSend, entity.TransferInTransit},
		{entity.TransferInTransit, OpMarkArrived, entity.TransferArrived},
		{entity.TransferArrived, OpStartVerification, entity.TransferVerifying},
		{entity.TransferVerifying, OpVerifyItem, entity.TransferVerifying},
		{entity.TransferVerifying, OpComplete, entity.TransferCompleted},
		{entity.TransferDraft, OpCancel, entity.TransferCancelled},
		{entity.TransferInTransit, OpCancel, entity.TransferCancelled},
		{entity.TransferVerifying, OpCancel, entity.TransferCancelled},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.op), func(t *testing.T) {
			got, err := Next(tc.from, tc.op)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNext_TransicionesInvalidas(t *testing.T) {
	cases := []struct {
		from entity.TransferStatus
		op   Operation
	}{
		{entity.TransferDraft, OpSend},
		{entity.TransferDraft, OpApprove},
		{entity.TransferPendingCheck, OpSubmit},
		{entity.TransferChecked, OpUpdateDraft},
		{entity.TransferChecked, OpComplete},
		{entity.TransferInTransit, OpVerifyItem},
		{entity.TransferArrived, OpComplete},
		{entity.TransferVerifying, OpSend},
	}
	for _, tc := range cases {
		_, err := Next(tc.from, tc.op)
		assert.Truef(t, errors.Is(err, domain.ErrInvalidTransition), "%s desde %s: %v", tc.op, tc.from, err)
	}
}

func TestNext_EstadosTerminales(t *testing.T) {
	for _, s := range []entity.TransferStatus{entity.TransferCompleted, entity.TransferCancelled} {
		for _, op := range []Operation{OpCancel, OpSend, OpComplete, OpUpdateDraft} {
			_, err := Next(s, op)
			assert.Truef(t, errors.Is(err, domain.ErrImmutableState), "%s desde %s", op, s)
		}
		assert.Empty(t, Allowed(s))
	}
}

func TestNext_OperacionDesconocida(t *testing.T) {
	_, err := Next(entity.TransferDraft, Operation("teleport"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAllowed(t *testing.T) {
	assert.Equal(t, []Operation{OpUpdateDraft, OpSubmit, OpCancel}, Allowed(entity.TransferDraft))
	assert.Equal(t, []Operation{OpApprove, OpReject, OpCancel}, Allowed(entity.TransferPendingCheck))
	assert.Equal(t, []Operation{OpVerifyItem, OpComplete, OpCancel}, Allowed(entity.TransferVerifying))
}
