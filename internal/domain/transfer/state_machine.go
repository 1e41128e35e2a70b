// Package transfer contiene la máquina de estados del traslado entre ubicaciones y sus guardas.
// Las funciones mutan el agregado en memoria; la persistencia y los asientos del libro los aplica
// el caso de uso dentro de una sola transacción.
package transfer

import (
	"fmt"
	"slices"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// Operation nombre de una transición del flujo.
type Operation string

// Operaciones del flujo de traslado.
const (
	OpCreate            Operation = "create"
	OpUpdateDraft       Operation = "update_draft"
	OpSubmit            Operation = "submit_for_check"
	OpApprove           Operation = "check_approve"
	OpReject            Operation = "check_reject"
	OpSend              Operation = "send"
	OpMarkArrived       Operation = "mark_arrived"
	OpStartVerification Operation = "start_verification"
	OpVerifyItem        Operation = "verify_item"
	OpComplete          Operation = "complete"
	OpCancel            Operation = "cancel"
)

type rule struct {
	from []entity.TransferStatus
	to   entity.TransferStatus
}

var transitions = map[Operation]rule{
	OpUpdateDraft:       {from: []entity.TransferStatus{entity.TransferDraft}, to: entity.TransferDraft},
	OpSubmit:            {from: []entity.TransferStatus{entity.TransferDraft}, to: entity.TransferPendingCheck},
	OpApprove:           {from: []entity.TransferStatus{entity.TransferPendingCheck}, to: entity.TransferChecked},
	OpReject:            {from: []entity.TransferStatus{entity.TransferPendingCheck}, to: entity.TransferDraft},
	OpSend:              {from: []entity.TransferStatus{entity.TransferChecked}, to: entity.TransferInTransit},
	OpMarkArrived:       {from: []entity.TransferStatus{entity.TransferInTransit}, to: entity.TransferArrived},
	OpStartVerification: {from: []entity.TransferStatus{entity.TransferArrived}, to: entity.TransferVerifying},
	OpVerifyItem:        {from: []entity.TransferStatus{entity.TransferVerifying}, to: entity.TransferVerifying},
	OpComplete:          {from: []entity.TransferStatus{entity.TransferVerifying}, to: entity.TransferCompleted},
	OpCancel: {
		from: []entity.TransferStatus{
			entity.TransferDraft, entity.TransferPendingCheck, entity.TransferChecked,
			entity.TransferInTransit, entity.TransferArrived, entity.TransferVerifying,
		},
		to: entity.TransferCancelled,
	},
}

// Next devuelve el estado destino de aplicar op sobre current, o el error tipado:
// ErrImmutableState si current es terminal, ErrInvalidTransition si op no se admite desde current.
func Next(current entity.TransferStatus, op Operation) (entity.TransferStatus, error) {
	r, ok := transitions[op]
	if !ok {
		return "", fmt.Errorf("%w: operación desconocida %q", domain.ErrInvalidInput, op)
	}
	if current.IsTerminal() {
		return "", fmt.Errorf("%w: no se puede ejecutar %s sobre un traslado %s", domain.ErrImmutableState, op, current)
	}
	if !slices.Contains(r.from, current) {
		return "", fmt.Errorf("%w: %s no está permitido en estado %s", domain.ErrInvalidTransition, op, current)
	}
	return r.to, nil
}

// Allowed lista las operaciones que admite el estado dado (para la UI y el detalle del traslado).
func Allowed(current entity.TransferStatus) []Operation {
	if current.IsTerminal() {
		return nil
	}
	var ops []Operation
	for _, op := range []Operation{
		OpUpdateDraft, OpSubmit, OpApprove, OpReject, OpSend, OpMarkArrived,
		OpStartVerification, OpVerifyItem, OpComplete, OpCancel,
	} {
		if slices.Contains(transitions[op].from, current) {
			ops = append(ops, op)
		}
	}
	return ops
}
