package entity

// Permission capacidad que se consulta antes de cada operación del flujo.
type Permission string

// Permisos del módulo de inventario.
const (
	PermTransferCreate  Permission = "transfer.create"
	PermTransferSubmit  Permission = "transfer.submit"
	PermTransferCheck   Permission = "transfer.check"
	PermTransferSend    Permission = "transfer.send"
	PermTransferReceive Permission = "transfer.receive"
	PermTransferCancel  Permission = "transfer.cancel"
	PermTransferView    Permission = "transfer.view"
	PermStockAdjust     Permission = "stock.adjust"
)

// rolePermissions matriz rol → permisos. admin tiene todos.
var rolePermissions = map[string][]Permission{
	RoleSupervisor: {PermTransferView, PermTransferCheck, PermTransferCancel},
	RoleBodeguero:  {PermTransferView, PermTransferCreate, PermTransferSubmit, PermTransferSend, PermTransferReceive},
	RoleVendedor:   {PermTransferView},
}

// RoleHasPermission indica si el rol concede el permiso.
func RoleHasPermission(role string, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
