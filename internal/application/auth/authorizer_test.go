package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
)

func TestRolePermissionAuthorizer(t *testing.T) {
	store := memory.New()
	store.AddUser(entity.User{ID: "admin", Role: entity.RoleAdmin, Status: "active"})
	store.AddUser(entity.User{ID: "sup", Role: entity.RoleSupervisor, Status: "active"})
	store.AddUser(entity.User{ID: "bod", Role: entity.RoleBodeguero, Status: "active"})
	store.AddUser(entity.User{ID: "ven", Role: entity.RoleVendedor, Status: "active"})
	store.AddUser(entity.User{ID: "inactivo", Role: entity.RoleAdmin, Status: "inactive"})
	authz := auth.NewRolePermissionAuthorizer(store.Users())

	cases := []struct {
		user string
		perm entity.Permission
		want bool
	}{
		{"admin", entity.PermStockAdjust, true},
		{"admin", entity.PermTransferCheck, true},
		{"sup", entity.PermTransferCheck, true},
		{"sup", entity.PermTransferCancel, true},
		{"sup", entity.PermTransferSend, false},
		{"bod", entity.PermTransferCreate, true},
		{"bod", entity.PermTransferReceive, true},
		{"bod", entity.PermTransferCheck, false},
		{"bod", entity.PermTransferCancel, false},
		{"ven", entity.PermTransferView, true},
		{"ven", entity.PermTransferCreate, false},
		{"inactivo", entity.PermTransferView, false},
		{"desconocido", entity.PermTransferView, false},
	}
	for _, tc := range cases {
		got, err := authz.HasPermission(context.Background(), tc.user, tc.perm)
		require.NoError(t, err)
		assert.Equalf(t, tc.want, got, "%s/%s", tc.user, tc.perm)
	}
}
