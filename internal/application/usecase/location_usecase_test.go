package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/application/usecase"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
)

func TestLocationUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewLocationUseCase(memory.New().Locations())

	created, err := uc.Create(ctx, "biz-1", dto.CreateLocationRequest{Name: "  Bodega principal ", Address: "Cra 7 # 12-30"})
	require.NoError(t, err)
	assert.Equal(t, "Bodega principal", created.Name)
	assert.True(t, created.IsActive)

	_, err = uc.Create(ctx, "biz-1", dto.CreateLocationRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	got, err := uc.GetByID(ctx, "biz-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = uc.GetByID(ctx, "biz-2", created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "otro negocio no ve la ubicación")

	inactive := false
	name := "Bodega cerrada"
	updated, err := uc.Update(ctx, "biz-1", created.ID, dto.UpdateLocationRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Bodega cerrada", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Cra 7 # 12-30", updated.Address)

	_, err = uc.Create(ctx, "biz-1", dto.CreateLocationRequest{Name: "Sucursal norte"})
	require.NoError(t, err)
	list, err := uc.List(ctx, "biz-1", 1, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Limit)

	list, err = uc.List(ctx, "biz-2", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
