package inventory_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func mov(seq int64, typ string, q int64) *entity.StockMovement {
	return &entity.StockMovement{Sequence: seq, Type: typ, QuantityChanged: q, Reason: "test"}
}

func TestValidateApply(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		typ     string
		qty     int64
		want    int64
		wantErr error
	}{
		{"entrada suma", 10, entity.MovementTypeIn, 5, 15, nil},
		{"salida resta", 10, entity.MovementTypeOut, 4, 6, nil},
		{"salida exacta deja cero", 7, entity.MovementTypeOut, 7, 0, nil},
		{"salida mayor al stock", 3, entity.MovementTypeOut, 4, 3, inventory.ErrNegativeQuantity},
		{"cantidad cero", 3, entity.MovementTypeIn, 0, 3, domain.ErrInvalidInput},
		{"cantidad negativa", 3, entity.MovementTypeIn, -2, 3, domain.ErrInvalidInput},
		{"tipo desconocido", 3, "transfer", 1, 3, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ValidateApply(tc.current, tc.typ, tc.qty)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "error esperado %v, obtenido %v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateApply_NegativoEsStockInsuficiente(t *testing.T) {
	_, err := inventory.ValidateApply(0, entity.MovementTypeOut, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestProject_HistorialVacioEsCero(t *testing.T) {
	qty, err := inventory.Project(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

// Escenario: entrada 100, salida 26, entrada 5 -> 79.
func TestProject_SumaConSigno(t *testing.T) {
	qty, err := inventory.Project([]*entity.StockMovement{
		mov(1, entity.MovementTypeIn, 100),
		mov(2, entity.MovementTypeOut, 26),
		mov(3, entity.MovementTypeIn, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(79), qty)
}

func TestProject_HistorialCorruptoFalla(t *testing.T) {
	_, err := inventory.Project([]*entity.StockMovement{
		mov(1, entity.MovementTypeIn, 2),
		mov(2, entity.MovementTypeOut, 3),
		mov(3, entity.MovementTypeIn, 10),
	})
	assert.ErrorIs(t, err, inventory.ErrNegativeQuantity)
}

// Secuencias aleatorias: aplicar con ValidateApply y rechazar lo que quedaría negativo
// mantiene la cantidad igual a la proyección del historial aceptado y nunca negativa.
func TestProject_InvarianteAleatorio(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		var (
			qty      int64
			accepted []*entity.StockMovement
		)
		for i := 0; i < 200; i++ {
			typ := entity.MovementTypeIn
			if r.Intn(2) == 0 {
				typ = entity.MovementTypeOut
			}
			q := int64(r.Intn(20) + 1)
			next, err := inventory.ValidateApply(qty, typ, q)
			if err != nil {
				require.ErrorIs(t, err, inventory.ErrNegativeQuantity)
				assert.Equal(t, qty, next, "un rechazo no altera la cantidad")
				continue
			}
			qty = next
			accepted = append(accepted, mov(int64(len(accepted)+1), typ, q))
			require.GreaterOrEqual(t, qty, int64(0))
		}
		projected, err := inventory.Project(accepted)
		require.NoError(t, err)
		assert.Equal(t, qty, projected)
	}
}
