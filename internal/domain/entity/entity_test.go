package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestStockMovement_Validate(t *testing.T) {
	valid := func() entity.StockMovement {
		return entity.StockMovement{ItemID: "item-1", QuantityChanged: 3, Type: entity.MovementTypeIn, Reason: "compra"}
	}

	m := valid()
	assert.NoError(t, m.Validate())

	cases := map[string]func(*entity.StockMovement){
		"sin item":       func(m *entity.StockMovement) { m.ItemID = "" },
		"cantidad cero":  func(m *entity.StockMovement) { m.QuantityChanged = 0 },
		"cantidad signo": func(m *entity.StockMovement) { m.QuantityChanged = -26 },
		"tipo inválido":  func(m *entity.StockMovement) { m.Type = "adjust" },
		"razón vacía":    func(m *entity.StockMovement) { m.Reason = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := valid()
			mutate(&m)
			assert.ErrorIs(t, m.Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestStockMovement_Signed(t *testing.T) {
	in := entity.StockMovement{Type: entity.MovementTypeIn, QuantityChanged: 4}
	out := entity.StockMovement{Type: entity.MovementTypeOut, QuantityChanged: 4}
	assert.Equal(t, int64(4), in.Signed())
	assert.Equal(t, int64(-4), out.Signed())
}

func TestItem_Validate(t *testing.T) {
	maxLow := int64(3)
	ok := entity.Item{Name: "Leche", SKU: "MILK", MinimumStock: 5}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.MaximumStock = &maxLow
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)

	bad = ok
	bad.MinimumStock = -1
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)

	bad = ok
	bad.SKU = ""
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)

	bad = ok
	bad.UnitPrice = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)
}
