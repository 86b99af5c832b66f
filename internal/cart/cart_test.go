package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

var (
	burger = models.MenuItemRef{ID: 1, Name: "Burger", UnitPrice: decimal.RequireFromString("8.50")}
	fries  = models.MenuItemRef{ID: 2, Name: "Fries", UnitPrice: decimal.RequireFromString("3.25")}
	soda   = models.MenuItemRef{ID: 3, Name: "Soda", UnitPrice: decimal.RequireFromString("0.10")}
	table5 = models.TableRef{ID: 15, Number: 5, Label: "Table 5"}
)

func TestAddLine(t *testing.T) {
	c := New()
	c.AddLine(burger)
	c.AddLine(fries)
	c.AddLine(burger)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, burger.ID, lines[0].Item.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, fries.ID, lines[1].Item.ID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, "20.25", c.Total().StringFixed(2))
}

func TestRemoveLine(t *testing.T) {
	c := New()
	c.AddLine(burger)
	c.AddLine(burger)
	c.AddLine(fries)

	t.Run("Decrements", func(t *testing.T) {
		c.RemoveLine(burger.ID)
		assert.Equal(t, 1, c.Quantity(burger.ID))
	})

	t.Run("Deletes at one", func(t *testing.T) {
		c.RemoveLine(burger.ID)
		assert.Equal(t, 0, c.Quantity(burger.ID))
		require.Len(t, c.Lines(), 1)
		assert.Equal(t, fries.ID, c.Lines()[0].Item.ID)
	})

	t.Run("Unknown item is a no-op", func(t *testing.T) {
		c.RemoveLine(99)
		require.Len(t, c.Lines(), 1)
		assert.Equal(t, "3.25", c.Total().StringFixed(2))
	})

	t.Run("Index survives deletion in the middle", func(t *testing.T) {
		c.Clear()
		c.AddLine(burger)
		c.AddLine(fries)
		c.AddLine(soda)
		c.RemoveLine(fries.ID)
		c.AddLine(soda)
		assert.Equal(t, 2, c.Quantity(soda.ID))
		assert.Equal(t, 1, c.Quantity(burger.ID))
		require.Len(t, c.Lines(), 2)
	})
}

func TestTotalMatchesLinesForRandomSequences(t *testing.T) {
	items := []models.MenuItemRef{burger, fries, soda}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		c := New()
		for step := 0; step < 50; step++ {
			item := items[rng.Intn(len(items))]
			if rng.Intn(2) == 0 {
				c.AddLine(item)
			} else {
				c.RemoveLine(item.ID)
			}

			expected := decimal.Zero
			for _, l := range c.Lines() {
				require.GreaterOrEqual(t, l.Quantity, 1)
				expected = expected.Add(l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			require.True(t, expected.Equal(c.Total()), "total drifted at run %d step %d", run, step)
		}
	}
}

func TestTotalDoesNotDriftOnRepeatedCents(t *testing.T) {
	c := New()
	for i := 0; i < 10; i++ {
		c.AddLine(soda)
	}
	assert.True(t, decimal.NewFromInt(1).Equal(c.Total()))
}

func TestAddThenRemoveRestoresCart(t *testing.T) {
	starts := map[string]func(*Cart){
		"empty":        func(c *Cart) {},
		"item present": func(c *Cart) { c.AddLine(burger); c.AddLine(fries) },
		"item absent":  func(c *Cart) { c.AddLine(fries); c.AddLine(fries) },
	}

	for name, seed := range starts {
		t.Run(name, func(t *testing.T) {
			c := New()
			seed(c)
			beforeLines, beforeTotal := c.Lines(), c.Total()

			c.AddLine(burger)
			c.RemoveLine(burger.ID)

			assert.Equal(t, beforeLines, c.Lines())
			assert.True(t, beforeTotal.Equal(c.Total()))
		})
	}
}

func TestSetOrderTypeClearsTableWhenLeavingDineIn(t *testing.T) {
	c := New()
	c.SelectTable(table5)

	require.NoError(t, c.SetOrderType(models.DineIn))
	assert.NotNil(t, c.Table())

	require.NoError(t, c.SetOrderType(models.Takeout))
	assert.Nil(t, c.Table())

	err := c.SetOrderType("drive_thru")
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, models.Takeout, c.OrderType())
}

func TestClearResetsEverything(t *testing.T) {
	c := New()
	c.AddLine(burger)
	require.NoError(t, c.SetOrderType(models.Delivery))
	c.SetNotes("no onions")
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, DefaultOrderType, c.OrderType())
	assert.Nil(t, c.Table())
	assert.Empty(t, c.Notes())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCreateOrderRequest(t *testing.T) {
	c := New()
	c.AddLine(burger)
	c.AddLine(burger)
	c.AddLine(fries)
	c.SelectTable(table5)
	c.SetNotes("window seat")

	req := c.CreateOrderRequest()
	assert.Equal(t, models.DineIn, req.OrderType)
	require.NotNil(t, req.TableID)
	assert.Equal(t, table5.ID, *req.TableID)
	assert.Equal(t, []models.CreateOrderItemRequest{
		{MenuItemID: burger.ID, Quantity: 2},
		{MenuItemID: fries.ID, Quantity: 1},
	}, req.Items)
	assert.Equal(t, "window seat", req.Notes)

	require.NoError(t, c.SetOrderType(models.Takeout))
	c.SelectTable(table5)
	assert.Nil(t, c.CreateOrderRequest().TableID)
}

func TestSnapshotRoundsForDisplay(t *testing.T) {
	c := New()
	c.AddLine(models.MenuItemRef{ID: 9, Name: "Tea", UnitPrice: decimal.RequireFromString("1.005")})
	c.AddLine(models.MenuItemRef{ID: 9, Name: "Tea", UnitPrice: decimal.RequireFromString("1.005")})

	s := c.Snapshot()
	assert.Equal(t, "2.01", s.Total)
	assert.True(t, decimal.RequireFromString("2.01").Equal(c.Total()))
	assert.False(t, s.CanSubmit)
	assert.Contains(t, s.Blocker, "table")
}
