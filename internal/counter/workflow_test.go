package counter

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/lifecycle"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/notify"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/payment"
)

type stubCatalog struct{}

var _ Catalog = stubCatalog{}

func (stubCatalog) Item(_ context.Context, id int) (models.MenuItem, error) {
	if id == 1 {
		return models.MenuItem{ID: 1, Name: "Burger", Price: decimal.RequireFromString("8.50"), Available: true}, nil
	}
	return models.MenuItem{}, apperr.NotFoundError{Resource: "menu item", ID: strconv.Itoa(id)}
}

func (stubCatalog) Table(_ context.Context, id int) (models.TableRef, error) {
	return models.TableRef{ID: id, Number: 5}, nil
}

func newWorkflow() *Workflow {
	center := notify.NewCenter(0)
	logger := log.New()
	orders := lifecycle.NewController(nil, nil, center, logger)
	payments := payment.NewReconciler(nil, nil, nil, center, logger)
	return NewWorkflow(orders, payments, stubCatalog{})
}

func TestModeToggle(t *testing.T) {
	w := newWorkflow()
	assert.Equal(t, OrderMode, w.Mode())

	require.NoError(t, w.AddItem(context.Background(), 1))
	require.NoError(t, w.SetMode(PaymentMode))
	assert.Equal(t, PaymentMode, w.View().Mode)
	assert.Len(t, w.View().Order.Cart.Lines, 1, "cart survives the mode switch")

	assert.True(t, apperr.IsValidation(w.SetMode("kitchen")))
	assert.Equal(t, PaymentMode, w.Mode())
}

func TestAddItemUsesCatalogPrice(t *testing.T) {
	w := newWorkflow()
	require.NoError(t, w.AddItem(context.Background(), 1))
	require.NoError(t, w.AddItem(context.Background(), 1))

	v := w.View().Order
	require.Len(t, v.Cart.Lines, 1)
	assert.Equal(t, 2, v.Cart.Lines[0].Quantity)
	assert.Equal(t, "17.00", v.Cart.Total)

	assert.True(t, apperr.IsNotFound(w.AddItem(context.Background(), 2)))
}

func TestSelectTable(t *testing.T) {
	w := newWorkflow()
	require.NoError(t, w.AddItem(context.Background(), 1))
	require.NoError(t, w.SelectTable(context.Background(), 15))

	v := w.View().Order
	require.NotNil(t, v.Cart.Table)
	assert.Equal(t, 15, v.Cart.Table.ID)
	assert.True(t, v.CanSubmit)
}
