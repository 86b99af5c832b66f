package menu

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type fakeSource struct {
	items      []models.MenuItem
	tables     []models.TableRef
	err        error
	itemCalls  int
	tableCalls int
	lastCtx    context.Context
}

var _ Source = &fakeSource{}

func (f *fakeSource) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	f.itemCalls++
	f.lastCtx = ctx
	return f.items, f.err
}

func (f *fakeSource) ListTables(ctx context.Context) ([]models.TableRef, error) {
	f.tableCalls++
	f.lastCtx = ctx
	return f.tables, f.err
}

func newCatalog(src *fakeSource) *Catalog {
	return NewCatalog(src, cache.NewMemoryCache(time.Minute), log.New())
}

func TestItemsAreCached(t *testing.T) {
	src := &fakeSource{items: []models.MenuItem{{ID: 1, Name: "Burger", Price: decimal.RequireFromString("8.50"), Available: true}}}
	c := newCatalog(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items, err := c.Items(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, decimal.RequireFromString("8.50").Equal(items[0].Price))
	}
	assert.Equal(t, 1, src.itemCalls)

	require.NoError(t, c.Invalidate(ctx))
	_, err := c.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.itemCalls)
}

func TestItemLookup(t *testing.T) {
	src := &fakeSource{items: []models.MenuItem{
		{ID: 1, Name: "Burger", Available: true},
		{ID: 2, Name: "Soup", Available: false},
	}}
	c := newCatalog(src)
	ctx := context.Background()

	it, err := c.Item(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Burger", it.Name)

	_, err = c.Item(ctx, 2)
	assert.True(t, apperr.IsValidation(err))

	_, err = c.Item(ctx, 3)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTableLookup(t *testing.T) {
	src := &fakeSource{tables: []models.TableRef{{ID: 15, Number: 5, Label: "Table 5"}}}
	c := newCatalog(src)

	tbl, err := c.Table(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Number)

	_, err = c.Table(context.Background(), 16)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSourceErrorIsNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("menu service down")}
	c := newCatalog(src)

	_, err := c.Tables(context.Background())
	require.Error(t, err)

	src.err = nil
	src.tables = []models.TableRef{{ID: 1}}
	tables, err := c.Tables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Equal(t, 2, src.tableCalls)
}

func TestInvalidateDropsOnlyMenuKeys(t *testing.T) {
	src := &fakeSource{
		items:  []models.MenuItem{{ID: 1, Available: true}},
		tables: []models.TableRef{{ID: 1}},
	}
	store := cache.NewMemoryCache(time.Minute)
	c := NewCatalog(src, store, log.New())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "orders:payable", []int{7}))
	_, err := c.Items(ctx)
	require.NoError(t, err)
	_, err = c.Tables(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx))

	_, err = c.Items(ctx)
	require.NoError(t, err)
	_, err = c.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.itemCalls)
	assert.Equal(t, 2, src.tableCalls)

	var other []int
	require.NoError(t, store.Get(ctx, "orders:payable", &other))
	assert.Equal(t, []int{7}, other)
}

func TestFetchIgnoresCallerCancellation(t *testing.T) {
	src := &fakeSource{items: []models.MenuItem{{ID: 1, Available: true}}}
	c := newCatalog(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := c.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	require.NotNil(t, src.lastCtx)
	assert.NoError(t, src.lastCtx.Err())
}
