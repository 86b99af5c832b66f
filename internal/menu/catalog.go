// Package menu serves the menu items and dining tables the order panel
// browses, read through the cache in front of the Menu Service.
package menu

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

const (
	keyPrefix = "menu:"
	itemsKey  = keyPrefix + "items"
	tablesKey = keyPrefix + "tables"
)

type Source interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	ListTables(ctx context.Context) ([]models.TableRef, error)
}

type Catalog struct {
	source Source
	cache  cache.Cache
	group  singleflight.Group
	logger log.FieldLogger
}

func NewCatalog(source Source, c cache.Cache, logger log.FieldLogger) *Catalog {
	return &Catalog{source: source, cache: c, logger: logger}
}

func (c *Catalog) Items(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.cache.Get(ctx, itemsKey, &items); err == nil {
		return items, nil
	} else if err != cache.ErrMiss {
		c.logger.WithError(err).Warn("menu cache read failed")
	}

	v, err, _ := c.group.Do(itemsKey, func() (interface{}, error) {
		// shared by every waiter, so one caller's cancellation must not fail the rest
		ctx := context.WithoutCancel(ctx)
		items, err := c.source.ListMenuItems(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, itemsKey, items); err != nil {
			c.logger.WithError(err).Warn("failed to cache menu items")
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MenuItem), nil
}

func (c *Catalog) Tables(ctx context.Context) ([]models.TableRef, error) {
	var tables []models.TableRef
	if err := c.cache.Get(ctx, tablesKey, &tables); err == nil {
		return tables, nil
	} else if err != cache.ErrMiss {
		c.logger.WithError(err).Warn("menu cache read failed")
	}

	v, err, _ := c.group.Do(tablesKey, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		tables, err := c.source.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, tablesKey, tables); err != nil {
			c.logger.WithError(err).Warn("failed to cache tables")
		}
		return tables, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TableRef), nil
}

// Item looks up an available menu item by id.
func (c *Catalog) Item(ctx context.Context, id int) (models.MenuItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return models.MenuItem{}, errors.Wrap(err, "load menu")
	}
	for _, it := range items {
		if it.ID != id {
			continue
		}
		if !it.Available {
			return models.MenuItem{}, apperr.ValidationError{Field: "menu_item_id", Message: it.Name + " is not available"}
		}
		return it, nil
	}
	return models.MenuItem{}, apperr.NotFoundError{Resource: "menu item", ID: strconv.Itoa(id)}
}

func (c *Catalog) Table(ctx context.Context, id int) (models.TableRef, error) {
	tables, err := c.Tables(ctx)
	if err != nil {
		return models.TableRef{}, errors.Wrap(err, "load tables")
	}
	for _, t := range tables {
		if t.ID == id {
			return t, nil
		}
	}
	return models.TableRef{}, apperr.NotFoundError{Resource: "table", ID: strconv.Itoa(id)}
}

// Invalidate drops every cached menu list so the next read goes to the Menu
// Service.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if err := c.cache.DeleteByPrefix(ctx, keyPrefix); err != nil {
		return errors.Wrap(err, "invalidate menu cache")
	}
	c.logger.Info("menu cache invalidated")
	return nil
}
