// Package pool holds the payable orders shown in the payment panel. Both
// panels read it; every mutation that can change it invalidates it.
package pool

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

const cacheKey = "orders:payable"

type OrderSource interface {
	ListPayableOrders(ctx context.Context, filter models.PayableFilter) ([]models.SubmittedOrder, error)
}

type Pool struct {
	source OrderSource
	filter models.PayableFilter
	cache  cache.Cache
	group  singleflight.Group
	logger log.FieldLogger

	// generation moves on every invalidation so a fetch that started before
	// it neither serves nor caches its result to later readers.
	generation atomic.Uint64
}

func New(source OrderSource, filter models.PayableFilter, c cache.Cache, logger log.FieldLogger) *Pool {
	return &Pool{source: source, filter: filter, cache: c, logger: logger}
}

// List returns the payable orders, from cache when fresh.
func (p *Pool) List(ctx context.Context) ([]models.SubmittedOrder, error) {
	var orders []models.SubmittedOrder
	if err := p.cache.Get(ctx, cacheKey, &orders); err == nil {
		return orders, nil
	} else if err != cache.ErrMiss {
		p.logger.WithError(err).Warn("pool cache read failed")
	}

	gen := p.generation.Load()
	v, err, _ := p.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		// shared by every waiter, so one caller's cancellation must not fail the rest
		fetchCtx := context.WithoutCancel(ctx)
		orders, err := p.source.ListPayableOrders(fetchCtx, p.filter)
		if err != nil {
			return nil, err
		}
		p.store(fetchCtx, gen, orders)
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.SubmittedOrder), nil
}

// store caches a fetch made at generation gen. Invalidate bumps the
// generation before deleting, so re-checking after Set catches an
// invalidation that landed between the first check and the write.
func (p *Pool) store(ctx context.Context, gen uint64, orders []models.SubmittedOrder) {
	if p.generation.Load() != gen {
		return
	}
	if err := p.cache.Set(ctx, cacheKey, orders); err != nil {
		p.logger.WithError(err).Warn("failed to cache payable orders")
		return
	}
	if p.generation.Load() != gen {
		if err := p.cache.Delete(ctx, cacheKey); err != nil {
			p.logger.WithError(err).Warn("failed to drop stale payable orders")
		}
	}
}

// Find returns the pooled order with the given id.
func (p *Pool) Find(ctx context.Context, orderID int) (models.SubmittedOrder, error) {
	orders, err := p.List(ctx)
	if err != nil {
		return models.SubmittedOrder{}, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return models.SubmittedOrder{}, apperr.NotFoundError{Resource: "payable order", ID: strconv.Itoa(orderID)}
}

// Invalidate forces the next List to re-query the Order Service.
func (p *Pool) Invalidate(ctx context.Context) {
	p.generation.Add(1)
	if err := p.cache.Delete(ctx, cacheKey); err != nil {
		p.logger.WithError(err).Warn("failed to invalidate payable pool")
	}
}

// Run invalidates and prefetches the pool every interval until ctx ends.
func (p *Pool) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Invalidate(ctx)
			if _, err := p.List(ctx); err != nil && ctx.Err() == nil {
				p.logger.WithError(err).Warn("payable pool refresh failed")
			}
		}
	}
}
