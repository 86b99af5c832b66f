package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type OrderClient struct {
	pipeline *Pipeline
	service  string
}

func NewOrderClient(p *Pipeline, serviceName string) *OrderClient {
	return &OrderClient{pipeline: p, service: serviceName}
}

// CreateOrder posts the cart. Retries of the same draft reuse idempotencyKey.
func (c *OrderClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.SubmittedOrder, error) {
	var order models.SubmittedOrder
	err := c.pipeline.Do(ctx, Request{
		Op:             "create order",
		Service:        c.service,
		Method:         http.MethodPost,
		Path:           "/orders",
		Body:           req,
		IdempotencyKey: idempotencyKey,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListPayableOrders returns the orders in any of the filter's statuses.
func (c *OrderClient) ListPayableOrders(ctx context.Context, filter models.PayableFilter) ([]models.SubmittedOrder, error) {
	q := url.Values{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q.Set("status", strings.Join(statuses, ","))
	}

	var orders []models.SubmittedOrder
	err := c.pipeline.Do(ctx, Request{
		Op:      "list payable orders",
		Service: c.service,
		Method:  http.MethodGet,
		Path:    "/orders",
		Query:   q,
	}, &orders)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.SubmittedOrder{}
	}
	return orders, nil
}

func (c *OrderClient) GetOrder(ctx context.Context, orderID int) (*models.SubmittedOrder, error) {
	id := strconv.Itoa(orderID)
	var order models.SubmittedOrder
	err := c.pipeline.Do(ctx, Request{
		Op:       "get order",
		Service:  c.service,
		Method:   http.MethodGet,
		Path:     "/orders/" + id,
		Resource: "order",
		ID:       id,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
