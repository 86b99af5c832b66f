package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type PaymentClient struct {
	pipeline *Pipeline
	service  string
}

func NewPaymentClient(p *Pipeline, serviceName string) *PaymentClient {
	return &PaymentClient{pipeline: p, service: serviceName}
}

func (c *PaymentClient) SubmitPayment(ctx context.Context, req models.PaymentRequest, idempotencyKey string) (*models.PaymentResult, error) {
	var result models.PaymentResult
	err := c.pipeline.Do(ctx, Request{
		Op:             "submit payment",
		Service:        c.service,
		Method:         http.MethodPost,
		Path:           "/payments",
		Body:           req,
		IdempotencyKey: idempotencyKey,
		Resource:       "order",
		ID:             strconv.Itoa(req.OrderID),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
