package client

import (
	"context"
	"net/http"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type MenuClient struct {
	pipeline *Pipeline
	service  string
}

func NewMenuClient(p *Pipeline, serviceName string) *MenuClient {
	return &MenuClient{pipeline: p, service: serviceName}
}

func (c *MenuClient) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := c.pipeline.Do(ctx, Request{
		Op:      "list menu items",
		Service: c.service,
		Method:  http.MethodGet,
		Path:    "/menu-items",
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *MenuClient) ListTables(ctx context.Context) ([]models.TableRef, error) {
	var tables []models.TableRef
	err := c.pipeline.Do(ctx, Request{
		Op:      "list tables",
		Service: c.service,
		Method:  http.MethodGet,
		Path:    "/tables",
	}, &tables)
	if err != nil {
		return nil, err
	}
	return tables, nil
}
