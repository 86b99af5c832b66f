// Package client talks to the backend Order, Payment and Menu services.
// Every request goes through one Pipeline which resolves the service URL,
// attaches the session token and maps response statuses onto apperr types.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/discovery"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerRequestID      = "X-Request-ID"
	maxErrorBody         = 4 << 10
)

type Option func(*Pipeline)

// WithTokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
func WithTokenSource(token func() string) Option {
	return func(p *Pipeline) { p.token = token }
}

// WithUnauthorizedHandler is called once per 401 response before the error
// is returned to the caller.
func WithUnauthorizedHandler(fn func()) Option {
	return func(p *Pipeline) { p.onUnauthorized = fn }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.http = c }
}

func WithLogger(l log.FieldLogger) Option {
	return func(p *Pipeline) { p.logger = l }
}

type Pipeline struct {
	http           *http.Client
	resolver       discovery.Resolver
	token          func() string
	onUnauthorized func()
	logger         log.FieldLogger
}

func NewPipeline(resolver discovery.Resolver, timeout time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		http:     &http.Client{Timeout: timeout},
		resolver: resolver,
		token:    func() string { return "" },
		logger:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request describes one backend call. Resource and ID name the target in a
// NotFoundError when the service answers 404.
type Request struct {
	Op             string
	Service        string
	Method         string
	Path           string
	Query          url.Values
	Body           interface{}
	IdempotencyKey string
	Resource       string
	ID             string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// Do performs the request and decodes a 2xx JSON body into out (if non-nil).
func (p *Pipeline) Do(ctx context.Context, r Request, out interface{}) error {
	base, err := p.resolver.ServiceURL(r.Service)
	if err != nil {
		return &apperr.ServiceError{Op: r.Op, Err: err}
	}

	target := strings.TrimRight(base, "/") + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", r.Op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", r.Op)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := p.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if r.IdempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, r.IdempotencyKey)
	}

	logger := p.logger.WithFields(log.Fields{
		"op":         r.Op,
		"service":    r.Service,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		logger.WithError(err).Warn("backend request failed")
		return &apperr.ServiceError{Op: r.Op, Err: err}
	}
	defer resp.Body.Close()

	logger.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("backend request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &apperr.ServiceError{Op: r.Op, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "decode response")}
		}
		return nil
	}

	return p.statusError(r, resp)
}

func (p *Pipeline) statusError(r Request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return apperr.ValidationError{Field: eb.Field, Message: msg}
	case http.StatusNotFound:
		return apperr.NotFoundError{Resource: r.Resource, ID: r.ID}
	case http.StatusUnauthorized:
		if p.onUnauthorized != nil {
			p.onUnauthorized()
		}
		return &apperr.ServiceError{Op: r.Op, StatusCode: resp.StatusCode, Err: apperr.ErrUnauthorized}
	default:
		return &apperr.ServiceError{Op: r.Op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
}
