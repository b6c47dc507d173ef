package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// HTTPClient talks to an agent that accepts `{"text": ...}` JSON posts and
// answers with `{"text": ...}`.
type HTTPClient struct {
	name     string
	endpoint string
	token    string

	httpClient *http.Client
}

type HTTPClientOption func(*HTTPClient)

// WithToken sets a bearer token sent with every request.
func WithToken(token string) HTTPClientOption {
	return func(c *HTTPClient) { c.token = token }
}

// WithTimeout bounds every request. Zero keeps the default.
func WithTimeout(timeout time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func NewHTTPClient(name, endpoint string, opts ...HTTPClientOption) (*HTTPClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for agent %s: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint for agent %s: unsupported scheme %q", name, parsed.Scheme)
	}

	client := &HTTPClient{
		name:     name,
		endpoint: parsed.String(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "agent " + name + " " + r.Method
				})),
		},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *HTTPClient) Name() string { return c.name }

func (c *HTTPClient) SendText(ctx context.Context, text string) (Reply, error) {
	ctx, span := tracer.Start(ctx, "send text to agent")
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("agent.name", c.name),
		attribute.String("agent.request_id", requestID),
	)

	reply, err := c.sendText(ctx, requestID, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Reply{}, err
	}

	return reply, nil
}

func (c *HTTPClient) sendText(ctx context.Context, requestID, text string) (Reply, error) {
	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return Reply{}, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("error sending request to agent %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Reply{}, &StatusError{Agent: c.name, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(errBody))}
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("error decoding reply from agent %s: %w", c.name, err)
	}

	logger.DebugContext(ctx, "agent replied", "agent", c.name, "request_id", requestID, "length", len(reply.Text))
	return reply, nil
}
