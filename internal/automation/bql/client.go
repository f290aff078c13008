// Package bql executes browser batches on a Browserless instance through its
// BrowserQL graphql endpoint.
package bql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/browser"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/pkg/textutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("ratequote.internal.automation.bql")

const (
	report_client_execute = "client.execute"
)

const DefaultEndpoint = "https://production-sfo.browserless.io/chromium/bql"

type Options struct {
	Endpoint string
	// Token is sent as the token query parameter.
	Token string
	// Timeout bounds the whole http exchange.
	Timeout time.Duration
	// RequestsPerSecond limits outgoing batches, 0 means unlimited.
	RequestsPerSecond float64
	Operation         string
	Dump              telemetry.DumpOutput
}

// Client is an automation.Executor.
type Client struct {
	http      *resty.Client
	token     string
	endpoint  string
	operation string
	tel       telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	tel = telemetry.NewScopedAPI("bql", tel)

	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 58 * time.Second
	}
	if opts.Operation == "" {
		opts.Operation = "FillAndPrice"
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("content-type", "application/json")

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	telemetry.InstrumentResty(httpClient, tel, telemetry.RestyOptions{
		Tracer: tracer,
		Output: opts.Dump,
	})

	return &Client{
		http:      httpClient,
		token:     opts.Token,
		endpoint:  opts.Endpoint,
		operation: opts.Operation,
		tel:       tel,
	}
}

type graphqlRequest struct {
	Name     string `json:"operationName"`
	Query    string `json:"query"`
	Variable any    `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphqlError             `json:"errors"`
}

type evaluateResult struct {
	Value json.RawMessage `json:"value"`
}

func (c *Client) Execute(ctx context.Context, steps []browser.Step) (automation.Results, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.Int("steps", len(steps)))

	query, err := RenderMutation(c.operation, steps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render mutation")
		return automation.Results{}, err
	}

	body, err := json.Marshal(graphqlRequest{
		Name:     c.operation,
		Query:    query,
		Variable: map[string]any{},
	})
	if err != nil {
		return automation.Results{}, fmt.Errorf("bql: json marshal: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reach automation service")
		c.tel.ReportBroken(report_client_execute, fmt.Errorf("fetch: %w", err))
		return automation.Results{}, &automation.TransportError{Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		err := &automation.TransportError{
			Status: res.StatusCode(),
			Body:   textutil.Truncate(res.String(), 300),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx response")
		c.tel.ReportBroken(report_client_execute, err, slog.Int("status", res.StatusCode()))
		return automation.Results{}, err
	}

	results, err := decodeResults(steps, res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		c.tel.ReportBroken(report_client_execute, err)
		return automation.Results{}, &automation.TransportError{Status: res.StatusCode(), Err: err}
	}
	span.SetAttributes(attribute.Int("errors", len(results.StepErrors())+len(results.BatchErrors)))
	return results, nil
}

func decodeResults(steps []browser.Step, body []byte) (automation.Results, error) {
	var parsed graphqlResponse
	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return automation.Results{}, fmt.Errorf("bql: json unmarshal: %w", err)
	}

	results := automation.NewResults()
	kinds := map[string]browser.StepKind{}
	for _, step := range steps {
		kinds[step.Name] = step.Kind
	}

	for _, step := range steps {
		raw, ok := parsed.Data[step.Name]
		if !ok {
			continue
		}
		result := automation.StepResult{Name: step.Name}
		if step.Kind == browser.Evaluate {
			var value evaluateResult
			if string(raw) != "null" {
				err := json.Unmarshal(raw, &value)
				if err != nil {
					return automation.Results{}, fmt.Errorf("bql: decode %s: %w", step.Name, err)
				}
			}
			result.Value = value.Value
		} else {
			result.Value = raw
		}
		results.Set(result)
	}

	for _, e := range parsed.Errors {
		name := errorStep(e.Path)
		if _, known := kinds[name]; !known {
			results.BatchErrors = append(results.BatchErrors, e.Message)
			continue
		}
		results.Set(automation.StepResult{Name: name, Err: e.Message})
	}
	return results, nil
}

func errorStep(path []any) string {
	if len(path) == 0 {
		return ""
	}
	switch v := path[0].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
