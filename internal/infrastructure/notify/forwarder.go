// Package notify delivers ladder change notifications to push consumers:
// the in-process change feed that backs websocket subscribers, and an
// optional outbound webhook carrying typed events. Delivery is best effort
// and never fails the operation that triggered it.
package notify

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

const (
	defaultWebhookTimeout = 10 * time.Second
	defaultWebhookWorkers = 4
	webhookBodyLogLimit   = 2048
	releaseDrainTimeout   = 2 * time.Second
)

type WebhookForwarderConfig struct {
	TargetURL      string
	AuthToken      string
	Timeout        time.Duration
	Workers        int
	Retries        int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookForwarder posts event envelopes to the configured endpoint from a
// bounded worker pool. When every worker is busy the envelope is dropped
// with a warning rather than stalling the write path that produced it.
type WebhookForwarder struct {
	client         *fasthttp.Client
	targetURL      string
	authToken      string
	timeout        time.Duration
	retries        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	pool           *ants.Pool
}

// Envelope is the webhook wire format. Table is set for coarse
// table-changed signals, Payload for typed events.
type Envelope struct {
	Type    string    `json:"type"`
	Table   string    `json:"table,omitempty"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

func NewWebhookForwarder(cfg WebhookForwarderConfig, logger *logging.Logger) (*WebhookForwarder, error) {
	targetURL, err := validateWebhookURL(cfg.TargetURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWebhookWorkers
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, crerr.Wrap(err, "create webhook worker pool")
	}

	return &WebhookForwarder{
		client:         &fasthttp.Client{Name: "padel-league-webhook"},
		targetURL:      targetURL,
		authToken:      strings.TrimSpace(cfg.AuthToken),
		timeout:        timeout,
		retries:        retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		pool:           pool,
	}, nil
}

// Enqueue serializes the envelope and hands it to the worker pool. The
// envelope is marshalled on the caller's goroutine so the payload is
// snapshotted before the triggering request returns.
func (f *WebhookForwarder) Enqueue(env Envelope) error {
	if env.SentAt.IsZero() {
		env.SentAt = time.Now().UTC()
	}

	body, err := sonic.Marshal(env)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook envelope")
	}

	if err := f.pool.Submit(func() { f.deliver(env.Type, body) }); err != nil {
		f.logger.Warn("webhook queue full, dropping event", "event", env.Type, "error", err.Error())
		return crerr.Wrap(err, "submit webhook delivery")
	}
	return nil
}

// Close drains in-flight deliveries and releases the worker pool.
func (f *WebhookForwarder) Close() {
	if f.pool != nil {
		_ = f.pool.ReleaseTimeout(releaseDrainTimeout)
	}
}

func (f *WebhookForwarder) deliver(eventType string, body []byte) {
	attempts := f.retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		err := f.post(body)
		if err == nil {
			f.logger.Info("webhook delivered", "event", eventType, "attempt", attempt)
			return
		}
		if !stderrors.Is(err, errWebhookTransient) || attempt == attempts {
			f.logger.Warn("webhook delivery failed",
				"event", eventType,
				"attempt", attempt,
				"error", err.Error(),
				"request_preview", buildWebhookPreview(f.targetURL, eventType, truncateForLog(string(body), webhookBodyLogLimit), f.authToken != ""),
			)
			return
		}
		time.Sleep(retryBackoff(attempt))
	}
}

func (f *WebhookForwarder) post(body []byte) error {
	if f.circuitEnabled {
		if err := f.breaker.Allow(); err != nil {
			return crerr.Wrap(err, "webhook circuit breaker rejected delivery")
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.targetURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if f.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.authToken)
	}
	req.SetBody(body)

	var callErr error
	if err := f.client.DoTimeout(req, resp, f.timeout); err != nil {
		callErr = fmt.Errorf("%w: post webhook url=%s: %v", errWebhookTransient, f.targetURL, err)
	} else if status := resp.StatusCode(); status/100 != 2 {
		raw := strings.TrimSpace(truncateForLog(string(resp.Body()), webhookBodyLogLimit))
		if isRetryableWebhookStatus(status) {
			callErr = fmt.Errorf("%w: post webhook status=%d url=%s body=%s", errWebhookTransient, status, f.targetURL, raw)
		} else {
			callErr = fmt.Errorf("post webhook status=%d url=%s body=%s", status, f.targetURL, raw)
		}
	}

	f.recordCircuitResult(callErr)
	return callErr
}

func (f *WebhookForwarder) recordCircuitResult(err error) {
	if !f.circuitEnabled || f.breaker == nil {
		return
	}
	if err == nil {
		f.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		f.breaker.RecordFailure()
		return
	}
	f.breaker.RecordSuccess()
}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 200 * time.Millisecond
}

func isRetryableWebhookStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildWebhookPreview(targetURL, eventType, body string, withAuth bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(targetURL))
	if withAuth {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	appendPart("-d")
	appendPart(shellQuote(body))
	appendPart("#")
	appendPart(shellQuote("event=" + eventType))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
