package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cv-intake/internal/status"
)

// DefaultTimeout bounds every webhook call. There is no retry here;
// unresolved records are picked up again by the next scheduled scan.
const DefaultTimeout = 30 * time.Second

// Result is the uniform outcome of a webhook call. StatusCode 0 is the
// sentinel for "no HTTP response obtained"; ResponseText then carries
// the transport error description instead of a body snippet.
type Result struct {
	Success      bool
	StatusCode   int
	ResponseText string
}

// HistoryStatus renders the result as the auxiliary status string
// recorded in a record's history.
func (r Result) HistoryStatus() string {
	if r.StatusCode > 0 {
		return status.WebhookStatus(r.StatusCode, r.ResponseText)
	}
	return status.WebhookError(r.ResponseText)
}

type Client struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewClient(timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) post(ctx context.Context, url string, payload interface{}, name string) (*http.Response, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "marshal payload: " + err.Error(), err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "build request: " + err.Error(), err
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Infow("calling webhook", "webhook", name, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := "Webhook request error: " + err.Error()
		if isTimeout(err) {
			msg = "Webhook timeout: " + err.Error()
		}
		c.logger.Errorw("webhook call failed", "webhook", name, "error", err)
		return nil, msg, err
	}
	return resp, "", nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// maxParseLen bounds how much of a response body is read when the body
// itself carries the outcome. Surfaced text is truncated separately so
// classification never runs on a cut-off JSON document.
const maxParseLen = 1 << 20

func readBody(resp *http.Response) []byte {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxParseLen))
	return raw
}

func readSnippet(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, status.ResponseTextMaxLen))
	return string(raw)
}

func truncateText(body []byte) string {
	if len(body) > status.ResponseTextMaxLen {
		body = body[:status.ResponseTextMaxLen]
	}
	return string(body)
}

func statusCodeSuccess(code int) bool {
	return code >= 200 && code <= 299
}

// Call posts payload to url and classifies the outcome by HTTP status
// code: success iff 2xx. Transport failures yield {false, 0, error}.
func (c *Client) Call(ctx context.Context, url string, payload interface{}, name string) Result {
	resp, errMsg, err := c.post(ctx, url, payload, name)
	if err != nil {
		return Result{Success: false, StatusCode: 0, ResponseText: errMsg}
	}
	defer resp.Body.Close()

	snippet := readSnippet(resp)
	c.logger.Infow("webhook response", "webhook", name,
		"status_code", resp.StatusCode, "response_text", snippet)
	return Result{
		Success:      statusCodeSuccess(resp.StatusCode),
		StatusCode:   resp.StatusCode,
		ResponseText: snippet,
	}
}

// fieldOutcome classifies what a response body says about success before
// any status-code fallback is applied. Keeping the cascade as discrete
// outcomes makes its steps individually testable.
type fieldOutcome int

const (
	explicitTrue fieldOutcome = iota
	explicitFalse
	indeterminate
)

// successFieldOutcome reads the "success" key of a JSON body. Booleans
// are taken directly; the strings "true"/"false" (case-insensitive) map
// to their boolean. Anything else, a missing key, or an unparseable body
// is indeterminate.
func successFieldOutcome(body []byte) fieldOutcome {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return indeterminate
	}
	raw, ok := parsed["success"]
	if !ok {
		return indeterminate
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return explicitTrue
		}
		return explicitFalse
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return explicitTrue
		case "false":
			return explicitFalse
		}
	}
	return indeterminate
}

// CallWithSuccessField posts payload to url and determines success from
// the response body's "success" field, falling back to the status-code
// policy when the field is absent, unparseable, or of an unsupported
// type.
func (c *Client) CallWithSuccessField(ctx context.Context, url string, payload interface{}, name string) Result {
	resp, errMsg, err := c.post(ctx, url, payload, name)
	if err != nil {
		return Result{Success: false, StatusCode: 0, ResponseText: errMsg}
	}
	defer resp.Body.Close()

	body := readBody(resp)
	snippet := truncateText(body)
	c.logger.Infow("webhook response", "webhook", name,
		"status_code", resp.StatusCode, "response_text", snippet)

	result := Result{StatusCode: resp.StatusCode, ResponseText: snippet}
	switch successFieldOutcome(body) {
	case explicitTrue:
		result.Success = true
	case explicitFalse:
		result.Success = false
	default:
		c.logger.Warnw("no usable success field, falling back to status code",
			"webhook", name, "status_code", resp.StatusCode)
		result.Success = statusCodeSuccess(resp.StatusCode)
	}
	return result
}
