// Package judge0 runs programs on a Judge0 instance: one submission followed by
// polling until the submission reaches a terminal status.
package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Client)(nil)

type Client struct {
	cfg        *config.Judge0Config
	httpClient *http.Client
	logger     primary.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(cfg *config.Judge0Config, logger primary.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requestError is a failed round trip already worded for the result
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func (c *Client) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	langID, ok := c.cfg.Language[strings.ToLower(string(req.Language))]
	if !ok {
		return domain.Failed(domain.ErrorKindConfiguration, fmt.Sprintf("Unsupported language: %s", req.Language), "", 0)
	}

	start := time.Now()
	token, err := c.submit(ctx, langID, req)
	if err != nil {
		c.logger.Error("Failed to submit to judge0", "error", err)
		return domain.Failed(domain.ErrorKindTransport, c.describe(err), "", time.Since(start).Seconds())
	}

	c.logger.Debug("Submitted to judge0", "token", token, "language", req.Language)
	return c.await(ctx, token, start)
}

func (c *Client) submit(ctx context.Context, langID int, req domain.ExecutionRequest) (string, error) {
	secs := req.TimeoutSeconds()
	payload := submissionRequest{
		LanguageID:    langID,
		SourceCode:    req.SourceCode,
		Stdin:         req.Stdin,
		CPUTimeLimit:  min(secs, c.cfg.CPUTimeLimitCap),
		CPUExtraTime:  c.cfg.CPUExtraTime,
		WallTimeLimit: min(secs+5, c.cfg.WallTimeLimitCap),
		MemoryLimit:   c.cfg.MemoryLimitKB,
		StackLimit:    c.cfg.StackLimitKB,
		MaxFileSize:   c.cfg.MaxFileSizeKB,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/submissions?base64_encoded=false&wait=false"
	status, respBody, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", &requestError{msg: fmt.Sprintf("Judge0 API error: %d - %s", status, strings.TrimSpace(string(respBody)))}
	}

	var tok submissionToken
	if err := json.Unmarshal(respBody, &tok); err != nil || tok.Token == "" {
		return "", &requestError{msg: "No token received from Judge0"}
	}
	return tok.Token, nil
}

// await polls the submission until it is terminal, the attempt budget runs out or
// the hard deadline passes.
func (c *Client) await(ctx context.Context, token string, start time.Time) domain.ExecutionResult {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollDeadline())
	defer cancel()

	interval := c.cfg.PollInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	attempts := 0
	for attempts < c.cfg.MaxPollAttempts {
		select {
		case <-pollCtx.Done():
			return c.interrupted(ctx, attempts, start)
		case <-timer.C:
		}
		attempts++

		sub, err := c.fetch(pollCtx, token)
		if err != nil {
			if pollCtx.Err() != nil {
				return c.interrupted(ctx, attempts, start)
			}
			c.logger.Error("Failed to poll judge0", "token", token, "error", err)
			return domain.Failed(domain.ErrorKindTransport, c.describe(err), "", time.Since(start).Seconds())
		}

		class := normalizer.Judge0Status(sub.Status.ID)
		if class.Pending {
			interval = c.nextInterval(interval)
			timer.Reset(interval)
			continue
		}
		return c.result(sub, class, start)
	}

	c.logger.Warn("Judge0 submission never reached a terminal status", "token", token, "attempts", attempts)
	return domain.Failed(domain.ErrorKindTransport,
		fmt.Sprintf("Execution timeout after %d attempts", c.cfg.MaxPollAttempts), "", time.Since(start).Seconds())
}

func (c *Client) interrupted(parent context.Context, attempts int, start time.Time) domain.ExecutionResult {
	if err := parent.Err(); err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution cancelled: %v", err), "", time.Since(start).Seconds())
	}
	return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution timeout after %d attempts", attempts), "", time.Since(start).Seconds())
}

func (c *Client) result(sub *submission, class normalizer.StatusClass, start time.Time) domain.ExecutionResult {
	elapsed := float64(sub.Time)
	if elapsed == 0 {
		elapsed = time.Since(start).Seconds()
	}

	stdout, err := normalizer.DecodeBase64(sub.Stdout)
	if err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", elapsed)
	}
	if class.Accepted {
		return domain.Succeeded(stdout, elapsed)
	}
	if class.Kind == domain.ErrorKindUnknownStatus {
		return domain.Failed(class.Kind, fmt.Sprintf("Unknown status: %d", sub.Status.ID), stdout, elapsed)
	}

	stderr, err := normalizer.DecodeBase64(sub.Stderr)
	if err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), stdout, elapsed)
	}
	compileOutput, err := normalizer.DecodeBase64(sub.CompileOutput)
	if err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), stdout, elapsed)
	}
	msg := normalizer.FirstNonEmpty(stderr, compileOutput, sub.Status.Description, "Unknown error")
	return domain.Failed(class.Kind, msg, stdout, elapsed)
}

func (c *Client) fetch(ctx context.Context, token string) (*submission, error) {
	endpoint := fmt.Sprintf("%s/submissions/%s?base64_encoded=true&fields=*",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(token))
	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &requestError{msg: fmt.Sprintf("Failed to get result: %d", status)}
	}

	var sub submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("failed to decode judge0 submission: %w", err)
	}
	return &sub, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build judge0 request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		httpReq.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read judge0 response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) describe(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.msg
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("API timeout (>%ds)", int(c.cfg.RequestTimeout.Round(time.Second)/time.Second))
	}
	return fmt.Sprintf("Execution error: %v", err)
}

func (c *Client) nextInterval(current time.Duration) time.Duration {
	if c.cfg.PollBackoff <= 1 {
		return current
	}
	next := time.Duration(float64(current) * c.cfg.PollBackoff)
	if c.cfg.MaxPollInterval > 0 && next > c.cfg.MaxPollInterval {
		return c.cfg.MaxPollInterval
	}
	return next
}

// pollDeadline is the hard bound on the whole polling phase
func (c *Client) pollDeadline() time.Duration {
	longest := max(c.cfg.PollInterval, c.cfg.MaxPollInterval)
	return time.Duration(c.cfg.MaxPollAttempts) * (longest + c.cfg.RequestTimeout)
}
