// Package piston runs programs on a Piston instance in a single synchronous call.
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Client)(nil)

type file struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executeRequest struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []file `json:"files"`
	Stdin    string `json:"stdin"`
}

type stage struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Code   *int    `json:"code"`
	Signal *string `json:"signal"`
}

type executeResponse struct {
	Run     stage  `json:"run"`
	Compile *stage `json:"compile"`
	Message string `json:"message"`
}

type Client struct {
	cfg        *config.PistonConfig
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

func NewClient(cfg *config.PistonConfig, logger primary.Logger, opts ...Option) *Client {
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

func (c *Client) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	runtime, ok := c.cfg.Runtimes[strings.ToLower(string(req.Language))]
	if !ok {
		return domain.Failed(domain.ErrorKindConfiguration, fmt.Sprintf("Unsupported language: %s", req.Language), "", 0)
	}

	body, err := json.Marshal(executeRequest{
		Language: runtime.Language,
		Version:  runtime.Version,
		Files:    []file{{Name: runtime.FileName, Content: req.SourceCode}},
		Stdin:    req.Stdin,
	})
	if err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", 0)
	}

	timeout := req.Timeout + c.cfg.ExtraTimeout
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.post(reqCtx, body)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.logger.Error("Failed to execute on piston", "language", req.Language, "error", err)
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return domain.Failed(domain.ErrorKindTransport,
				fmt.Sprintf("API timeout (>%ds)", int(timeout.Round(time.Second)/time.Second)), "", elapsed)
		}
		return domain.Failed(domain.ErrorKindTransport, err.Error(), "", elapsed)
	}

	return c.result(resp, elapsed)
}

func (c *Client) result(resp *executeResponse, elapsed float64) domain.ExecutionResult {
	if resp.Compile != nil && resp.Compile.Code != nil && *resp.Compile.Code != 0 {
		msg := normalizer.FirstNonEmpty(resp.Compile.Stderr, resp.Compile.Stdout)
		return domain.Failed(domain.ErrorKindCompile, msg, "", elapsed)
	}

	run := resp.Run
	if run.Code == nil {
		if run.Signal != nil && *run.Signal == "SIGKILL" {
			return domain.Failed(domain.ErrorKindWallTimeExceeded, "Execution killed (SIGKILL)", run.Stdout, elapsed)
		}
		if run.Signal != nil {
			return domain.Failed(domain.ErrorKindRuntime,
				normalizer.FirstNonEmpty(run.Stderr, "Terminated by "+*run.Signal), run.Stdout, elapsed)
		}
		return domain.Succeeded(run.Stdout, elapsed)
	}
	if *run.Code != 0 {
		return domain.Failed(domain.ErrorKindRuntime, normalizer.ExitMessage(run.Stderr, *run.Code), run.Stdout, elapsed)
	}
	return domain.Succeeded(run.Stdout, elapsed)
}

func (c *Client) post(ctx context.Context, body []byte) (*executeResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build piston request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read piston response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Piston API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out executeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode piston response: %w", err)
	}
	return &out, nil
}
