// Package gateway implements the contract capability set against the
// wallet/node gateway sidecar, which owns key material and the chain RPC
// connection. The client is deliberately narrow: reads and submits are
// single-attempt, all retries are user-initiated.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/winsznx/celo-guestbook/internal/contract"
)

// Error is the gateway's JSON error envelope.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ contract.Reader = (*Client)(nil)
var _ contract.Submitter = (*Client)(nil)

func (c *Client) AllMessages(ctx context.Context) ([]contract.Message, error) {
	var out struct {
		Messages []contract.Message `json:"messages"`
	}
	if err := c.get(ctx, "/contract/messages", &out); err != nil {
		return nil, &contract.ReadError{Op: "getAllMessages", Err: err}
	}
	return out.Messages, nil
}

func (c *Client) AllTodos(ctx context.Context) ([]contract.Todo, error) {
	var out struct {
		Todos []contract.Todo `json:"todos"`
	}
	if err := c.get(ctx, "/contract/todos", &out); err != nil {
		return nil, &contract.ReadError{Op: "getAllTodos", Err: err}
	}
	return out.Todos, nil
}

func (c *Client) UserTodos(ctx context.Context, account contract.Address) ([]contract.Todo, error) {
	var out struct {
		Todos []contract.Todo `json:"todos"`
	}
	path := "/contract/todos/" + url.PathEscape(string(account))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, &contract.ReadError{Op: "getUserTodos", Err: err}
	}
	return out.Todos, nil
}

func (c *Client) PassBalance(ctx context.Context, account contract.Address) (uint64, error) {
	var out struct {
		Balance uint64 `json:"balance"`
	}
	path := "/contract/balance/" + url.PathEscape(string(account))
	if err := c.get(ctx, path, &out); err != nil {
		return 0, &contract.ReadError{Op: "balanceOf", Err: err}
	}
	return out.Balance, nil
}

func (c *Client) TodoCreationFee(ctx context.Context) (*big.Int, error) {
	var out struct {
		FeeWei string `json:"fee_wei"`
	}
	if err := c.get(ctx, "/contract/todo-fee", &out); err != nil {
		return nil, &contract.ReadError{Op: "todoCreationFee", Err: err}
	}
	fee, ok := new(big.Int).SetString(out.FeeWei, 10)
	if !ok {
		return nil, &contract.ReadError{Op: "todoCreationFee", Err: fmt.Errorf("bad fee_wei %q", out.FeeWei)}
	}
	return fee, nil
}

func (c *Client) Submit(ctx context.Context, req contract.Request) (contract.TxHandle, error) {
	body := map[string]any{
		"operation": req.Operation,
		"args":      req.Args,
	}
	if req.Value != nil {
		body["value_wei"] = req.Value.String()
	}
	var out struct {
		TxHash string `json:"tx_hash"`
	}
	if err := c.post(ctx, "/contract/submit", body, &out); err != nil {
		return "", &contract.SubmissionError{Operation: req.Operation, Err: err}
	}
	if out.TxHash == "" {
		return "", &contract.SubmissionError{Operation: req.Operation, Err: errors.New("gateway returned no tx_hash")}
	}
	return contract.TxHandle(out.TxHash), nil
}

func (c *Client) AwaitConfirmation(ctx context.Context, handle contract.TxHandle) error {
	body := map[string]any{"tx_hash": string(handle)}
	var out struct {
		Status string `json:"status"`
	}
	// Confirmation can outlast the default client timeout; honor only the
	// caller's context here.
	if err := c.do(ctx, http.MethodPost, "/contract/await", body, &out, noTimeout); err != nil {
		return &contract.ConfirmationError{Handle: handle, Err: err}
	}
	if out.Status != "success" {
		return &contract.ConfirmationError{Handle: handle, Err: fmt.Errorf("transaction reverted: status=%s", out.Status)}
	}
	return nil
}

type timeoutMode int

const (
	defaultTimeout timeoutMode = iota
	noTimeout
)

func (c *Client) get(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, dst, defaultTimeout)
}

func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	return c.do(ctx, http.MethodPost, path, body, dst, defaultTimeout)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any, mode timeoutMode) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := c.http
	if mode == noTimeout {
		cp := *c.http
		cp.Timeout = 0
		client = &cp
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}
	if dst == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, dst)
}

func parseError(status int, body []byte) error {
	out := &Error{StatusCode: status}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		out.Message = strings.TrimSpace(string(body))
		if out.Message == "" {
			out.Message = http.StatusText(status)
		}
		return out
	}
	if inner, ok := obj["error"].(map[string]any); ok {
		obj = inner
	}
	out.Code, _ = obj["code"].(string)
	out.Message, _ = obj["message"].(string)
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
