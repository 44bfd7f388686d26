package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kalambet/vitae/internal/config"
	"github.com/kalambet/vitae/internal/contract"
)

type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var newAPIClient = func() (*apiClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &apiClient{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
		token:   cfg.Server.APIToken,
		// Generation runs on the server and may take as long as the engine allows.
		httpClient: &http.Client{Timeout: requestTimeout(cfg.Engine.Timeout)},
	}, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable, is `vitae start` running? (%w)", err)
	}
	return resp, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, v)
}

func (c *apiClient) getText(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}
	return string(body), nil
}

func (c *apiClient) deleteSession(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/sessions/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// decodeResult reads a Result body. The server answers failed actions with a
// non-2xx status but the same body shape, so those are results, not errors.
func decodeResult[T any](resp *http.Response, v *T) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnprocessableEntity, http.StatusBadGateway, http.StatusServiceUnavailable:
		if err := json.Unmarshal(body, v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
}

func postResult[T any](ctx context.Context, c *apiClient, path string, body any) (contract.Result[T], error) {
	var res contract.Result[T]
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return res, err
	}
	if err := decodeResult(resp, &res); err != nil {
		return res, err
	}
	if !res.OK && res.Kind == "" {
		return res, fmt.Errorf("server returned an unclassified failure")
	}
	return res, nil
}

func (c *apiClient) Generate(ctx context.Context, req contract.GenerationRequest) (contract.Result[contract.Artifact], error) {
	return postResult[contract.Artifact](ctx, c, "/v1/generate", req)
}

func (c *apiClient) Refine(ctx context.Context, req contract.RefinementRequest) (contract.Result[contract.Artifact], error) {
	return postResult[contract.Artifact](ctx, c, "/v1/refine", req)
}

func (c *apiClient) Summarize(ctx context.Context, req contract.FeedbackRequest) (contract.Result[contract.FeedbackSummary], error) {
	return postResult[contract.FeedbackSummary](ctx, c, "/v1/feedback/summary", req)
}

// sessionJSON mirrors the server's session representation.
type sessionJSON struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Markup    string    `json:"markup"`
	Style     string    `json:"style"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type sessionResultJSON struct {
	Session *sessionJSON                       `json:"session"`
	Result  contract.Result[contract.Artifact] `json:"result"`
}

func (c *apiClient) sessionAction(ctx context.Context, path string, body any) (sessionResultJSON, error) {
	var out sessionResultJSON
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return out, err
	}
	if err := decodeResult(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}
