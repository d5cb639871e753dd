package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IClient talks to the AI agents service. Callers own the deadline: every
// method honors ctx cancellation, so generation timeouts are applied with
// context.WithTimeout at the call site.
type IClient interface {
	AnalyzeWriting(ctx context.Context, req AnalyzeWritingRequest) (*AnalyzeWritingResponse, error)
	CheckContent(ctx context.Context, req CheckContentRequest) (*CheckContentResponse, error)
	GenerateImage(ctx context.Context, req GenerateImageRequest) (*GenerateImageResponse, error)
	GenerateVideo(ctx context.Context, req GenerateVideoRequest) (*GenerateVideoResponse, error)
	ValidateImage(ctx context.Context, req ValidateImageRequest) (*ValidateImageResponse, error)
}

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *ClientImpl {
	return &ClientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Per-request deadlines come from ctx; this is a hard upper
			// bound so a missing deadline cannot hang a worker forever.
			Timeout: 15 * time.Minute,
		},
	}
}

func (c *ClientImpl) AnalyzeWriting(ctx context.Context, req AnalyzeWritingRequest) (*AnalyzeWritingResponse, error) {
	var resp AnalyzeWritingResponse
	if err := c.post(ctx, "/analyze-writing", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientImpl) CheckContent(ctx context.Context, req CheckContentRequest) (*CheckContentResponse, error) {
	var resp CheckContentResponse
	if err := c.post(ctx, "/check-content-safety", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientImpl) GenerateImage(ctx context.Context, req GenerateImageRequest) (*GenerateImageResponse, error) {
	var resp GenerateImageResponse
	if err := c.post(ctx, "/generate-image", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientImpl) GenerateVideo(ctx context.Context, req GenerateVideoRequest) (*GenerateVideoResponse, error) {
	var resp GenerateVideoResponse
	if err := c.post(ctx, "/generate-video", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientImpl) ValidateImage(ctx context.Context, req ValidateImageRequest) (*ValidateImageResponse, error) {
	var resp ValidateImageResponse
	if err := c.post(ctx, "/validate-image", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ClientImpl) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal agents request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build agents request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("agents service %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read agents response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("agents service %s returned status %d: %s", path, httpResp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode agents response from %s: %w", path, err)
	}
	return nil
}
