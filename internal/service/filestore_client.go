package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FilestoreResponse document store API response envelope.
type FilestoreResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	URL    string `json:"url"`
}

// FilestoreClient talks to the hosted document store. Stored URLs are
// opaque strings; the engine never inspects file contents.
type FilestoreClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewFilestoreClient creates a filestore client.
func NewFilestoreClient(baseURL, apiKey string, logger *zap.Logger) *FilestoreClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &FilestoreClient{httpClient: client, logger: logger}
}

// Upload stores the document bytes and returns the opaque URL the
// store assigned.
func (c *FilestoreClient) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var response FilestoreResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&response).
		Post("/files")
	if err != nil {
		c.logger.Error("filestore upload failed",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	if resp.IsError() || response.Status != 0 {
		c.logger.Error("filestore returned error",
			zap.Int("http_status", resp.StatusCode()),
			zap.Int("status", response.Status),
			zap.String("msg", response.Msg),
		)
		return "", fmt.Errorf("filestore error: %s (status: %d)", response.Msg, response.Status)
	}

	c.logger.Info("document uploaded",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)
	return response.URL, nil
}

// GetURL resolves a stored path to a fetchable URL.
func (c *FilestoreClient) GetURL(ctx context.Context, path string) (string, error) {
	var response FilestoreResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		SetResult(&response).
		Get("/files/url")
	if err != nil {
		return "", fmt.Errorf("failed to resolve document url: %w", err)
	}
	if resp.IsError() || response.Status != 0 {
		return "", fmt.Errorf("filestore error: %s (status: %d)", response.Msg, response.Status)
	}
	return response.URL, nil
}
