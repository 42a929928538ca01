package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

// HTTPClient talks JSON to the server API and raw bytes to presigned URLs.
// SetToken must be called after login before any API method is used.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken stores the bearer token attached to every API request.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling server: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

// statusError maps HTTP status codes to the shared sentinel errors so
// callers can branch with errors.Is.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrUnauthorized
	case code == http.StatusNotFound:
		return common.ErrNotFound
	case code == http.StatusBadRequest:
		return common.ErrValidation
	default:
		return fmt.Errorf("server returned status %d: %w", code, common.ErrInternal)
	}
}

func (c *HTTPClient) UploadIntent(ctx context.Context, req *UploadIntentRequest) (*UploadIntentResult, error) {
	result := &UploadIntentResult{}
	if err := c.do(ctx, http.MethodPost, "/api/files/upload-url", req, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) MarkUploaded(ctx context.Context, ownerID, fileID string) error {
	body := map[string]string{"ownerId": ownerID, "fileId": fileID}
	return c.do(ctx, http.MethodPost, "/api/files/mark-uploaded", body, nil)
}

func (c *HTTPClient) ListFiles(ctx context.Context) ([]*models.FileRecord, error) {
	var result []*models.FileRecord
	if err := c.do(ctx, http.MethodGet, "/api/files", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) DownloadURL(ctx context.Context, fileID string) (string, error) {
	var result struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/files/download-url/"+url.PathEscape(fileID), nil, &result); err != nil {
		return "", err
	}
	return result.DownloadURL, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), nil, nil)
}

func (c *HTTPClient) Changes(ctx context.Context, since time.Time) (*models.Delta, error) {
	path := "/api/sync/changes"
	if !since.IsZero() {
		path += "?since=" + url.QueryEscape(since.Format(time.RFC3339))
	}

	delta := &models.Delta{}
	if err := c.do(ctx, http.MethodGet, path, nil, delta); err != nil {
		return nil, err
	}
	return delta, nil
}

// PutObject uploads raw bytes to a presigned URL. Any failure maps to
// ErrTransferFailed; the caller restarts the upload protocol from a fresh
// intent.
func (c *HTTPClient) PutObject(ctx context.Context, rawURL, mimeType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, body)
	if err != nil {
		return fmt.Errorf("error creating upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error uploading bytes: %w", common.ErrTransferFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload returned status %d: %w", resp.StatusCode, common.ErrTransferFailed)
	}
	return nil
}

// GetObject downloads raw bytes from a presigned URL.
func (c *HTTPClient) GetObject(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading bytes: %w", common.ErrTransferFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download returned status %d: %w", resp.StatusCode, common.ErrTransferFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading download body: %w", common.ErrTransferFailed)
	}
	return data, nil
}
