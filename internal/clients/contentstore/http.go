package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/contentforge/moderation-backend/internal/logger"
	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
	"github.com/contentforge/moderation-backend/internal/pkg/httpx"
	"github.com/contentforge/moderation-backend/internal/utils"
)

type httpStore struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
	token   string
}

// NewHTTPStore talks to the host content store's publish API. Base URL and
// token come from CONTENT_STORE_URL / CONTENT_STORE_TOKEN; the request
// timeout bounds how long a transition can block on the store.
func NewHTTPStore(log *logger.Logger) (Store, error) {
	storeLog := log.With("client", "ContentStore")
	baseURL := strings.TrimRight(utils.GetEnv("CONTENT_STORE_URL", "", log), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing env var CONTENT_STORE_URL")
	}
	token := utils.GetEnv("CONTENT_STORE_TOKEN", "", log)
	timeoutSeconds := utils.GetEnvAsInt("CONTENT_STORE_TIMEOUT_SECONDS", 10, log)
	return &httpStore{
		log:     storeLog,
		client:  &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		baseURL: baseURL,
		token:   token,
	}, nil
}

type publishResponse struct {
	Reference string `json:"reference"`
}

func (s *httpStore) Publish(ctx context.Context, payload datatypes.JSON) (string, error) {
	body, err := json.Marshal(map[string]interface{}{"payload": json.RawMessage(payload)})
	if err != nil {
		return "", apperrors.NewPublishError("publish", false, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/content", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewPublishError("publish", false, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.NewPublishError("publish", httpx.IsRetryableError(err), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		cause := fmt.Errorf("content store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return "", apperrors.NewPublishError("publish", httpx.IsRetryableHTTPStatus(resp.StatusCode), cause)
	}
	var parsed publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewPublishError("publish", false, fmt.Errorf("decode publish response: %w", err))
	}
	if parsed.Reference == "" {
		return "", apperrors.NewPublishError("publish", false, fmt.Errorf("content store returned empty reference"))
	}
	return parsed.Reference, nil
}

func (s *httpStore) Unpublish(ctx context.Context, reference string) error {
	if reference == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/content/"+reference, nil)
	if err != nil {
		return apperrors.NewPublishError("unpublish", false, err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.NewPublishError("unpublish", httpx.IsRetryableError(err), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		// Already gone, nothing left to revert.
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		cause := fmt.Errorf("content store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return apperrors.NewPublishError("unpublish", httpx.IsRetryableHTTPStatus(resp.StatusCode), cause)
	}
	return nil
}
