package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Remote is the remote store adapter. CommitBatch must apply the whole batch
// as one atomic write and deduplicate resubmitted documents by their guid
// field.
type Remote interface {
	Online(ctx context.Context) bool
	CommitBatch(ctx context.Context, collection string, documents []map[string]any) error
}

// HTTPRemote commits batches to an HTTP endpoint as a single JSON POST.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *HTTPRemote) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

type commitRequest struct {
	Collection string           `json:"collection"`
	Documents  []map[string]any `json:"documents"`
}

func (r *HTTPRemote) CommitBatch(ctx context.Context, collection string, documents []map[string]any) error {
	body, err := json.Marshal(commitRequest{Collection: collection, Documents: documents})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/batch", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("remote commit failed: status %d", resp.StatusCode)
	}
	return nil
}
