package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
)

func testDocs() []map[string]any {
	return []map[string]any{
		{"guid": "g1", "latitude": -6.2, "longitude": 106.8},
		{"guid": "g2", "latitude": -6.3, "longitude": 106.9},
	}
}

func TestHTTPRemoteCommitBatch(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test/")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "http://remote.test/batch",
		func(req *http.Request) (*http.Response, error) {
			var body commitRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, "bad json"), nil
			}
			if body.Collection != "locations" || len(body.Documents) != 2 {
				return httpmock.NewStringResponse(http.StatusBadRequest, "bad payload"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	if err := remote.CommitBatch(context.Background(), "locations", testDocs()); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestHTTPRemoteCommitBatchServerError(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "http://remote.test/batch",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	if err := remote.CommitBatch(context.Background(), "locations", testDocs()); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestHTTPRemoteCommitBatchNetworkError(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "http://remote.test/batch",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	if err := remote.CommitBatch(context.Background(), "locations", testDocs()); err == nil {
		t.Fatalf("expected network error")
	}
}

func TestHTTPRemoteOnline(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodHead, "http://remote.test/health",
		httpmock.NewStringResponder(http.StatusOK, ""))

	if !remote.Online(context.Background()) {
		t.Fatalf("expected online")
	}
}

func TestHTTPRemoteOffline(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodHead, "http://remote.test/health",
		httpmock.NewErrorResponder(errors.New("no route to host")))

	if remote.Online(context.Background()) {
		t.Fatalf("expected offline")
	}
}

func TestHTTPRemoteServerDownIsOffline(t *testing.T) {
	remote := NewHTTPRemote("http://remote.test")
	httpmock.ActivateNonDefault(remote.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodHead, "http://remote.test/health",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	if remote.Online(context.Background()) {
		t.Fatalf("expected offline on 5xx health")
	}
}
