package tracking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/wernerjr/gpstracker/internal/store"
)

func newTestApp(t *testing.T, ctrl *Controller) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/tracking"), ctrl)
	return app
}

func TestTrackingStartStopStatus(t *testing.T) {
	ctrl, _, _ := newTestController(t, testConfig())
	app := newTestApp(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/tracking/start", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("start status: %v", err)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.IsTracking || snap.SessionID == "" {
		t.Fatalf("expected active session: %+v", snap)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracking/status", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/tracking/stop", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status: %v", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.IsTracking {
		t.Fatalf("expected idle after stop")
	}
}

func TestTrackingStartPermissionDenied(t *testing.T) {
	ctrl, _, src := newTestController(t, testConfig())
	src.err = ErrPermissionDenied
	app := newTestApp(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/tracking/start", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v %v", resp.StatusCode, err)
	}
}

func TestTrackingFixIngestion(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	ctrl := NewController(store.NewStore(mock), nil, nil, testConfig())
	app := newTestApp(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/tracking/start", nil)
	if resp, err := app.Test(req); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("start: %v", err)
	}

	expectInsertReturning(mock, 1)

	body, _ := json.Marshal(Fix{Latitude: -6.2, Longitude: 106.8, AccuracyM: 8, SpeedMps: mps(10), Timestamp: 1000})
	req = httptest.NewRequest(http.MethodPost, "/tracking/fixes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("fix status: %v", err)
	}
	ctrl.writes.Wait()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrackingFixBadRequest(t *testing.T) {
	ctrl, _, _ := newTestController(t, testConfig())
	app := newTestApp(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/tracking/fixes", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}
