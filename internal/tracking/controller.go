package tracking

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wernerjr/gpstracker/internal/config"
	"github.com/wernerjr/gpstracker/internal/shared/geo"
	"github.com/wernerjr/gpstracker/internal/store"
	"github.com/wernerjr/gpstracker/internal/stream"
)

const (
	SpeedSourceDevice  = "device"
	SpeedSourceDerived = "derived"
)

// Controller owns the tracking session lifecycle. It consumes position fixes,
// derives speed statistics and appends one record per accepted fix to the
// store while a session is active. The position subscription is independent
// of session state: the controller gates persistence, not delivery.
type Controller struct {
	store  *store.Store
	hub    *stream.Hub
	source Source
	cfg    config.Config

	now func() time.Time

	writes sync.WaitGroup

	mu           sync.Mutex
	sub          Subscription
	tracking     bool
	sessionID    string
	window       *speedWindow
	currentKmh   float64
	hasFix       bool
	lat, lng     float64
	accuracyM    float64
	lastAccepted *Fix
	hasSaved     bool
	lastSavedAt  time.Time
	lastSavedLat float64
	lastSavedLng float64
}

func NewController(st *store.Store, hub *stream.Hub, src Source, cfg config.Config) *Controller {
	if cfg.SpeedWindowSize < 1 {
		cfg.SpeedWindowSize = 10
	}
	if cfg.SpeedCeilingKmh <= 0 {
		cfg.SpeedCeilingKmh = 200
	}
	if cfg.SpeedSource == "" {
		cfg.SpeedSource = SpeedSourceDevice
	}
	return &Controller{
		store:  st,
		hub:    hub,
		source: src,
		cfg:    cfg,
		now:    time.Now,
		window: newSpeedWindow(cfg.SpeedWindowSize),
	}
}

// Start begins a new tracking session. Calling it while already tracking is
// a no-op. The position subscription is opened on first use and survives
// Stop; a permission refusal from the source aborts the start.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tracking {
		return nil
	}

	if c.sub == nil && c.source != nil {
		sub, err := c.source.Subscribe(SubscribeOptions{
			HighAccuracy:    true,
			TimeoutMillis:   5000,
			MaxFixAgeMillis: 0,
		}, c.HandleFix, c.handleSourceError)
		if err != nil {
			return err
		}
		c.sub = sub
	}

	c.sessionID = uuid.NewString()
	c.window.Reset()
	c.currentKmh = 0
	c.lastAccepted = nil
	c.hasSaved = false
	c.tracking = true
	return nil
}

// Stop ends the session. Fixes keep arriving for live display but are no
// longer persisted. In-flight writes are not waited on; they complete in the
// background under the old session id.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracking = false
	c.sessionID = ""
}

// Close releases the position subscription and drains in-flight writes.
// Used at shutdown only.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.mu.Unlock()

	c.writes.Wait()
}

// HandleFix processes one position fix. Display state updates on every fix;
// a record is written only while a session is active and the fix passes the
// outlier and rate-limit gates. The write itself runs in the background so a
// slow store never blocks fix delivery, Snapshot or Stop. Persistence
// failures are logged and do not stop tracking.
func (c *Controller) HandleFix(fix Fix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fix.Timestamp == 0 {
		fix.Timestamp = c.now().UnixMilli()
	}

	c.hasFix = true
	c.lat = fix.Latitude
	c.lng = fix.Longitude
	c.accuracyM = fix.AccuracyM

	if !c.tracking {
		return
	}

	if c.lastAccepted != nil {
		dtSec := float64(fix.Timestamp-c.lastAccepted.Timestamp) / 1000
		if dtSec <= 0 {
			return
		}
		impliedKmh := geo.HaversineKm(c.lastAccepted.Latitude, c.lastAccepted.Longitude, fix.Latitude, fix.Longitude) / dtSec * 3600
		if impliedKmh > c.cfg.SpeedCeilingKmh {
			// GPS noise; keep the last accepted speed
			return
		}
	}

	speedKmh := c.deriveSpeed(fix)
	c.currentKmh = speedKmh
	c.window.Push(speedKmh)
	accepted := fix
	c.lastAccepted = &accepted

	if !c.shouldPersist(fix) {
		return
	}

	rec := store.LocationRecord{
		GUID:       uuid.NewString(),
		SessionID:  c.sessionID,
		Latitude:   fix.Latitude,
		Longitude:  fix.Longitude,
		AccuracyM:  fix.AccuracyM,
		SpeedKmh:   speedKmh,
		RecordedAt: c.now(),
	}
	c.hasSaved = true
	c.lastSavedAt = c.now()
	c.lastSavedLat = fix.Latitude
	c.lastSavedLng = fix.Longitude

	c.writes.Add(1)
	go c.persist(rec)
}

func (c *Controller) persist(rec store.LocationRecord) {
	defer c.writes.Done()

	id, err := c.store.AddLocation(context.Background(), rec)
	if err != nil {
		log.Printf("persist location failed: %v", err)
		return
	}
	rec.ID = id

	if c.hub != nil {
		payload, _ := json.Marshal(rec)
		c.hub.Broadcast(rec.SessionID, payload)
	}
}

// deriveSpeed applies the configured strategy for the whole session; device
// and derived modes are never mixed per sample.
func (c *Controller) deriveSpeed(fix Fix) float64 {
	if c.cfg.SpeedSource == SpeedSourceDerived {
		if c.lastAccepted == nil {
			return 0
		}
		dtSec := float64(fix.Timestamp-c.lastAccepted.Timestamp) / 1000
		if dtSec <= 0 {
			return c.currentKmh
		}
		return geo.HaversineKm(c.lastAccepted.Latitude, c.lastAccepted.Longitude, fix.Latitude, fix.Longitude) / dtSec * 3600
	}

	if fix.SpeedMps != nil {
		return *fix.SpeedMps * 3.6
	}
	return 0
}

func (c *Controller) shouldPersist(fix Fix) bool {
	if !c.hasSaved {
		return true
	}
	if c.now().Sub(c.lastSavedAt) < time.Duration(c.cfg.SaveIntervalMs)*time.Millisecond {
		return false
	}
	displacementM := geo.HaversineKm(c.lastSavedLat, c.lastSavedLng, fix.Latitude, fix.Longitude) * 1000
	return displacementM >= c.cfg.MinDisplacementM
}

func (c *Controller) handleSourceError(err error) {
	log.Printf("position source error: %v", err)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		IsTracking:            c.tracking,
		SessionID:             c.sessionID,
		CurrentSpeedKmh:       c.currentKmh,
		AverageSpeedKmh:       c.window.Average(),
		MaxSpeedKmh:           c.window.Max(),
		Latitude:              c.lat,
		Longitude:             c.lng,
		AccuracyM:             c.accuracyM,
		HasFix:                c.hasFix,
		IsPrecisionAcceptable: c.hasFix && c.accuracyM <= c.cfg.AccuracyThresholdM,
	}
}
