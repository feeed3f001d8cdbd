// Package trackingfeed ingests optical-tracker pose frames into a tracking
// pose source. Frames arrive as JSON over a websocket; the feed only writes
// observations, so evaluation keeps reading synchronous snapshots from the
// source while ingestion runs.
package trackingfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/tangram.space/internal/geometry"
	"github.com/louisbranch/tangram.space/internal/pose"
)

// Frame is one tracker update: the pieces currently in view with their
// world poses and detection confidence.
type Frame struct {
	// AtUnixMS is the capture timestamp in Unix milliseconds. Zero means
	// "now".
	AtUnixMS int64         `json:"at_unix_ms,omitempty"`
	Pieces   []Observation `json:"pieces"`
}

// Observation is one piece within a frame.
type Observation struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Theta      float64 `json:"theta"`
	Confidence float64 `json:"confidence"`
}

const reconnectDelay = time.Second

// ErrMissingSource indicates the client was built without a tracking source.
var ErrMissingSource = errors.New("tracking source is required")

// Client connects to a tracker endpoint and applies its frames to a
// TrackingSource.
type Client struct {
	url    string
	source *pose.TrackingSource
	clock  func() time.Time
}

// NewClient creates a feed client for the given websocket URL.
func NewClient(url string, source *pose.TrackingSource) *Client {
	return &Client{url: url, source: source, clock: time.Now}
}

// Run connects and ingests frames until the context is canceled. Connection
// failures are retried after a short delay; Run only returns the context's
// error or a configuration error.
func (c *Client) Run(ctx context.Context) error {
	if c.source == nil {
		return ErrMissingSource
	}
	for {
		if err := c.ingest(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) ingest(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial tracker feed: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("read tracker frame: %w", err)
		}
		c.Apply(frame)
	}
}

// Apply records every observation of a frame on the tracking source.
func (c *Client) Apply(frame Frame) {
	at := c.clock()
	if frame.AtUnixMS > 0 {
		at = time.UnixMilli(frame.AtUnixMS)
	}
	for _, obs := range frame.Pieces {
		c.source.Observe(
			obs.ID,
			geometry.Pose{X: obs.X, Y: obs.Y, Theta: obs.Theta},
			obs.Confidence,
			at,
		)
	}
}
