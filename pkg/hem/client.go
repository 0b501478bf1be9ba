// Package hem is a client for the hem store's HTTP API: device and sensor
// registries plus the measurement write endpoint.
package hem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edgehem/sensorbridge/pkg/httputil"
	"go.uber.org/zap"
)

// Client talks to a hem store at a fixed base URL. All calls are synchronous
// and unretried; a failure is the caller's problem.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a hem store client. A nil logger is replaced with a no-op
// logger.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	cfg := httputil.DefaultRequestConfig(http.MethodGet, c.baseURL+path)
	cfg.Timeout = c.timeout

	resp, err := httputil.Request(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*httputil.Response, error) {
	cfg := httputil.DefaultRequestConfig(http.MethodPost, c.baseURL+path)
	cfg.Timeout = c.timeout

	resp, err := httputil.Request(ctx, cfg, payload)
	if err != nil {
		return resp, fmt.Errorf("POST %s: %w", path, err)
	}
	return resp, nil
}

// ListDevices fetches the full device registry.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.get(ctx, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// CreateDevice registers a device. If the store echoes the created record in
// the response body, it is returned; otherwise the result is nil.
func (c *Client) CreateDevice(ctx context.Context, d Device) (*Device, error) {
	d.ID = 0
	resp, err := c.post(ctx, "/api/devices", d)
	if err != nil {
		return nil, err
	}

	var created Device
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &created) == nil && created.ID > 0 {
		return &created, nil
	}
	return nil, nil
}

// ListSensors fetches the full sensor registry.
func (c *Client) ListSensors(ctx context.Context) ([]Sensor, error) {
	var sensors []Sensor
	if err := c.get(ctx, "/api/sensors", &sensors); err != nil {
		return nil, err
	}
	return sensors, nil
}

// CreateSensor registers a sensor kind. Same response handling as
// CreateDevice.
func (c *Client) CreateSensor(ctx context.Context, s Sensor) (*Sensor, error) {
	s.ID = 0
	resp, err := c.post(ctx, "/api/sensors", s)
	if err != nil {
		return nil, err
	}

	var created Sensor
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &created) == nil && created.ID > 0 {
		return &created, nil
	}
	return nil, nil
}

// WriteMeasurement records one reading.
func (c *Client) WriteMeasurement(ctx context.Context, m Measurement) error {
	if _, err := c.post(ctx, "/api/measurements", m); err != nil {
		return err
	}
	c.logger.Debug("measurement written",
		zap.Int("device", m.Device),
		zap.Int("sensor", m.Sensor),
		zap.Float64("value", m.Measurement))
	return nil
}
