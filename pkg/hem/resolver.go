package hem

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFoundAfterCreate is returned when a freshly created record is still
// absent from the registry on the follow-up fetch. The resolver never retries
// past that single re-fetch.
var ErrNotFoundAfterCreate = errors.New("hem: record not visible after create")

// Resolver implements get-or-create identity resolution against the hem
// store. Resolution is a list-and-scan; on a miss it creates the record, uses
// the id echoed by the store when available, and otherwise re-fetches exactly
// once.
type Resolver struct {
	client *Client
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil logger is replaced with a no-op
// logger.
func NewResolver(client *Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, logger: logger}
}

func findDevice(devices []Device, name, location string) (int, bool) {
	for _, d := range devices {
		if d.Name == name && d.Location == location {
			return d.ID, true
		}
	}
	return 0, false
}

func findSensor(sensors []Sensor, name string) (int, bool) {
	for _, s := range sensors {
		if s.Name == name {
			return s.ID, true
		}
	}
	return 0, false
}

// EnsureDevice resolves the (name, location) pair to a device id, creating
// the record if the registry does not contain it.
func (r *Resolver) EnsureDevice(ctx context.Context, name, location string) (int, error) {
	devices, err := r.client.ListDevices(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve device %q: %w", name, err)
	}
	if id, ok := findDevice(devices, name, location); ok {
		r.logger.Info("device resolved",
			zap.String("name", name),
			zap.String("location", location),
			zap.Int("id", id))
		return id, nil
	}

	created, err := r.client.CreateDevice(ctx, Device{Name: name, Location: location})
	if err != nil {
		return 0, fmt.Errorf("create device %q: %w", name, err)
	}
	if created != nil {
		r.logger.Info("device created",
			zap.String("name", name),
			zap.String("location", location),
			zap.Int("id", created.ID))
		return created.ID, nil
	}

	// Store did not echo the record; re-fetch once.
	devices, err = r.client.ListDevices(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve device %q after create: %w", name, err)
	}
	if id, ok := findDevice(devices, name, location); ok {
		r.logger.Info("device created",
			zap.String("name", name),
			zap.String("location", location),
			zap.Int("id", id))
		return id, nil
	}

	return 0, fmt.Errorf("device %q at %q: %w", name, location, ErrNotFoundAfterCreate)
}

// EnsureSensor resolves a sensor name to its id, creating the record if the
// registry does not contain it. Sensor identity is keyed on name alone.
func (r *Resolver) EnsureSensor(ctx context.Context, name, unit string) (int, error) {
	sensors, err := r.client.ListSensors(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve sensor %q: %w", name, err)
	}
	if id, ok := findSensor(sensors, name); ok {
		r.logger.Info("sensor resolved", zap.String("name", name), zap.Int("id", id))
		return id, nil
	}

	created, err := r.client.CreateSensor(ctx, Sensor{Name: name, Unit: unit})
	if err != nil {
		return 0, fmt.Errorf("create sensor %q: %w", name, err)
	}
	if created != nil {
		r.logger.Info("sensor created", zap.String("name", name), zap.Int("id", created.ID))
		return created.ID, nil
	}

	sensors, err = r.client.ListSensors(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve sensor %q after create: %w", name, err)
	}
	if id, ok := findSensor(sensors, name); ok {
		r.logger.Info("sensor created", zap.String("name", name), zap.Int("id", id))
		return id, nil
	}

	return 0, fmt.Errorf("sensor %q: %w", name, ErrNotFoundAfterCreate)
}
