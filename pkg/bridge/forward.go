package bridge

import (
	"context"
	"fmt"

	"github.com/edgehem/sensorbridge/pkg/hem"
	"github.com/edgehem/sensorbridge/pkg/metrics"
	"go.uber.org/zap"
)

// MeasurementWriter is the slice of the hem client the forwarder needs.
type MeasurementWriter interface {
	WriteMeasurement(ctx context.Context, m hem.Measurement) error
}

// Forwarder converts decoded readings into measurement writes using the
// identities in the routing table.
type Forwarder struct {
	store  MeasurementWriter
	routes *RoutingTable
	logger *zap.Logger
}

// NewForwarder creates a Forwarder. A nil logger is replaced with a no-op
// logger.
func NewForwarder(store MeasurementWriter, routes *RoutingTable, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{store: store, routes: routes, logger: logger}
}

// Forward writes up to four measurements for one reading: the DHT11 channels
// (temperature, humidity, dew point) followed by the DS18B20 probe. Writes
// are sequential and unbatched; the first failure aborts the rest of the
// reading.
func (f *Forwarder) Forward(ctx context.Context, topic string, reading *SensorReading) error {
	route, ok := f.routes.Lookup(topic)
	if !ok {
		return &UnroutedTopicError{Topic: topic}
	}

	if reading.DHT11 != nil {
		f.logger.Info("forwarding DHT11 reading",
			zap.String("topic", topic),
			zap.Int("device_id", route.DeviceID))

		writes := []struct {
			sensor string
			id     int
			value  float64
		}{
			{"dht11_temperature", route.Sensors.DHT11Temperature, reading.DHT11.Temperature},
			{"dht11_humidity", route.Sensors.DHT11Humidity, reading.DHT11.Humidity},
			{"dht11_dew_point", route.Sensors.DHT11DewPoint, reading.DHT11.DewPoint},
		}
		for _, w := range writes {
			if err := f.write(ctx, topic, route.DeviceID, w.id, w.value, w.sensor); err != nil {
				return err
			}
		}
	} else {
		f.logger.Warn("no DHT11 reading in payload", zap.String("topic", topic))
	}

	if reading.DS18B20 != nil {
		f.logger.Info("forwarding DS18B20 reading",
			zap.String("topic", topic),
			zap.Int("device_id", route.DeviceID))

		if err := f.write(ctx, topic, route.DeviceID, route.Sensors.DS18B20, reading.DS18B20.Temperature, "ds18b20"); err != nil {
			return err
		}
	} else {
		f.logger.Warn("no DS18B20 reading in payload", zap.String("topic", topic))
	}

	return nil
}

func (f *Forwarder) write(ctx context.Context, topic string, deviceID, sensorID int, value float64, sensor string) error {
	m := hem.Measurement{Device: deviceID, Sensor: sensorID, Measurement: value}
	if err := f.store.WriteMeasurement(ctx, m); err != nil {
		metrics.ForwardErrors.WithLabelValues(topic).Inc()
		return fmt.Errorf("write %s measurement for topic %s: %w", sensor, topic, err)
	}
	metrics.MeasurementsWritten.WithLabelValues(sensor).Inc()
	return nil
}
