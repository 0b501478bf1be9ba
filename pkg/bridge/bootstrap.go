package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgehem/sensorbridge/pkg/config"
	"github.com/edgehem/sensorbridge/pkg/hem"
	"go.uber.org/zap"
)

// Bootstrap resolves every configured device and the fixed sensor catalog
// against the hem store and assembles the routing table. Any resolution
// failure aborts startup; there is no partial bootstrap.
func Bootstrap(ctx context.Context, resolver *hem.Resolver, devices []config.DeviceConfig, logger *zap.Logger) (*RoutingTable, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(devices) == 0 {
		return nil, errors.New("bootstrap: no devices configured")
	}

	// Sensor identities are global, not per-device: resolve the catalog once.
	sensorIDs, err := hem.ResolveSensors(ctx, resolver)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: resolve sensor catalog: %w", err)
	}
	logger.Info("sensor catalog resolved",
		zap.Int("ds18b20", sensorIDs.DS18B20),
		zap.Int("dht11_temperature", sensorIDs.DHT11Temperature),
		zap.Int("dht11_humidity", sensorIDs.DHT11Humidity),
		zap.Int("dht11_dew_point", sensorIDs.DHT11DewPoint))

	routes := make(map[string]DeviceRoute, len(devices))
	for _, d := range devices {
		deviceID, err := resolver.EnsureDevice(ctx, d.Name, d.Location)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: resolve device %q: %w", d.Name, err)
		}
		routes[d.Topic] = DeviceRoute{DeviceID: deviceID, Sensors: sensorIDs}
		logger.Info("device route registered",
			zap.String("topic", d.Topic),
			zap.String("name", d.Name),
			zap.String("location", d.Location),
			zap.Int("device_id", deviceID))
	}

	return NewRoutingTable(routes), nil
}
