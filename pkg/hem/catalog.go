package hem

import "context"

// The fixed sensor catalog. Every bridged device publishes readings from a
// DS18B20 probe and/or a DHT11 combined sensor; the DHT11 contributes three
// derived channels.
var catalog = []Sensor{
	{Name: "DS18B20", Unit: "°C"},
	{Name: "DHT11 Temperature", Unit: "°C"},
	{Name: "DHT11 Humidity", Unit: "%"},
	{Name: "DHT11 Dew Point", Unit: "°C"},
}

// ResolveSensors resolves the catalog against the store and returns the
// identifier set. Called once at bootstrap; the ids are shared by all device
// routes.
func ResolveSensors(ctx context.Context, r *Resolver) (SensorIDs, error) {
	var ids SensorIDs
	targets := []*int{&ids.DS18B20, &ids.DHT11Temperature, &ids.DHT11Humidity, &ids.DHT11DewPoint}

	for i, s := range catalog {
		id, err := r.EnsureSensor(ctx, s.Name, s.Unit)
		if err != nil {
			return SensorIDs{}, err
		}
		*targets[i] = id
	}
	return ids, nil
}
