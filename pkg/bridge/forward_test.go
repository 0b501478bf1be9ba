package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/edgehem/sensorbridge/pkg/hem"
	"github.com/stretchr/testify/require"
)

// recordingWriter captures measurement writes. failFrom fails every write
// once that many writes have landed (-1 disables); failNext fails the next N
// attempts and then recovers.
type recordingWriter struct {
	writes   []hem.Measurement
	failFrom int
	failNext int
}

func (w *recordingWriter) WriteMeasurement(_ context.Context, m hem.Measurement) error {
	if w.failNext > 0 {
		w.failNext--
		return errors.New("store unavailable")
	}
	if w.failFrom >= 0 && len(w.writes) >= w.failFrom {
		return errors.New("store unavailable")
	}
	w.writes = append(w.writes, m)
	return nil
}

func testTable() *RoutingTable {
	return NewRoutingTable(map[string]DeviceRoute{
		"tele/stue/SENSOR": {
			DeviceID: 42,
			Sensors: hem.SensorIDs{
				DS18B20:          1,
				DHT11Temperature: 2,
				DHT11Humidity:    3,
				DHT11DewPoint:    4,
			},
		},
	})
}

func fullReading() *SensorReading {
	return &SensorReading{
		Time:     "2024-01-07T10:15:00",
		DS18B20:  &DS18B20Reading{ID: "0119", Temperature: 21.4},
		DHT11:    &DHT11Reading{Temperature: 22.1, Humidity: 48.0, DewPoint: 10.8},
		TempUnit: "C",
	}
}

func TestForwardBothSubReadings(t *testing.T) {
	writer := &recordingWriter{failFrom: -1}
	f := NewForwarder(writer, testTable(), nil)

	require.NoError(t, f.Forward(context.Background(), "tele/stue/SENSOR", fullReading()))

	// DHT11 channels first (temperature, humidity, dew point), then the probe.
	require.Equal(t, []hem.Measurement{
		{Device: 42, Sensor: 2, Measurement: 22.1},
		{Device: 42, Sensor: 3, Measurement: 48.0},
		{Device: 42, Sensor: 4, Measurement: 10.8},
		{Device: 42, Sensor: 1, Measurement: 21.4},
	}, writer.writes)
}

func TestForwardProbeOnly(t *testing.T) {
	writer := &recordingWriter{failFrom: -1}
	f := NewForwarder(writer, testTable(), nil)

	reading := fullReading()
	reading.DHT11 = nil

	require.NoError(t, f.Forward(context.Background(), "tele/stue/SENSOR", reading))
	require.Equal(t, []hem.Measurement{
		{Device: 42, Sensor: 1, Measurement: 21.4},
	}, writer.writes)
}

func TestForwardCombinedOnly(t *testing.T) {
	writer := &recordingWriter{failFrom: -1}
	f := NewForwarder(writer, testTable(), nil)

	reading := fullReading()
	reading.DS18B20 = nil

	require.NoError(t, f.Forward(context.Background(), "tele/stue/SENSOR", reading))
	require.Len(t, writer.writes, 3)
}

func TestForwardNeitherSubReading(t *testing.T) {
	writer := &recordingWriter{failFrom: -1}
	f := NewForwarder(writer, testTable(), nil)

	reading := &SensorReading{Time: "2024-01-07T10:15:00", TempUnit: "C"}

	// Nothing to write, but not an error either.
	require.NoError(t, f.Forward(context.Background(), "tele/stue/SENSOR", reading))
	require.Empty(t, writer.writes)
}

func TestForwardUnroutedTopic(t *testing.T) {
	writer := &recordingWriter{failFrom: -1}
	f := NewForwarder(writer, testTable(), nil)

	err := f.Forward(context.Background(), "tele/unknown/SENSOR", fullReading())
	require.Error(t, err)

	var unrouted *UnroutedTopicError
	require.ErrorAs(t, err, &unrouted)
	require.Equal(t, "tele/unknown/SENSOR", unrouted.Topic)
	require.Empty(t, writer.writes, "unrouted topic must issue zero writes")
}

func TestForwardAbortsOnFirstFailure(t *testing.T) {
	// Second write (humidity) fails; dew point and probe must not be attempted.
	writer := &recordingWriter{failFrom: 1}
	f := NewForwarder(writer, testTable(), nil)

	err := f.Forward(context.Background(), "tele/stue/SENSOR", fullReading())
	require.Error(t, err)
	require.Equal(t, []hem.Measurement{
		{Device: 42, Sensor: 2, Measurement: 22.1},
	}, writer.writes)
}
