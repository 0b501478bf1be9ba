package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensorbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
hem:
  baseURL: http://localhost:8000
mqtt:
  servers:
    - tcp://localhost:1883
devices:
  - name: esp32_stue
    location: Stue
    topic: tele/stue/SENSOR
  - name: esp32_vinterhage
    location: Vinterhage
    topic: tele/vinterhage/SENSOR
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.Hem.BaseURL)
	require.Equal(t, []string{"tcp://localhost:1883"}, cfg.MQTT.Servers)
	require.Len(t, cfg.Devices, 2)
	require.Equal(t, "esp32_stue", cfg.Devices[0].Name)
	require.Equal(t, "Stue", cfg.Devices[0].Location)
	require.Equal(t, "tele/stue/SENSOR", cfg.Devices[0].Topic)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "devices: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	device := DeviceConfig{Name: "esp32_stue", Location: "Stue", Topic: "tele/stue/SENSOR"}

	testCases := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid single device",
			cfg: Config{
				Hem:     HemConfig{BaseURL: "http://localhost:8000"},
				Devices: []DeviceConfig{device},
			},
		},
		{
			name: "empty device list",
			cfg: Config{
				Hem: HemConfig{BaseURL: "http://localhost:8000"},
			},
			wantErr: ErrNoDevices,
		},
		{
			name: "duplicate topic",
			cfg: Config{
				Hem: HemConfig{BaseURL: "http://localhost:8000"},
				Devices: []DeviceConfig{
					device,
					{Name: "esp32_other", Location: "Kitchen", Topic: device.Topic},
				},
			},
			wantErr: ErrDuplicateTopic,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateMissingFields(t *testing.T) {
	base := Config{Hem: HemConfig{BaseURL: "http://localhost:8000"}}

	testCases := []struct {
		name   string
		device DeviceConfig
	}{
		{"missing name", DeviceConfig{Location: "Stue", Topic: "tele/stue/SENSOR"}},
		{"missing location", DeviceConfig{Name: "esp32_stue", Topic: "tele/stue/SENSOR"}},
		{"missing topic", DeviceConfig{Name: "esp32_stue", Location: "Stue"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Devices = []DeviceConfig{tc.device}
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateMissingBaseURL(t *testing.T) {
	cfg := Config{
		Devices: []DeviceConfig{{Name: "a", Location: "b", Topic: "c"}},
	}
	require.Error(t, cfg.Validate())
}
