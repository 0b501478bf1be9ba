package bridge

import (
	"encoding/json"
	"unicode/utf8"
)

// DS18B20Reading is the single-probe temperature sub-reading.
type DS18B20Reading struct {
	ID          string  `json:"Id"`
	Temperature float64 `json:"Temperature"`
}

// DHT11Reading is the combined sensor's three derived channels.
type DHT11Reading struct {
	Temperature float64 `json:"Temperature"`
	Humidity    float64 `json:"Humidity"`
	DewPoint    float64 `json:"DewPoint"`
}

// SensorReading is one decoded telemetry message. Both sub-readings are
// independently optional; a message carrying neither is legal at this layer
// and simply yields nothing to forward.
type SensorReading struct {
	Time     string          `json:"Time"`
	DS18B20  *DS18B20Reading `json:"DS18B20"`
	DHT11    *DHT11Reading   `json:"DHT11"`
	TempUnit string          `json:"TempUnit"`
}

// DecodeReading parses a vendor-formatted message body. Invalid UTF-8 or
// malformed JSON yields a *MalformedPayloadError.
func DecodeReading(payload []byte) (*SensorReading, error) {
	if !utf8.Valid(payload) {
		return nil, &MalformedPayloadError{Err: errInvalidUTF8}
	}

	var reading SensorReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	return &reading, nil
}
