package hem

// Device is a registered installation point in the hem store. The id is
// assigned by the store and omitted on create.
type Device struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Sensor is a measurement channel kind, shared globally across devices.
type Sensor struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Measurement is one (device, sensor, value) triple as the store's write
// endpoint expects it.
type Measurement struct {
	Device      int     `json:"device"`
	Sensor      int     `json:"sensor"`
	Measurement float64 `json:"measurement"`
}

// SensorIDs holds the four catalog sensor identifiers, resolved once per
// process and shared by every device route.
type SensorIDs struct {
	DS18B20          int
	DHT11Temperature int
	DHT11Humidity    int
	DHT11DewPoint    int
}
