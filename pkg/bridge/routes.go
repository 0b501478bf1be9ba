// Package bridge contains the telemetry bridge's core: the topic routing
// table built at bootstrap, the payload decoder, the measurement forwarder,
// and the event dispatcher that ties them together.
package bridge

import (
	"sort"

	"github.com/edgehem/sensorbridge/pkg/hem"
)

// DeviceRoute is what a topic resolves to: the device identity plus the
// process-global sensor identifier set.
type DeviceRoute struct {
	DeviceID int
	Sensors  hem.SensorIDs
}

// RoutingTable maps subscription topics to device routes. It is built once at
// bootstrap and read-only afterwards; the single dispatcher goroutine can
// share it without locking.
type RoutingTable struct {
	routes map[string]DeviceRoute
}

// NewRoutingTable copies the given routes into an immutable table. If the map
// repeats a topic the last write wins, but validated configuration rejects
// duplicates before this point.
func NewRoutingTable(routes map[string]DeviceRoute) *RoutingTable {
	copied := make(map[string]DeviceRoute, len(routes))
	for topic, route := range routes {
		copied[topic] = route
	}
	return &RoutingTable{routes: copied}
}

// Lookup returns the route for an exact topic match.
func (t *RoutingTable) Lookup(topic string) (DeviceRoute, bool) {
	route, ok := t.routes[topic]
	return route, ok
}

// Topics returns the table's topics in sorted order, for deterministic
// subscription and logging.
func (t *RoutingTable) Topics() []string {
	topics := make([]string, 0, len(t.routes))
	for topic := range t.routes {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Len returns the number of routes.
func (t *RoutingTable) Len() int {
	return len(t.routes)
}
