// Package mqtt wraps the paho client behind a sequential event stream: every
// inbound publish and every connection-level event arrives as an Event on a
// single channel drained by the dispatcher.
package mqtt

import (
	"cmp"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const eventChannelDepth = 100

// Client is the bridge's MQTT transport.
type Client struct {
	opts   *mqtt.ClientOptions
	client mqtt.Client
	logger *zap.Logger
	events chan Event

	mu     sync.Mutex
	closed bool
}

// NewClient builds a client from config. A nil logger is replaced with a
// no-op logger.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		logger: logger,
		events: make(chan Event, eventChannelDepth),
	}

	opts, err := c.pahoOptions(cfg)
	if err != nil {
		return nil, err
	}
	c.opts = opts

	return c, nil
}

func (c *Client) pahoOptions(cfg Config) (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions()

	if len(cfg.Servers) == 0 {
		opts.AddBroker("tcp://127.0.0.1:1883")
	}
	for _, server := range cfg.Servers {
		opts.AddBroker(server)
	}

	opts.SetClientID(cmp.Or(cfg.ClientID, DefaultClientID()))

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS != nil {
		tlsConfig, err := createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		if tlsConfig != nil {
			opts.SetTLSConfig(tlsConfig)
		}
	}

	// Field devices publish every few seconds; a short keep-alive notices a
	// dead broker before a full reporting cycle is lost.
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 5
	}
	opts.SetKeepAlive(time.Duration(keepAlive) * time.Second)

	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.PingTimeout > 0 {
		opts.SetPingTimeout(cfg.PingTimeout)
	}

	opts.SetCleanSession(cfg.CleanSession)
	opts.SetAutoReconnect(cfg.AutoReconnect)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.emit(Event{Kind: EventConnect, Detail: "connected to broker"})
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.emit(Event{Kind: EventConnectionLost, Detail: err.Error()})
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		c.emit(Event{Kind: EventReconnecting, Detail: "reconnecting to broker"})
	})

	return opts, nil
}

// emit pushes an event onto the stream, dropping it with a warning when the
// dispatcher has fallen behind. Paho handlers can still fire during shutdown,
// so emits after Disconnect are silently dropped.
func (c *Client) emit(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event channel full, dropping event",
			zap.String("kind", ev.Kind.String()),
			zap.String("topic", ev.Topic))
	}
}

// Connect establishes a connection to the MQTT broker.
func (c *Client) Connect() error {
	c.client = mqtt.NewClient(c.opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("broker connection error: %w", token.Error())
	}
	return nil
}

// Subscribe subscribes to each topic individually at QoS 0 (at-most-once).
// Inbound messages are pushed onto the event stream.
func (c *Client) Subscribe(topics []string) error {
	for _, topic := range topics {
		token := c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			c.emit(Event{
				Kind:    EventPublish,
				Topic:   msg.Topic(),
				Payload: msg.Payload(),
			})
		})
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		c.logger.Info("subscribed to topic", zap.String("topic", topic))
	}
	return nil
}

// Events returns the sequential event stream. The channel is closed by
// Disconnect.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Disconnect closes the broker connection and the event stream.
func (c *Client) Disconnect() {
	if c.client != nil {
		c.client.Disconnect(250)
	}
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()
	c.logger.Info("disconnected from MQTT broker")
}
