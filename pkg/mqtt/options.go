package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// TLSOptions holds TLS configuration that can be unmarshaled from YAML/JSON.
type TLSOptions struct {
	InsecureSkipVerify bool   `json:"insecureSkipVerify" mapstructure:"insecureSkipVerify"`
	ServerName         string `json:"serverName,omitempty" mapstructure:"serverName"`
	CAFile             string `json:"caFile,omitempty" mapstructure:"caFile"`
	CertFile           string `json:"certFile,omitempty" mapstructure:"certFile"`
	KeyFile            string `json:"keyFile,omitempty" mapstructure:"keyFile"`
	CACert             string `json:"caCert,omitempty" mapstructure:"caCert"`
	ClientCert         string `json:"clientCert,omitempty" mapstructure:"clientCert"`
	ClientKey          string `json:"clientKey,omitempty" mapstructure:"clientKey"`
}

// Config holds the broker connection settings.
type Config struct {
	TLS            *TLSOptions   `json:"tls,omitempty" mapstructure:"tls"`
	ClientID       string        `json:"clientID" mapstructure:"clientID"`
	Username       string        `json:"username" mapstructure:"username"`
	Password       string        `json:"password" mapstructure:"password"`
	Servers        []string      `json:"servers" mapstructure:"servers"`
	KeepAlive      int64         `json:"keepAlive" mapstructure:"keepAlive"`
	ConnectTimeout time.Duration `json:"connectTimeout" mapstructure:"connectTimeout"`
	PingTimeout    time.Duration `json:"pingTimeout" mapstructure:"pingTimeout"`
	CleanSession   bool          `json:"cleanSession" mapstructure:"cleanSession"`
	AutoReconnect  bool          `json:"autoReconnect" mapstructure:"autoReconnect"`
}

// DefaultClientID derives the client identifier from the process host name,
// falling back to a random suffix when the hostname is unavailable.
func DefaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fmt.Sprintf("sensorbridge-%s", uuid.NewString()[:8])
	}
	return fmt.Sprintf("sensorbridge-%s", host)
}

func createTLSConfig(tlsOpts *TLSOptions) (*tls.Config, error) {
	if tlsOpts == nil {
		return nil, nil
	}

	config := &tls.Config{
		InsecureSkipVerify: tlsOpts.InsecureSkipVerify,
		ServerName:         tlsOpts.ServerName,
	}

	// Load CA certificate
	if tlsOpts.CAFile != "" || tlsOpts.CACert != "" {
		caCertPool := x509.NewCertPool()

		var caCert []byte
		var err error

		if tlsOpts.CAFile != "" {
			caCert, err = os.ReadFile(tlsOpts.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA file: %w", err)
			}
		} else {
			caCert = []byte(tlsOpts.CACert)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}

		config.RootCAs = caCertPool
	}

	// Load client certificate and key
	if (tlsOpts.CertFile != "" && tlsOpts.KeyFile != "") ||
		(tlsOpts.ClientCert != "" && tlsOpts.ClientKey != "") {

		var cert tls.Certificate
		var err error

		if tlsOpts.CertFile != "" && tlsOpts.KeyFile != "" {
			cert, err = tls.LoadX509KeyPair(tlsOpts.CertFile, tlsOpts.KeyFile)
		} else {
			cert, err = tls.X509KeyPair([]byte(tlsOpts.ClientCert), []byte(tlsOpts.ClientKey))
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}

		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}
