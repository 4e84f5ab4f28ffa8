package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in a PEM file.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

	// ErrKeyPairIncomplete is returned when only one of cert_file and key_file is set.
	ErrKeyPairIncomplete = errors.New("tlsroots: cert_file and key_file must be set together")
)

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a pool seeded with the system roots.
// If system roots cannot be loaded, it starts empty.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds certificates from a PEM file.
// Multiple certificates in the same file are supported.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

// AddCertPEM adds certificates from PEM-encoded data.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var added int
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// AddCertDir adds every .pem, .crt and .cer file in dir.
// Files without certificates are skipped; it fails only when none load.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read dir %s: %w", dir, err)
	}

	var loaded int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
			if err := p.AddCertFile(filepath.Join(dir, entry.Name())); err == nil {
				loaded++
			}
		}
	}
	if loaded == 0 {
		return fmt.Errorf("%w in %s", ErrNoCertsFound, dir)
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// TLSConfig creates a client TLS config trusting this pool.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// MutualTLSConfig is TLSConfig plus a client certificate presented to the server.
func (p *Pool) MutualTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	cfg := p.TLSConfig()
	cfg.Certificates = []tls.Certificate{cert}
	return cfg, nil
}

// ClientConfig is the tls section of the CLI configuration.
type ClientConfig struct {
	// CAFile is a PEM bundle or a directory of certificates trusted in
	// addition to the system roots.
	CAFile   string
	CertFile string
	KeyFile  string
	// InsecureSkipVerify disables server certificate checks.
	InsecureSkipVerify bool
}

// IsZero reports whether the defaults apply.
func (c ClientConfig) IsZero() bool {
	return c == ClientConfig{}
}

// Build returns the tls.Config described by c.
func (c ClientConfig) Build() (*tls.Config, error) {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return nil, ErrKeyPairIncomplete
	}

	pool := NewPool()
	if c.CAFile != "" {
		info, err := os.Stat(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: ca_file: %w", err)
		}
		if info.IsDir() {
			err = pool.AddCertDir(c.CAFile)
		} else {
			err = pool.AddCertFile(c.CAFile)
		}
		if err != nil {
			return nil, err
		}
	}

	cfg := pool.TLSConfig()
	if c.CertFile != "" {
		var err error
		if cfg, err = pool.MutualTLSConfig(c.CertFile, c.KeyFile); err != nil {
			return nil, err
		}
	}
	cfg.InsecureSkipVerify = c.InsecureSkipVerify //nolint:gosec // opt-in for development backends
	return cfg, nil
}

// HTTPClient returns an http.Client whose transport uses Build's config.
func (c ClientConfig) HTTPClient() (*http.Client, error) {
	cfg, err := c.Build()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = cfg
	return &http.Client{Transport: transport}, nil
}
