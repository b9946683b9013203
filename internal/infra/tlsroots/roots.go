package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when PEM data holds no certificate.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

	// ErrIncompleteKeyPair is returned when only one of cert and key is set.
	ErrIncompleteKeyPair = errors.New("tlsroots: client certificate and key must be set together")
)

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a pool seeded with the system roots, or an empty pool on
// platforms where they cannot be loaded.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// Add loads path into the pool. A directory contributes every .pem, .crt
// and .cer file it contains.
func (p *Pool) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("tlsroots: %w", err)
	}
	if info.IsDir() {
		return p.AddCertDir(path)
	}
	return p.AddCertFile(path)
}

// AddCertFile adds certificates from a PEM file.
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

// AddCertPEM adds every CERTIFICATE block in pemData.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
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

// AddCertDir adds all certificate files from dir. It fails if none of
// them yields a certificate.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read dir %s: %w", dir, err)
	}

	var errs []error
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
			if err := p.AddCertFile(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			loaded++
		}
	}
	if loaded == 0 {
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		return fmt.Errorf("%w (%s)", ErrNoCertsFound, dir)
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// ClientOptions selects the TLS material for API requests.
type ClientOptions struct {
	// CAFile is a PEM file or directory of extra trusted roots.
	CAFile string
	// CertFile and KeyFile enable mutual TLS when both are set.
	CertFile string
	KeyFile  string
	// Insecure disables server verification. Only for local development.
	Insecure bool
}

// Enabled reports whether any option deviates from the default transport.
func (o ClientOptions) Enabled() bool {
	return o.CAFile != "" || o.CertFile != "" || o.KeyFile != "" || o.Insecure
}

// ClientConfig builds a client tls.Config from opts.
func ClientConfig(opts ClientOptions) (*tls.Config, error) {
	pool := NewPool()
	if opts.CAFile != "" {
		if err := pool.Add(opts.CAFile); err != nil {
			return nil, err
		}
	}

	cfg := &tls.Config{
		RootCAs:            pool.certPool,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.Insecure, //nolint:gosec // opt-in for local development
	}

	if (opts.CertFile == "") != (opts.KeyFile == "") {
		return nil, ErrIncompleteKeyPair
	}
	if opts.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
