package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	if NewPool().Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
	if NewEmptyPool().Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"single", generateTestCertPEM(t), nil},
		{"multiple", append(generateTestCertPEM(t), generateTestCertPEM(t)...), nil},
		{"empty", nil, ErrNoCertsFound},
		{"other block type", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("x")}), ErrNoCertsFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyPool().AddCertPEM(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddCertPEM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
	if err := NewEmptyPool().AddCertPEM(data); err == nil {
		t.Error("AddCertPEM() expected parse error")
	}
}

func TestAdd_FileAndDir(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(certPath, generateTestCertPEM(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewEmptyPool().Add(certPath); err != nil {
		t.Errorf("Add(file) error = %v", err)
	}
	if err := NewEmptyPool().Add(dir); err != nil {
		t.Errorf("Add(dir) error = %v", err)
	}
	if err := NewEmptyPool().Add(filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("Add(missing) expected error")
	}
}

func TestAddCertDir_NoCerts(t *testing.T) {
	dir := t.TempDir()
	if err := NewEmptyPool().AddCertDir(dir); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("AddCertDir() error = %v, want ErrNoCertsFound", err)
	}
}

func TestClientConfig(t *testing.T) {
	dir := t.TempDir()
	caPath := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(caPath, generateTestCertPEM(t), 0o644); err != nil {
		t.Fatal(err)
	}
	certFile := filepath.Join(dir, "client.pem")
	keyFile := filepath.Join(dir, "client.key")
	generateTestCertAndKey(t, certFile, keyFile)

	cfg, err := ClientConfig(ClientOptions{CAFile: caPath})
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if cfg.RootCAs == nil || cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Certificates) != 0 {
		t.Error("no client certificate expected")
	}

	cfg, err = ClientConfig(ClientOptions{CertFile: certFile, KeyFile: keyFile})
	if err != nil {
		t.Fatalf("ClientConfig(mTLS) error = %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("Certificates = %d, want 1", len(cfg.Certificates))
	}

	if _, err := ClientConfig(ClientOptions{CertFile: certFile}); !errors.Is(err, ErrIncompleteKeyPair) {
		t.Errorf("ClientConfig(cert only) error = %v, want ErrIncompleteKeyPair", err)
	}
	if _, err := ClientConfig(ClientOptions{CAFile: filepath.Join(dir, "nope")}); err == nil {
		t.Error("ClientConfig(missing CA) expected error")
	}
}

func TestClientOptionsEnabled(t *testing.T) {
	if (ClientOptions{}).Enabled() {
		t.Error("zero options should not be enabled")
	}
	if !(ClientOptions{Insecure: true}).Enabled() {
		t.Error("insecure should be enabled")
	}
}

func generateTestCertPEM(t *testing.T) []byte {
	t.Helper()

	cert := generateTestCert(t)
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})
}

// generateTestCert generates a self-signed certificate.
func generateTestCert(t *testing.T) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "test.local",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	return cert
}

// generateTestCertAndKey generates a self-signed certificate and key pair.
func generateTestCertAndKey(t *testing.T, certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "test.local",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}

	// Write cert
	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: certDER,
	})
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("WriteFile(cert) error = %v", err)
	}

	// Write key
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: keyDER,
	})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("WriteFile(key) error = %v", err)
	}
}
