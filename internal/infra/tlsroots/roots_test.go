package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	pool, err := NewPool()
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	if pool == nil {
		t.Fatal("NewPool() returned nil")
	}
	if pool.Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestNewEmptyPool(t *testing.T) {
	pool := NewEmptyPool()
	if pool == nil {
		t.Fatal("NewEmptyPool() returned nil")
	}
	if pool.Pool() == nil {
		t.Fatal("Pool() returned nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	pool := NewEmptyPool()

	certPEM := generateTestCertPEM(t)

	if err := pool.AddCertPEM(certPEM); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestAddCertPEM_NoCerts(t *testing.T) {
	pool := NewEmptyPool()

	if err := pool.AddCertPEM([]byte{}); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM() error = %v, want %v", err, ErrNoCertsFound)
	}

	if err := pool.AddCertPEM([]byte("not a certificate")); err != ErrNoCertsFound {
		t.Errorf("AddCertPEM() error = %v, want %v", err, ErrNoCertsFound)
	}
}

func TestAddCertPEM_InvalidCert(t *testing.T) {
	pool := NewEmptyPool()

	invalidPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: []byte("invalid certificate data"),
	})

	if err := pool.AddCertPEM(invalidPEM); err == nil {
		t.Error("AddCertPEM() expected error for invalid certificate")
	}
}

func TestAddCertPEM_MultipleCerts(t *testing.T) {
	pool := NewEmptyPool()

	cert1 := generateTestCertPEM(t)
	cert2 := generateTestCertPEM(t)
	combined := append(cert1, cert2...)

	if err := pool.AddCertPEM(combined); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
}

func TestAddCertFile(t *testing.T) {
	pool := NewEmptyPool()

	tmpDir := t.TempDir()
	certFile := filepath.Join(tmpDir, "gateway-ca.pem")

	certPEM := generateTestCertPEM(t)
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := pool.AddCertFile(certFile); err != nil {
		t.Fatalf("AddCertFile() error = %v", err)
	}
}

func TestAddCertFile_NotFound(t *testing.T) {
	pool := NewEmptyPool()

	if err := pool.AddCertFile("/nonexistent/path/cert.pem"); err == nil {
		t.Error("AddCertFile() expected error for nonexistent file")
	}
}

func TestClientConfig(t *testing.T) {
	pool := NewEmptyPool()

	config := pool.ClientConfig()
	if config == nil {
		t.Fatal("ClientConfig() returned nil")
	}
	if config.RootCAs != pool.Pool() {
		t.Error("ClientConfig().RootCAs != pool.Pool()")
	}
	if config.MinVersion != 0x0303 { // TLS 1.2
		t.Errorf("ClientConfig().MinVersion = %v, want TLS 1.2", config.MinVersion)
	}
}

// generateTestCertPEM generates a self-signed certificate in PEM format.
func generateTestCertPEM(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "gateway.local",
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

	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: certDER,
	})
}
