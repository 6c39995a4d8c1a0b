package tool

import (
	"crypto/tls"
	"path/filepath"
	"testing"
)

func TestEnsureSelfSignedCertificate(t *testing.T) {
	dir := t.TempDir()
	keyFilename := filepath.Join(dir, "key.pem")
	certFilename := filepath.Join(dir, "cert.pem")

	generated, err := EnsureSelfSignedCertificate(keyFilename, certFilename, "departureboard", "Board", []string{"127.0.0.1", "board.local"})
	if err != nil {
		t.Fatalf("EnsureSelfSignedCertificate: %v", err)
	}
	if !generated {
		t.Fatal("expected files to be generated")
	}
	if _, err = tls.LoadX509KeyPair(certFilename, keyFilename); err != nil {
		t.Fatalf("generated pair is not usable: %v", err)
	}

	generated, err = EnsureSelfSignedCertificate(keyFilename, certFilename, "departureboard", "Board", nil)
	if err != nil || generated {
		t.Errorf("second call generated=%v err=%v, want existing files kept", generated, err)
	}
}

func TestIsFileExists(t *testing.T) {
	exists, err := IsFileExists(filepath.Join(t.TempDir(), "missing"))
	if err != nil || exists {
		t.Errorf("IsFileExists(missing) = %v, %v", exists, err)
	}
}
