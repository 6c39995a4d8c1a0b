// Package tool holds helpers shared by the server devices.
package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// certValidity is how long a generated certificate stays valid
const certValidity = 10 * 365 * 24 * time.Hour

func IsFileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// EnsureSelfSignedCertificate generates a key and a self-signed certificate
// unless both files already exist. generated reports whether new files were
// written.
func EnsureSelfSignedCertificate(keyFilename, certFilename string, organization string, commonName string, hostnames []string) (generated bool, err error) {
	existKey, err := IsFileExists(keyFilename)
	if err != nil {
		return false, fmt.Errorf("unable to access %s: %w", keyFilename, err)
	}
	existCert, err := IsFileExists(certFilename)
	if err != nil {
		return false, fmt.Errorf("unable to access %s: %w", certFilename, err)
	}
	if existKey && existCert {
		return false, nil
	}

	if err = GenerateTlsCertificate(organization, commonName, keyFilename, certFilename, hostnames, time.Now()); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateTlsCertificate writes a P-256 key and a server certificate signed
// by that key, valid from notBefore.
func GenerateTlsCertificate(organization string, commonName string, keyFilename, certFilename string, hostnames []string, notBefore time.Time) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("unable to generate key: %w", err)
	}
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("unable to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{organization},
			CommonName:   commonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hostnames {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("unable to create certificate: %w", err)
	}
	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("unable to encode key: %w", err)
	}

	if err = writePem(keyFilename, "EC PRIVATE KEY", keyBytes, 0600); err != nil {
		return err
	}
	return writePem(certFilename, "CERTIFICATE", der, 0644)
}

func writePem(filename string, blockType string, content []byte, perm os.FileMode) error {
	out, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", filename, err)
	}
	if err = pem.Encode(out, &pem.Block{Type: blockType, Bytes: content}); err != nil {
		out.Close()
		return fmt.Errorf("unable to write %s: %w", filename, err)
	}
	return out.Close()
}
