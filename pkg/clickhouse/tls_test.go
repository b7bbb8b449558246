package clickhouse

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

	"github.com/stretchr/testify/require"
)

type certFiles struct {
	ca, cert, key string
}

// writeCerts writes a throwaway CA plus a client certificate signed by it.
func writeCerts(t *testing.T) certFiles {
	t.Helper()

	dir := t.TempDir()
	now := time.Now()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "steward test CA"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)

	clientKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	clientTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "steward"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTmpl, caTmpl, &clientKey.PublicKey, caKey)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(clientKey)
	require.NoError(t, err)

	files := certFiles{
		ca:   filepath.Join(dir, "ca.pem"),
		cert: filepath.Join(dir, "client.pem"),
		key:  filepath.Join(dir, "client.key"),
	}

	writePEM(t, files.ca, "CERTIFICATE", caDER)
	writePEM(t, files.cert, "CERTIFICATE", clientDER)
	writePEM(t, files.key, "EC PRIVATE KEY", keyDER)

	return files
}

func writePEM(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), 0o600))
}

func TestGetTLSConfig(t *testing.T) {
	files := writeCerts(t)

	tests := []struct {
		name      string
		settings  TLSSettings
		wantErr   string
		wantCerts int
		wantRoots bool
	}{
		{
			name:      "client certificate and CA",
			settings:  TLSSettings{CertFile: files.cert, KeyFile: files.key, CAFile: files.ca},
			wantCerts: 1,
			wantRoots: true,
		},
		{
			name:      "CA only",
			settings:  TLSSettings{CAFile: files.ca},
			wantRoots: true,
		},
		{
			name:      "client certificate only",
			settings:  TLSSettings{CertFile: files.cert, KeyFile: files.key},
			wantCerts: 1,
		},
		{
			name:     "skip verification",
			settings: TLSSettings{InsecureSkipVerify: true},
		},
		{
			name:     "CA file holds a key",
			settings: TLSSettings{CAFile: files.key},
			wantErr:  "no certificates found",
		},
		{
			name:     "missing cert file",
			settings: TLSSettings{CertFile: "bogus.pem", KeyFile: files.key},
			wantErr:  "Unable to load certfile/keyfile",
		},
		{
			name:     "key without cert",
			settings: TLSSettings{KeyFile: files.key},
			wantErr:  "Unable to load certfile/keyfile",
		},
		{
			name:     "missing CA file",
			settings: TLSSettings{CAFile: "bogus.pem"},
			wantErr:  "Unable to load CAfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := GetTLSConfig(ClientOptions{TLSSettings: tt.settings})
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				require.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.Len(t, cfg.Certificates, tt.wantCerts)
			require.Equal(t, tt.wantRoots, cfg.RootCAs != nil)
			require.Equal(t, tt.settings.InsecureSkipVerify, cfg.InsecureSkipVerify)
		})
	}
}
