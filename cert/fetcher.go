// Package cert binds the CVM proxy's TLS identity into attestation
// reports by fingerprinting the certificate it presents.
package cert

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"errors"
	"fmt"
)

// Fingerprint is the SHA-256 digest of a certificate's subject public key info.
type Fingerprint = [32]byte

// Fetcher retrieves the TLS certificate served by the CVM proxy.
type Fetcher struct {
	// ProxyEndpoint is the host:port the proxy listens on.
	ProxyEndpoint string

	// ServerName is the attestation domain used as SNI.
	ServerName string
}

// FetchFingerprint performs a TLS handshake with the proxy and returns the
// SHA-256 digest of the leaf certificate's subject public key info.
//
// Chain verification is disabled on purpose: the certificate is typically
// self-issued inside the CVM, and the fingerprint itself is what gets bound
// into the hardware report for verifiers to check.
func (f *Fetcher) FetchFingerprint(ctx context.Context) (Fingerprint, error) {
	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName:         f.ServerName,
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", f.ProxyEndpoint)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("dialing proxy %s: %w", f.ProxyEndpoint, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return Fingerprint{}, errors.New("proxy presented no certificate")
	}

	return sha256.Sum256(state.PeerCertificates[0].RawSubjectPublicKeyInfo), nil
}
