// Package main (cmd/nilcc-attester) implements the CVM attestation report
// server.
//
// At startup the server fetches the TLS certificate presented by the CVM
// proxy, binds its fingerprint into an SEV-SNP (or TDX) hardware report,
// and, on GPU VMs, obtains a GPU attestation token by invoking the
// gpu-attester binary with the fingerprint as nonce. The resulting report
// is served from memory; a generate endpoint produces fresh reports over
// caller-supplied nonces.
//
// Configuration is handled through command-line flags: the listen address,
// the nilcc release version and vm type reported alongside every report,
// the CVM platform, paths and endpoints for the gpu-attester binary and
// the proxy, plus the shared logging, metrics and profiling flags.
//
// The server implements graceful shutdown on SIGINT/SIGTERM and exposes
// health, readiness and drain endpoints alongside the report API.
//
// Example usage:
//
//	nilcc-attester --listen-addr=0.0.0.0:8080 \
//	    --nilcc-version=0.4.2 \
//	    --vm-type=gpu \
//	    --attestation-domain=cvm.example.com
package main
