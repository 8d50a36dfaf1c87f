// Package main (cmd/gpu-attester) implements the GPU attestation shim.
//
// The shim takes a single nonce argument, drives the GPU attestation SDK to
// collect evidence and submit it to the NVIDIA Remote Attestation Service,
// and prints the issued token base64-encoded as a single line on stdout.
//
// The stdout contract is strict: on success the token line is the only
// output. The SDK's logger channels are muted to critical-and-above before
// the client is constructed so no diagnostic output can leak into it.
//
// Exit status is 0 on success. If the service rejects the evidence the shim
// writes "could not generate attestation" to stderr and exits 1; any other
// SDK failure (no GPU, network errors) surfaces its error on stderr with a
// non-zero exit. There are no retries.
//
// Example usage:
//
//	gpu-attester 9ee1fbd4a505bd2e339e0f80e81e53be29c06fdd4946e642b1c9f07d7c256a29
package main
