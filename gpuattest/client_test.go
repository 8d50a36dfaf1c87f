package gpuattest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RequiresVerifier(t *testing.T) {
	client := NewClient()
	client.SetName("nilcc-gpu-attestation")
	client.SetNonce("00")

	_, err := client.GetEvidence(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one registered verifier")
}

func TestClient_RejectsLocalVerifier(t *testing.T) {
	client := NewClient()
	client.AddVerifier(Verifier{
		Device:      DeviceGPU,
		Environment: EnvironmentLocal,
		URL:         NRASGPUAttestURL,
	})

	_, err := client.GetEvidence(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote verification")
}

func TestClient_RejectsUnknownVerifierURL(t *testing.T) {
	client := NewClient()
	client.AddVerifier(Verifier{
		Device:      DeviceGPU,
		Environment: EnvironmentRemote,
		URL:         "https://verifier.example.com/attest",
	})

	_, err := client.Attest(context.Background(), Evidence{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported verifier URL")
}

func TestClient_AttestRequiresEvidence(t *testing.T) {
	client := NewClient()
	client.AddVerifier(Verifier{
		Device:      DeviceGPU,
		Environment: EnvironmentRemote,
		URL:         NRASGPUAttestURL,
	})

	// Attest before GetEvidence: no measurement session exists, so the
	// call must fail without reaching the SDK.
	_, err := client.Attest(context.Background(), Evidence{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no evidence requested")
}

func TestClient_TokenEmptyBeforeAttestation(t *testing.T) {
	assert.Equal(t, "", NewClient().GetToken())
}
