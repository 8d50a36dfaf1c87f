/*
Package gpuattest wraps the go-nvtrust GPU attestation SDK behind a small
capability surface: configure a client with a name, a nonce and a verifier
registration, collect evidence, submit it for remote attestation and read
back the issued token.

The package deliberately treats evidence as opaque. Measurement formats,
certificate chains and the NRAS wire protocol are owned by the SDK and the
remote service; callers only see a pass/fail result and a token string.

A typical invocation:

	client := gpuattest.NewClient()
	client.SetName("nilcc-gpu-attestation")
	client.SetNonce(nonce)
	client.AddVerifier(gpuattest.Verifier{
		Device:      gpuattest.DeviceGPU,
		Environment: gpuattest.EnvironmentRemote,
		URL:         gpuattest.NRASGPUAttestURL,
	})

	evidence, err := client.GetEvidence(ctx)
	// ...
	ok, err := client.Attest(ctx, evidence)
	// ...
	token := client.GetToken()

The Attester interface covers that surface so callers can substitute a fake
in tests.
*/
package gpuattest
