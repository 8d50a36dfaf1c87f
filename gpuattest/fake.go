package gpuattest

import "context"

// FakeAttester is a deterministic Attester for tests. The zero value
// collects empty evidence, passes attestation and issues an empty token.
type FakeAttester struct {
	// Token is returned by GetToken after a successful Attest.
	Token string

	// Reject makes Attest report failure without an error.
	Reject bool

	// EvidenceErr is returned by GetEvidence.
	EvidenceErr error

	// AttestErr is returned by Attest.
	AttestErr error

	// Calls records the order of invoked operations.
	Calls []string

	attested bool
}

var _ Attester = (*FakeAttester)(nil)

func (f *FakeAttester) GetEvidence(ctx context.Context) (Evidence, error) {
	f.Calls = append(f.Calls, "GetEvidence")
	if f.EvidenceErr != nil {
		return Evidence{}, f.EvidenceErr
	}
	return Evidence{}, nil
}

func (f *FakeAttester) Attest(ctx context.Context, evidence Evidence) (bool, error) {
	f.Calls = append(f.Calls, "Attest")
	if f.AttestErr != nil {
		return false, f.AttestErr
	}
	if f.Reject {
		return false, nil
	}
	f.attested = true
	return true, nil
}

func (f *FakeAttester) GetToken() string {
	f.Calls = append(f.Calls, "GetToken")
	if !f.attested {
		return ""
	}
	return f.Token
}
