package gpuattest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/confidentsecurity/go-nvtrust/pkg/gonvtrust"
	"github.com/confidentsecurity/go-nvtrust/pkg/gonvtrust/gpu"
	"github.com/confidentsecurity/go-nvtrust/pkg/gonvtrust/nras"
)

// NRASGPUAttestURL is the GPU attestation endpoint of the NVIDIA Remote
// Attestation Service.
const NRASGPUAttestURL = "https://nras.attestation.nvidia.com/v3/attest/gpu"

// Device identifies the class of device a verifier applies to.
type Device int

const (
	DeviceGPU Device = iota
	DeviceSwitch
)

// Environment identifies where evidence gets verified.
type Environment int

const (
	EnvironmentLocal Environment = iota
	EnvironmentRemote
)

// Verifier ties a device class to a verification environment and endpoint.
type Verifier struct {
	Device      Device
	Environment Environment
	URL         string
	Params      string
}

// Evidence is an opaque handle over the measurement session opened for one
// attestation round. Callers must not inspect it.
type Evidence struct {
	nonce []byte
}

// Attester is the capability surface the CLI shim and the report service
// consume. *Client implements it against the real SDK.
type Attester interface {
	GetEvidence(ctx context.Context) (Evidence, error)
	Attest(ctx context.Context, evidence Evidence) (bool, error)
	GetToken() string
}

// Client drives GPU attestation through go-nvtrust. Construct once per
// attestation round, it is not safe for concurrent use.
type Client struct {
	name      string
	nonce     string
	verifiers []Verifier
	admin     *gpu.NvmlGPUAdmin
	result    *gonvtrust.AttestationResult
}

func NewClient() *Client {
	return &Client{}
}

// SetName records a human-readable name for the attestation request.
func (c *Client) SetName(name string) {
	c.name = name
}

// SetNonce records the caller-supplied nonce, hex-encoded. The nonce is
// passed through unmodified; the SDK rejects malformed values.
func (c *Client) SetNonce(nonce string) {
	c.nonce = nonce
}

// AddVerifier registers a verifier for the next attestation round.
func (c *Client) AddVerifier(v Verifier) {
	c.verifiers = append(c.verifiers, v)
}

func (c *Client) verifier() (Verifier, error) {
	if len(c.verifiers) != 1 {
		return Verifier{}, fmt.Errorf("expected exactly one registered verifier, have %d", len(c.verifiers))
	}
	v := c.verifiers[0]
	if v.Device != DeviceGPU {
		return Verifier{}, errors.New("only GPU verifiers are supported")
	}
	if v.Environment != EnvironmentRemote {
		return Verifier{}, errors.New("only remote verification is supported")
	}
	if v.URL != NRASGPUAttestURL {
		return Verifier{}, fmt.Errorf("unsupported verifier URL %q", v.URL)
	}
	return v, nil
}

// GetEvidence opens the SDK's measurement session over the confidential
// compute capable GPUs on the host and binds the configured nonce into an
// opaque evidence handle. Hosts without a usable GPU fail here. The SDK
// reads measurements from the session exactly once, when Attest submits
// the evidence.
func (c *Client) GetEvidence(ctx context.Context) (Evidence, error) {
	if _, err := c.verifier(); err != nil {
		return Evidence{}, err
	}

	nonce, err := hex.DecodeString(c.nonce)
	if err != nil {
		return Evidence{}, fmt.Errorf("decoding nonce: %w", err)
	}

	if c.admin == nil {
		admin, err := gpu.NewNvmlGPUAdmin(nil)
		if err != nil {
			return Evidence{}, fmt.Errorf("initializing GPU admin: %w", err)
		}
		c.admin = admin
	}

	return Evidence{nonce: nonce}, nil
}

// Attest submits the evidence to the registered verifier and closes the
// measurement session. It returns false with a nil error when the service
// rejects the evidence, and an error for transport or SDK failures.
func (c *Client) Attest(ctx context.Context, evidence Evidence) (bool, error) {
	if _, err := c.verifier(); err != nil {
		return false, err
	}
	if c.admin == nil || evidence.nonce == nil {
		return false, errors.New("no evidence requested")
	}

	defer func() {
		c.admin.Shutdown()
		c.admin = nil
	}()

	attester := gonvtrust.NewRemoteAttester(c.admin, nras.NewNRASClient(http.DefaultClient))
	result, err := attester.Attest(ctx, evidence.nonce)
	if err != nil {
		return false, fmt.Errorf("attesting GPU evidence: %w", err)
	}

	c.result = result
	return result.Result, nil
}

// GetToken returns the token issued by the last successful attestation, or
// the empty string if there is none.
func (c *Client) GetToken() string {
	if c.result == nil || c.result.JWTToken == nil {
		return ""
	}
	return c.result.JWTToken.Raw
}
