package report

import (
	"encoding/json"
	"fmt"

	sev_abi "github.com/google/go-sev-guest/abi"
	sev_client "github.com/google/go-sev-guest/client"
	tdx_abi "github.com/google/go-tdx-guest/abi"
	tdx_client "github.com/google/go-tdx-guest/client"
	tdx_pb "github.com/google/go-tdx-guest/proto/tdx"
	"google.golang.org/protobuf/encoding/protojson"
)

// VMPL is the privilege level SNP reports are requested at.
const VMPL = 1

// ReportData is the caller-controlled data bound into a hardware report.
type ReportData = [64]byte

// Provider produces raw attestation evidence for one CVM platform and
// knows how to render it into a structured view for API responses.
type Provider interface {
	Platform() string
	Attest(reportData ReportData) ([]byte, error)
	Parse(raw []byte) (json.RawMessage, error)
}

// SNPProvider fetches SEV-SNP attestation reports from /dev/sev-guest.
type SNPProvider struct{}

func (SNPProvider) Platform() string { return "sev-snp" }

func (SNPProvider) Attest(reportData ReportData) ([]byte, error) {
	device, err := sev_client.OpenDevice()
	if err != nil {
		return nil, fmt.Errorf("opening SEV guest device: %w", err)
	}
	defer device.Close()

	raw, err := sev_client.GetRawReportAtVmpl(device, reportData, VMPL)
	if err != nil {
		return nil, fmt.Errorf("fetching attestation report: %w", err)
	}
	return raw, nil
}

func (SNPProvider) Parse(raw []byte) (json.RawMessage, error) {
	parsed, err := sev_abi.ReportToProto(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing attestation report: %w", err)
	}
	return protojson.Marshal(parsed)
}

// TDXProvider fetches TDX quotes, preferring the configfs interface with a
// fallback to the guest device.
type TDXProvider struct{}

func (TDXProvider) Platform() string { return "tdx" }

func (TDXProvider) Attest(reportData ReportData) ([]byte, error) {
	qp := &tdx_client.LinuxConfigFsQuoteProvider{}
	if qp.IsSupported() == nil {
		return qp.GetRawQuote(reportData)
	}

	device, err := tdx_client.OpenDevice()
	if err != nil {
		return nil, fmt.Errorf("opening TDX guest device: %w", err)
	}
	defer device.Close()

	return tdx_client.GetRawQuote(device, reportData)
}

func (TDXProvider) Parse(raw []byte) (json.RawMessage, error) {
	quote, err := tdx_abi.QuoteToProto(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing quote: %w", err)
	}

	v4, ok := quote.(*tdx_pb.QuoteV4)
	if !ok {
		return nil, fmt.Errorf("unsupported quote type: %T", quote)
	}
	return protojson.Marshal(v4)
}

// ProviderForPlatform maps a platform name to its provider.
func ProviderForPlatform(platform string) (Provider, error) {
	switch platform {
	case "sev-snp":
		return SNPProvider{}, nil
	case "tdx":
		return TDXProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}
