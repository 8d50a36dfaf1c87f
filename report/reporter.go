// Package report generates the hardware attestation reports served by the
// attester: a CVM platform report bound to caller data, plus a GPU
// attestation token obtained through the gpu-attester binary.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/NillionNetwork/nilcc-attester/cert"
	"github.com/NillionNetwork/nilcc-attester/metrics"
)

// reportDataVersion is the format version stored in byte 0 of the report
// data. Bump when the layout changes.
const reportDataVersion = 0

// Report is one generated hardware report.
type Report struct {
	// Parsed is the structured view of the report.
	Parsed json.RawMessage

	// Raw is the report exactly as the platform returned it.
	Raw []byte
}

// BindFingerprint lays out report data binding a certificate fingerprint:
// byte 0 carries the format version, bytes 1..33 the fingerprint.
func BindFingerprint(fingerprint cert.Fingerprint) ReportData {
	var data ReportData
	data[0] = reportDataVersion
	copy(data[1:33], fingerprint[:])
	return data
}

// HardwareReporter generates hardware reports and GPU attestation tokens.
type HardwareReporter struct {
	provider        Provider
	gpuAttesterPath string
}

// NewHardwareReporter creates a reporter using the given platform provider
// and the path to the gpu-attester binary.
func NewHardwareReporter(provider Provider, gpuAttesterPath string) *HardwareReporter {
	return &HardwareReporter{
		provider:        provider,
		gpuAttesterPath: gpuAttesterPath,
	}
}

// HardwareReport fetches a platform report over the given report data.
func (r *HardwareReporter) HardwareReport(data ReportData) (*Report, error) {
	raw, err := r.provider.Attest(data)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("generating %s report: %w", r.provider.Platform(), err)
	}

	parsed, err := r.provider.Parse(raw)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ReportsGenerated.WithLabelValues("ok").Inc()
	return &Report{Parsed: parsed, Raw: raw}, nil
}

// GPUReport runs the gpu-attester binary with the given nonce and returns
// the attestation token it prints. The binary's stderr is folded into the
// error on failure.
func (r *HardwareReporter) GPUReport(ctx context.Context, nonce string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gpuAttesterPath, nonce)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.GPUAttestations.WithLabelValues("error").Inc()
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("could not generate GPU report: %w", err)
		}
		return "", fmt.Errorf("could not generate GPU report: %s: %w", msg, err)
	}

	metrics.GPUAttestations.WithLabelValues("ok").Inc()
	return strings.TrimSpace(stdout.String()), nil
}
