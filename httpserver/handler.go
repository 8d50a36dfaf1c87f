package httpserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/NillionNetwork/nilcc-attester/common"
	"github.com/NillionNetwork/nilcc-attester/report"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// VMType describes the kind of CVM the attester runs in. GPU VMs carry a
// GPU attestation token in their reports.
type VMType string

const (
	VMTypeCPU VMType = "cpu"
	VMTypeGPU VMType = "gpu"
)

// ParseVMType validates a vm type string.
func ParseVMType(s string) (VMType, error) {
	switch VMType(s) {
	case VMTypeCPU, VMTypeGPU:
		return VMType(s), nil
	default:
		return "", fmt.Errorf("invalid vm type: %s", s)
	}
}

// EnvironmentSpec describes the CVM environment a report was generated in.
type EnvironmentSpec struct {
	NilccVersion string `json:"nilcc_version"`
	VMType       VMType `json:"vm_type"`
	CPUCount     int    `json:"cpu_count"`
}

// Reporter generates hardware reports and GPU attestation tokens.
// *report.HardwareReporter implements it.
type Reporter interface {
	HardwareReport(data report.ReportData) (*report.Report, error)
	GPUReport(ctx context.Context, nonce string) (string, error)
}

// Handler serves attestation reports. The boot report is generated once at
// startup over the proxy certificate fingerprint; the generate endpoint
// produces fresh reports over caller-supplied nonces.
type Handler struct {
	reporter     Reporter
	env          EnvironmentSpec
	bootReport   *report.Report
	bootGPUToken *string
	log          *slog.Logger
}

// NewHandler creates a handler. bootGPUToken is nil for CPU-only VMs.
func NewHandler(reporter Reporter, env EnvironmentSpec, bootReport *report.Report, bootGPUToken *string, log *slog.Logger) *Handler {
	if env.CPUCount == 0 {
		env.CPUCount = runtime.NumCPU()
	}
	return &Handler{
		reporter:     reporter,
		env:          env,
		bootReport:   bootReport,
		bootGPUToken: bootGPUToken,
		log:          log,
	}
}

type reportResponse struct {
	Report      json.RawMessage `json:"report"`
	GPUToken    *string         `json:"gpu_token"`
	Environment EnvironmentSpec `json:"environment"`
}

type reportResponseV2 struct {
	Report      json.RawMessage `json:"report"`
	RawReport   string          `json:"raw_report"`
	GPUToken    *string         `json:"gpu_token"`
	Environment EnvironmentSpec `json:"environment"`
}

type generateRequest struct {
	// Nonce is bound into the hardware report, hex-encoded, 64 bytes.
	Nonce string `json:"nonce"`

	// GPUNonce is bound into the GPU attestation, hex-encoded, 32 bytes.
	// Only honored on GPU VMs.
	GPUNonce string `json:"gpuNonce,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// HandleHealth reports service liveness.
//
// URL: GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleAbout returns build information.
//
// URL: GET /about
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
	})
}

// HandleReportV1 serves the boot-time attestation report.
//
// URL: GET /api/v1/report
func (h *Handler) HandleReportV1(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, reportResponse{
		Report:      h.bootReport.Parsed,
		GPUToken:    h.bootGPUToken,
		Environment: h.env,
	})
}

// HandleReportV2 serves the boot-time attestation report including the raw
// report bytes, hex-encoded.
//
// URL: GET /api/v2/report
func (h *Handler) HandleReportV2(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, reportResponseV2{
		Report:      h.bootReport.Parsed,
		RawReport:   hex.EncodeToString(h.bootReport.Raw),
		GPUToken:    h.bootGPUToken,
		Environment: h.env,
	})
}

// HandleGenerateReport generates a fresh report over a caller-supplied
// nonce. On GPU VMs a gpuNonce additionally requests a GPU attestation
// token. The response carries the parsed report only; raw report bytes
// are a v2 concern.
//
// URL: POST /api/v1/report/generate
// Request body: {"nonce": "<hex, 64 bytes>", "gpuNonce": "<hex, 32 bytes>"}
func (h *Handler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	nonce, err := hex.DecodeString(req.Nonce)
	if err != nil || len(nonce) != 64 {
		http.Error(w, "Invalid nonce: expected 64 hex-encoded bytes", http.StatusBadRequest)
		return
	}
	var reportData report.ReportData
	copy(reportData[:], nonce)

	if req.GPUNonce != "" {
		if gpuNonce, err := hex.DecodeString(req.GPUNonce); err != nil || len(gpuNonce) != 32 {
			http.Error(w, "Invalid gpuNonce: expected 32 hex-encoded bytes", http.StatusBadRequest)
			return
		}
	}

	rep, err := h.reporter.HardwareReport(reportData)
	if err != nil {
		h.log.Error("Failed to generate hardware report", "err", err)
		http.Error(w, "Failed to generate hardware report", http.StatusInternalServerError)
		return
	}

	var gpuToken *string
	if h.env.VMType == VMTypeGPU && req.GPUNonce != "" {
		token, err := h.reporter.GPUReport(r.Context(), req.GPUNonce)
		if err != nil {
			h.log.Error("Failed to generate GPU attestation", "err", err)
			http.Error(w, "Failed to generate GPU attestation", http.StatusInternalServerError)
			return
		}
		gpuToken = &token
	}

	h.writeJSON(w, http.StatusOK, reportResponse{
		Report:      rep.Parsed,
		GPUToken:    gpuToken,
		Environment: h.env,
	})
}
