/*
Package httpserver serves CVM attestation reports over HTTP.

The server generates one hardware report at startup, bound to the
fingerprint of the TLS certificate the CVM proxy presents, and serves it
from memory. On GPU VMs the startup report is accompanied by a GPU
attestation token obtained through the gpu-attester binary. A separate
endpoint generates fresh reports over caller-supplied nonces.

# Endpoints

  - GET /health - Plain liveness probe
  - GET /about - Build information
  - GET /api/v1/report - Boot-time report (parsed view)
  - GET /api/v2/report - Boot-time report including raw report bytes
  - POST /api/v1/report/generate - Fresh report over a caller nonce
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

Prometheus metrics are served on a separate listen address, and pprof can
be mounted under /debug.
*/
package httpserver
