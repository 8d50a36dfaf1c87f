package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/NillionNetwork/nilcc-attester/gpuattest"
)

// runApp drives the CLI with a fake attester and captures output. It
// returns the exit code the program would have terminated with.
func runApp(t *testing.T, fake *gpuattest.FakeAttester, args ...string) (exitCode int, stdout, stderr string, nonce string) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	factory := func(n string) gpuattest.Attester {
		nonce = n
		return fake
	}

	app := newApp(factory, &outBuf, &errBuf)
	app.ExitErrHandler = func(cCtx *cli.Context, err error) {}

	err := app.Run(append([]string{"gpu-attester"}, args...))
	if err != nil {
		var exitErr cli.ExitCoder
		require.ErrorAs(t, err, &exitErr)
		exitCode = exitErr.ExitCode()
	}
	return exitCode, outBuf.String(), errBuf.String(), nonce
}

func TestSuccessPrintsBase64Token(t *testing.T) {
	fake := &gpuattest.FakeAttester{Token: "eyJhbGciOiJFUzM4NCJ9.payload.sig"}

	code, stdout, stderr, nonce := runApp(t, fake, "deadbeef")

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "deadbeef", nonce)

	expected := base64.StdEncoding.EncodeToString([]byte(fake.Token))
	assert.Equal(t, expected+"\n", stdout)
}

func TestTokenRoundTrips(t *testing.T) {
	fake := &gpuattest.FakeAttester{Token: "token with spaces é"}

	_, stdout, _, _ := runApp(t, fake, "deadbeef")

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, fake.Token, string(decoded))
}

func TestAttestationRejected(t *testing.T) {
	fake := &gpuattest.FakeAttester{Reject: true}

	code, stdout, stderr, _ := runApp(t, fake, "deadbeef")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "could not generate attestation\n", stderr)
}

func TestMissingNonceSkipsSDK(t *testing.T) {
	constructed := false
	factory := func(string) gpuattest.Attester {
		constructed = true
		return &gpuattest.FakeAttester{}
	}

	var outBuf, errBuf bytes.Buffer
	app := newApp(factory, &outBuf, &errBuf)
	app.ExitErrHandler = func(cCtx *cli.Context, err error) {}

	err := app.Run([]string{"gpu-attester"})
	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)

	assert.NotZero(t, exitErr.ExitCode())
	assert.Contains(t, errBuf.String(), "usage: gpu-attester <nonce>")
	assert.Empty(t, outBuf.String())
	assert.False(t, constructed, "SDK must not be touched on usage errors")
}

func TestEvidenceErrorPropagates(t *testing.T) {
	fake := &gpuattest.FakeAttester{EvidenceErr: errors.New("no GPU present")}

	code, stdout, _, _ := runApp(t, fake, "deadbeef")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}

func TestAttestErrorPropagates(t *testing.T) {
	fake := &gpuattest.FakeAttester{AttestErr: errors.New("nras unreachable")}

	code, stdout, _, _ := runApp(t, fake, "deadbeef")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}

func TestOperationOrder(t *testing.T) {
	fake := &gpuattest.FakeAttester{Token: "T"}

	runApp(t, fake, "deadbeef")

	assert.Equal(t, []string{"GetEvidence", "Attest", "GetToken"}, fake.Calls)
}

func TestMuteSDKLoggersKeepsStdoutClean(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
	})

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = origStdout })

	var errBuf bytes.Buffer
	muteSDKLoggers(&errBuf)

	// SDK core channel
	slog.Info("collecting GPU evidence")
	slog.Error("verifier certificate chain warning")
	// GPU verifier info channel
	log.Print("GPU verifier info")

	require.NoError(t, w.Close())
	os.Stdout = origStdout
	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Empty(t, string(captured), "SDK loggers must not reach stdout")
	assert.Empty(t, errBuf.String(), "records below critical must be dropped")

	slog.Log(context.Background(), levelCritical, "sdk fatal")
	assert.Contains(t, errBuf.String(), "sdk fatal")
}

func TestDeterministicOutput(t *testing.T) {
	first := &gpuattest.FakeAttester{Token: "T"}
	second := &gpuattest.FakeAttester{Token: "T"}

	_, out1, _, _ := runApp(t, first, "deadbeef")
	_, out2, _, _ := runApp(t, second, "deadbeef")

	assert.Equal(t, out1, out2)
}
