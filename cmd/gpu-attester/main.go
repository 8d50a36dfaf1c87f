package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/NillionNetwork/nilcc-attester/gpuattest"
)

// attestationName identifies nilcc attestation requests to the SDK.
const attestationName = "nilcc-gpu-attestation"

// levelCritical sits above slog.LevelError; nothing the SDK logs reaches it.
const levelCritical = slog.LevelError + 4

// muteSDKLoggers silences the two logger channels the attestation SDK
// writes through, so stdout carries nothing but the token line. Must run
// before the SDK client is constructed.
func muteSDKLoggers(stderr io.Writer) {
	// SDK core channel: the process default slog logger.
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: levelCritical})))
	// GPU verifier info channel: the stdlib log default logger.
	log.SetOutput(io.Discard)
}

func newClient(nonce string) gpuattest.Attester {
	client := gpuattest.NewClient()
	client.SetName(attestationName)
	client.SetNonce(nonce)
	client.AddVerifier(gpuattest.Verifier{
		Device:      gpuattest.DeviceGPU,
		Environment: gpuattest.EnvironmentRemote,
		URL:         gpuattest.NRASGPUAttestURL,
		Params:      "",
	})
	return client
}

func newApp(newAttester func(nonce string) gpuattest.Attester, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "gpu-attester",
		Usage:           "Attest the host GPU and print a base64-encoded attestation token",
		ArgsUsage:       "<nonce>",
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				fmt.Fprintln(stderr, "usage: gpu-attester <nonce>")
				return cli.Exit("", 2)
			}
			nonce := cCtx.Args().First()

			muteSDKLoggers(stderr)
			client := newAttester(nonce)

			evidence, err := client.GetEvidence(cCtx.Context)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			ok, err := client.Attest(cCtx.Context, evidence)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if !ok {
				fmt.Fprintln(stderr, "could not generate attestation")
				return cli.Exit("", 1)
			}

			token := client.GetToken()
			encoded := base64.StdEncoding.EncodeToString([]byte(token))
			fmt.Fprintln(stdout, strings.TrimSpace(encoded))
			return nil
		},
	}
}

func main() {
	app := newApp(newClient, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
