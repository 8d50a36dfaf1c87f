package main

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/NillionNetwork/nilcc-attester/cert"
	"github.com/NillionNetwork/nilcc-attester/cmd/flags"
	"github.com/NillionNetwork/nilcc-attester/httpserver"
	"github.com/NillionNetwork/nilcc-attester/report"
)

var serviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "0.0.0.0:8080",
		Usage: "address to listen on for the report API",
	},
	&cli.StringFlag{
		Name:     "nilcc-version",
		Required: true,
		Usage:    "nilcc release version reported in the environment block",
	},
	&cli.StringFlag{
		Name:     "vm-type",
		Required: true,
		Usage:    "type of CVM: 'cpu' or 'gpu'",
	},
	&cli.StringFlag{
		Name:  "platform",
		Value: "sev-snp",
		Usage: "CVM platform the report is generated on: 'sev-snp' or 'tdx'",
	},
	&cli.StringFlag{
		Name:  "gpu-attester-path",
		Value: "/opt/nillion/gpu-attester/gpu-attester",
		Usage: "path to the gpu-attester binary",
	},
	&cli.StringFlag{
		Name:  "proxy-endpoint",
		Value: "cvm-nilcc-proxy-1:443",
		Usage: "host:port of the CVM proxy whose certificate gets bound into the report",
	},
	&cli.StringFlag{
		Name:     "attestation-domain",
		Required: true,
		Usage:    "domain name used as SNI when fetching the proxy certificate",
	},
}

func main() {
	app := &cli.App{
		Name:  "nilcc-attester",
		Usage: "Serve CVM attestation reports",
		Flags: append(serviceFlags, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			logger := flags.SetupLogger(cCtx)

			vmType, err := httpserver.ParseVMType(cCtx.String("vm-type"))
			if err != nil {
				logger.Error("Invalid vm-type", "err", err)
				return err
			}

			provider, err := report.ProviderForPlatform(cCtx.String("platform"))
			if err != nil {
				logger.Error("Invalid platform", "err", err)
				return err
			}

			fetcher := &cert.Fetcher{
				ProxyEndpoint: cCtx.String("proxy-endpoint"),
				ServerName:    cCtx.String("attestation-domain"),
			}
			logger.Info("Fetching proxy certificate", "endpoint", fetcher.ProxyEndpoint, "domain", fetcher.ServerName)
			fingerprint, err := fetcher.FetchFingerprint(context.Background())
			if err != nil {
				logger.Error("Failed to fetch proxy certificate", "err", err)
				return err
			}

			reporter := report.NewHardwareReporter(provider, cCtx.String("gpu-attester-path"))

			logger.Info("Generating hardware report", "platform", provider.Platform())
			bootReport, err := reporter.HardwareReport(report.BindFingerprint(fingerprint))
			if err != nil {
				logger.Error("Failed to generate hardware report", "err", err)
				return err
			}

			var gpuToken *string
			if vmType == httpserver.VMTypeGPU {
				logger.Info("Requesting GPU attestation token")
				token, err := reporter.GPUReport(context.Background(), hex.EncodeToString(fingerprint[:]))
				if err != nil {
					logger.Error("Failed to generate GPU attestation", "err", err)
					return err
				}
				gpuToken = &token
			}

			env := httpserver.EnvironmentSpec{
				NilccVersion: cCtx.String("nilcc-version"),
				VMType:       vmType,
			}
			handler := httpserver.NewHandler(reporter, env, bootReport, gpuToken, logger)

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
