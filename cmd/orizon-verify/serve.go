package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/orizon-verify/internal/verifyserver"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		certPEM string
		keyPEM  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the QUIC verification daemon in-process (same server as cmd/verifyd)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if certPEM == "" || keyPEM == "" {
				return fmt.Errorf("serve: --cert and --key are required (QUIC requires TLS)")
			}
			cert, err := tls.LoadX509KeyPair(certPEM, keyPEM)
			if err != nil {
				return fmt.Errorf("serve: load TLS key pair: %w", err)
			}

			srv := verifyserver.New(verifyserver.Config{
				Addrs:           []string{opts.cfg.Server.Address},
				TLSConfig:       verifyserver.SelfSignedTLSConfig(cert),
				VerifierVersion: opts.cfg.VerifierVersion,
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "serving on %s\n", opts.cfg.Server.Address)
			err = srv.Serve(ctx)
			if err != nil && ctx.Err() != nil {
				return nil // clean shutdown via signal
			}
			return err
		},
	}
	cmd.Flags().StringVar(&certPEM, "cert", "", "TLS certificate file (PEM)")
	cmd.Flags().StringVar(&keyPEM, "key", "", "TLS private key file (PEM)")
	return cmd
}
