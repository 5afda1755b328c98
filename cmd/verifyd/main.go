// verifyd runs the HTTP/3-over-QUIC verification daemon
// (internal/verifyserver), so `orizon-verify serve` and standalone
// deployments share one entrypoint.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/orizon-lang/orizon-verify/internal/verifyserver"
)

func main() {
	var (
		addrs           string
		certPEM         string
		keyPEM          string
		verifierVersion string
	)
	flag.StringVar(&addrs, "addr", "localhost:4433", "comma-separated host:port addresses to listen on")
	flag.StringVar(&certPEM, "cert", "", "TLS certificate file (PEM)")
	flag.StringVar(&keyPEM, "key", "", "TLS private key file (PEM)")
	flag.StringVar(&verifierVersion, "verifier-version", "", "default orizon-verify: constraint for submitted files with no header of their own")
	flag.Parse()

	if certPEM == "" || keyPEM == "" {
		fmt.Fprintln(os.Stderr, "verifyd: -cert and -key are required (QUIC requires TLS)")
		os.Exit(2)
	}

	cert, err := tls.LoadX509KeyPair(certPEM, keyPEM)
	if err != nil {
		log.Fatalf("verifyd: load TLS key pair: %v", err)
	}

	var list []string
	for _, a := range strings.Split(addrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			list = append(list, a)
		}
	}

	srv := verifyserver.New(verifyserver.Config{
		Addrs:           list,
		TLSConfig:       verifyserver.SelfSignedTLSConfig(cert),
		VerifierVersion: verifierVersion,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("verifyd: listening on %s", strings.Join(list, ", "))
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("verifyd: %v", err)
	}
}
