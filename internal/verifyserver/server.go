// Package verifyserver exposes the verification pipeline (internal/verifypipeline)
// as an HTTP/3-over-QUIC daemon, so an SMT-backend process consuming the
// extracted basic paths can live on another host from whatever is editing
// the source. It is grounded on the teacher's
// internal/runtime/netstack.HTTP3Server, which wraps the same
// quic-go/http3 server lifecycle (bind a UDP packet conn, hand it to
// http3.Server.Serve, and track a done channel for Stop).
package verifyserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	http3 "github.com/quic-go/quic-go/http3"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/orizon-verify/internal/verifypipeline"
)

// Config controls how a Server listens and how much request concurrency
// it admits.
type Config struct {
	// Addrs is every "host:port" this daemon binds a QUIC/UDP socket on.
	// Most deployments name exactly one; a second entry (e.g. a loopback
	// address alongside a routable one) is served concurrently, not
	// sequentially — see Serve.
	Addrs []string

	TLSConfig *tls.Config

	// MaxConcurrentExtractions bounds how many of a single request's
	// functions have their results converted to wire form at once. The
	// basic paths themselves are already extracted by verifypipeline.Run,
	// one function after another, before this fan-out starts. Zero means
	// unbounded.
	MaxConcurrentExtractions int

	// VerifierVersion is the project config's default `orizon-verify:`
	// constraint (internal/verifyconfig.Config.VerifierVersion), applied
	// to any submitted file that declares no header of its own.
	VerifierVersion string
}

// Server is a running (or not-yet-started) verify daemon.
type Server struct {
	cfg     Config
	handler http.Handler

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New builds a Server for cfg. The returned Server does not listen until
// Serve is called.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, shutdown: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/verify", s.handleVerify)
	s.handler = mux
	return s
}

// Serve binds every configured address and serves HTTP/3 on each
// concurrently, exactly the shape of the teacher's packagemanager.Manager
// fanning bounded work out over errgroup.WithContext: one goroutine per
// listener, the whole group torn down the moment any one of them errors
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if len(s.cfg.Addrs) == 0 {
		return fmt.Errorf("verifyserver: no listen addresses configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range s.cfg.Addrs {
		addr := addr
		g.Go(func() error { return s.serveOne(gctx, addr) })
	}
	return g.Wait()
}

func (s *Server) serveOne(ctx context.Context, addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("verifyserver: listen %s: %w", addr, err)
	}

	srv := &http3.Server{TLSConfig: s.cfg.TLSConfig, Handler: s.handler}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(pc) }()

	select {
	case <-ctx.Done():
		_ = pc.Close()
		<-errc
		return ctx.Err()
	case <-s.shutdown:
		_ = pc.Close()
		<-errc
		return nil
	case err := <-errc:
		return err
	}
}

// Stop closes every bound socket, unblocking Serve's per-listener
// goroutines; it does not wait for in-flight requests to finish handling.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req VerifyRequest
	if err := msgpack.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}

	resp := s.verify(r.Context(), req)

	w.Header().Set("Content-Type", "application/msgpack")
	if err := msgpack.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
	}
}

// verify runs the pipeline and fans per-function extraction results back
// together, bounding concurrency with the same sem-channel-over-errgroup
// shape as the teacher's Manager.ResolveAndFetch.
func (s *Server) verify(ctx context.Context, req VerifyRequest) VerifyResponse {
	jobID := uuid.NewString()
	outcome := verifypipeline.Run(req.Filename, req.Source, s.cfg.VerifierVersion)

	if len(outcome.ParseErrors) != 0 || len(outcome.BuildErrors) != 0 {
		resp := VerifyResponse{JobID: jobID}
		for _, e := range outcome.ParseErrors {
			resp.SourceErrors = append(resp.SourceErrors, e.Error())
		}
		for _, e := range outcome.BuildErrors {
			resp.SourceErrors = append(resp.SourceErrors, e.Error())
		}
		return resp
	}

	results := make([]FunctionResult, len(outcome.Functions))

	limit := s.cfg.MaxConcurrentExtractions
	if limit <= 0 {
		limit = len(outcome.Functions)
	}
	if limit == 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	g, _ := errgroup.WithContext(ctx)
	for i, fo := range outcome.Functions {
		i, fo := i, fo
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			fr := FunctionResult{Function: fo.Name}
			for _, e := range fo.Errors {
				fr.Errors = append(fr.Errors, e.Error())
			}
			for _, p := range fo.BasicPaths {
				fr.BasicPaths = append(fr.BasicPaths, encodeBasicPath(p))
			}
			results[i] = fr
			return nil
		})
	}
	_ = g.Wait() // extraction never returns an error; only ctx cancellation would

	return VerifyResponse{JobID: jobID, Functions: results}
}

// SelfSignedTLSConfig builds a throwaway TLS config for local development
// and tests, the same "InsecureSkipVerify, min TLS 1.2" shortcut the
// teacher's netstack tests use to stand a daemon up without a real cert
// chain (WithInsecureMinTLS12), except this side needs a serving
// certificate rather than a skip-verify client config.
func SelfSignedTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"h3"},
	}
}
