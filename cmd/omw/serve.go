package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alixinne/omw/link"
)

func newServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "answer link calls over stdio or TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "TCP address to listen on (default: serve stdio)")
	return cmd
}

// stdio bridges the process streams into the ReadWriter the link
// framing wants. Logging stays on stderr so the protocol owns stdout.
type stdio struct {
	io.Reader
	io.Writer
}

func runServe(ctx context.Context, listen string) error {
	cfg, log, err := setup(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if listen == "" {
		log.Info("serving on stdio", zap.String("namespace", cfg.Namespace))
		return serveLink(ctx, s, link.NewConn(stdio{os.Stdin, os.Stdout}))
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Info("serving on tcp", zap.String("address", ln.Addr().String()), zap.String("namespace", cfg.Namespace))

	// One session at a time: the wrapper is single-call by design and
	// both hosts dispatch sequentially.
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Info("peer connected", zap.String("remote", conn.RemoteAddr().String()))
		if err := serveLink(ctx, s, link.NewConn(conn)); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("session ended with error", zap.Error(err))
		}
		conn.Close()
	}
}

func serveLink(ctx context.Context, s *session, l link.Link) error {
	w, err := s.linkWrapper(l)
	if err != nil {
		return err
	}
	return w.Serve(ctx)
}
