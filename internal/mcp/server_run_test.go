package mcp

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/abdoul12363/mdph/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_Run_ServerMode(t *testing.T) {
	server, cfg := newTestServer(t)
	cfg.Mode = config.ModeServer
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	// Give the listener a moment to come up
	time.Sleep(100 * time.Millisecond)
	conn, err := net.DialTimeout("tcp", cfg.Address(), time.Second)
	if err != nil {
		t.Errorf("server not listening on %s: %v", cfg.Address(), err)
	} else {
		conn.Close()
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestServer_Run_ServerModeAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer l.Close()

	server, cfg := newTestServer(t)
	cfg.Mode = config.ModeServer
	cfg.Host = "127.0.0.1"
	cfg.Port = l.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Run(ctx); err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want listen failure", err)
	}
}
