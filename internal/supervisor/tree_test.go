// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %f, want 5.0", cfg.FailureThreshold)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree, err := NewTree(TreeConfig{})
	if err != nil {
		t.Fatalf("NewTree() = %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("zero FailureThreshold not defaulted: %f", tree.config.FailureThreshold)
	}
	if tree.Root() == nil {
		t.Error("Root() = nil")
	}
}

func TestTreeRunsServicesAcrossLayers(t *testing.T) {
	tree, err := NewTree(DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree() = %v", err)
	}

	var started atomic.Int32
	blocking := func(ctx context.Context) error {
		started.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}

	tree.AddStorageService(Func{Name: "gc", Run: blocking})
	tree.AddPipelineService(Func{Name: "queue", Run: blocking})
	tree.AddAPIService(Func{Name: "server", Run: blocking})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for started.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if started.Load() != 3 {
		t.Errorf("started %d services, want 3", started.Load())
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	tree, err := NewTree(DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree() = %v", err)
	}

	var runs atomic.Int32
	tree.AddPipelineService(Func{Name: "flaky", Run: func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("transient failure")
		}
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Error("failed service was not restarted")
	}

	cancel()
	<-errCh
}

type fakeHTTPServer struct {
	listenErr   error
	listenDone  chan struct{}
	shutdownErr error
	shutdowns   atomic.Int32
}

func (s *fakeHTTPServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.listenDone
	return http.ErrServerClosed
}

func (s *fakeHTTPServer) Shutdown(context.Context) error {
	s.shutdowns.Add(1)
	close(s.listenDone)
	return s.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	srv := &fakeHTTPServer{listenDone: make(chan struct{})}
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	srv := &fakeHTTPServer{listenErr: errors.New("address in use")}
	svc := NewHTTPService(srv, time.Second)

	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() = nil, want listen error")
	}
}
