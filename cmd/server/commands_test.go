package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	mu       sync.Mutex
	startErr error
	started  bool
	stopped  bool
}

func (w *fakeWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = w.startErr == nil
	return w.startErr
}

func (w *fakeWorker) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

func listenLocal(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestRunServerWorkerStartFailureReleasesListener(t *testing.T) {
	ln := listenLocal(t)
	served := make(chan struct{}, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- struct{}{}
	})}
	worker := &fakeWorker{startErr: errors.New("redis unreachable")}

	done := make(chan error, 1)
	go func() { done <- runServer(context.Background(), zerolog.New(io.Discard), srv, ln, worker) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis unreachable")
	case <-time.After(5 * time.Second):
		t.Fatal("runServer kept running after the worker failed to start")
	}

	_, err := ln.Accept()
	require.ErrorIs(t, err, net.ErrClosed)
	assert.Empty(t, served)
	assert.False(t, worker.stopped)
}

func TestRunServerStartsWorkerAndShutsDown(t *testing.T) {
	ln := listenLocal(t)
	worker := &fakeWorker{}
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		worker.mu.Lock()
		started := worker.started
		worker.mu.Unlock()
		if !started {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, zerolog.New(io.Discard), srv, ln, worker) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "worker must be running before requests are served")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not stop after cancel")
	}
	worker.mu.Lock()
	defer worker.mu.Unlock()
	assert.True(t, worker.stopped)
}

func TestRunServerWithoutWorker(t *testing.T) {
	ln := listenLocal(t)
	srv := &http.Server{Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, runServer(ctx, zerolog.New(io.Discard), srv, ln, nil))
}
