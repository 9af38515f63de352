package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	xhttp "StockCast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(freePort(t)), xhttp.WithMetricsPath(""))
	app := New(nil, srv)

	var order []string
	app.OnShutdown("first", func() error {
		order = append(order, "first")
		return nil
	})
	app.OnShutdown("second", func() error {
		order = append(order, "second")
		return errors.New("boom")
	})

	taskDone := make(chan struct{})
	app.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(taskDone)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := app.RunContext(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close second: boom")
	assert.Equal(t, []string{"second", "first"}, order)

	select {
	case <-taskDone:
	default:
		t.Fatal("background task still running")
	}
}

func TestRunContextReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(l.Addr().(*net.TCPAddr).Port), xhttp.WithMetricsPath(""))
	app := New(nil, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = app.RunContext(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
