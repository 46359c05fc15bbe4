package entrypoint

import (
	"context"
	"encoding/hex"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booknotes/internal/config"
)

func TestSessionSecret_UsesConfiguredHexKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	secret, err := sessionSecret(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, secret)
}

func TestSessionSecret_RawKey(t *testing.T) {
	secret, err := sessionSecret("not-hex-at-all")
	require.NoError(t, err)
	assert.Equal(t, []byte("not-hex-at-all"), secret)
}

func TestSessionSecret_GeneratesWhenEmpty(t *testing.T) {
	first, err := sessionSecret("")
	require.NoError(t, err)
	second, err := sessionSecret("")
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)
}

func TestServe_ShutsDownOnContextCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		HTTP:   config.HTTP{Host: "127.0.0.1", Port: 0},
		Global: config.Global{ShutdownTimeoutInSeconds: 1},
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdownCalled := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, gin.New(), cfg, func(context.Context) { close(shutdownCalled) })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	select {
	case <-shutdownCalled:
	default:
		t.Fatal("shutdown callback was not called")
	}
}

func TestServe_ReturnsListenError(t *testing.T) {
	cfg := &config.Config{
		HTTP:   config.HTTP{Host: "127.0.0.1", Port: -1},
		Global: config.Global{ShutdownTimeoutInSeconds: 1},
	}

	err := Serve(context.Background(), gin.New(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestServe_DrainsRequestsBeforeShutdownCallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	started := make(chan struct{})
	var handled atomic.Bool
	router := gin.New()
	router.GET("/slow", func(c *gin.Context) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		handled.Store(true)
		c.String(http.StatusOK, "done")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var handledAtCallback atomic.Bool
	done := make(chan error, 1)
	go func() {
		srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second}
		done <- serve(ctx, srv, ln, 5*time.Second, func(context.Context) {
			handledAtCallback.Store(handled.Load())
		})
	}()

	respCh := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			respCh <- 0
			return
		}
		resp.Body.Close()
		respCh <- resp.StatusCode
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	assert.Equal(t, http.StatusOK, <-respCh)
	assert.True(t, handledAtCallback.Load(), "shutdown callback ran before the request finished")
}
