package nse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrao/fiipulse/pkg/httputil"
	"github.com/dkrao/fiipulse/pkg/logger"
)

func TestClient_BootstrapOnceUnderConcurrency(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	log := logger.Nop()
	client := NewClient(httputil.New(log, 5*time.Second), log, server.URL, server.URL)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.bootstrap(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestClient_BootstrapRetriesAfterFailure(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	log := logger.Nop()
	client := NewClient(httputil.New(log, 5*time.Second), log, server.URL, server.URL)

	require.Error(t, client.bootstrap(context.Background()))
	require.NoError(t, client.bootstrap(context.Background()))

	// A successful bootstrap is cached; no further requests go out.
	require.NoError(t, client.bootstrap(context.Background()))
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}
