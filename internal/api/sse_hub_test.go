package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stringcalc/domain/instrument"
	"stringcalc/internal/updater"
)

func startHub(t *testing.T) *SSEHub {
	t.Helper()
	hub := NewSSEHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func TestHubFansOutToEveryViewer(t *testing.T) {
	hub := startHub(t)

	a := make(chan TableEvent, 1)
	b := make(chan TableEvent, 1)
	hub.register <- a
	hub.register <- b
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish(updater.Notice{Created: []instrument.RowKey{"A4"}})

	for _, ch := range []chan TableEvent{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "table", ev.EventType)
			assert.Equal(t, []instrument.RowKey{"A4"}, ev.Notice.Created)
		case <-time.After(time.Second):
			t.Fatal("viewer got no event")
		}
	}

	hub.unregister <- a
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHandleSSEStreamsTableEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)

	r := gin.New()
	r.GET("/events", hub.HandleSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	// headers are only flushed with the first event
	go func() {
		for hub.ClientCount() == 0 && ctx.Err() == nil {
			time.Sleep(5 * time.Millisecond)
		}
		hub.Publish(updater.Notice{Updated: []instrument.RowKey{"E2"}})
	}()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data:") {
			break
		}
	}
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "event:table", lines[0])
	assert.Contains(t, lines[1], `"updated":["E2"]`)
}
