package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestConn upgrades one server-side connection, hands it to serve,
// and returns the client end.
func dialTestConn(t *testing.T, serve func(*Conn)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serve(NewConn(raw))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// Gorilla allows only one concurrent writer per connection. The monitor
// stream writes from two places, the event feed and the reader loop's
// replies, so the wrapper must serialize them. Unserialized writes
// panic inside gorilla rather than fail the assertion, which is exactly
// what this test would surface.
func TestConn_ConcurrentWritersAreSerialized(t *testing.T) {
	const (
		writers      = 8
		perWriter    = 50
		totalWritten = writers * perWriter
	)

	served := make(chan struct{})
	client := dialTestConn(t, func(conn *Conn) {
		defer close(served)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < perWriter; j++ {
					var err error
					if i%2 == 0 {
						err = conn.WriteRaw([]byte(`{"type":"alert"}`))
					} else {
						err = conn.WriteTyped(PongResponse{Event: EventPong})
					}
					assert.NoError(t, err)
				}
			}(i)
		}
		wg.Wait()
	})

	received := 0
	client.SetReadDeadline(time.Now().Add(10 * time.Second))
	for received < totalWritten {
		_, _, err := client.ReadMessage()
		require.NoError(t, err)
		received++
	}
	assert.Equal(t, totalWritten, received)

	<-served
}

// A reply racing the event feed mirrors the live handler: the reader
// loop answers a ping while events stream out.
func TestConn_PongDuringEventStream(t *testing.T) {
	const events = 100

	served := make(chan struct{})
	client := dialTestConn(t, func(conn *Conn) {
		defer close(served)

		// Event feed.
		feedDone := make(chan struct{})
		go func() {
			defer close(feedDone)
			for i := 0; i < events; i++ {
				if err := conn.WriteRaw([]byte(`{"type":"question_changed"}`)); err != nil {
					return
				}
			}
		}()

		// Reader loop replying mid-stream.
		var msg RequestPayload
		for {
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}
			if msg.Action == ActionPing {
				assert.NoError(t, conn.WriteTyped(PongResponse{Event: EventPong}))
			}
		}
		<-feedDone
	})

	require.NoError(t, client.WriteJSON(RequestPayload{Action: ActionPing}))

	// Drain the events plus the pong reply.
	sawPong := 0
	client.SetReadDeadline(time.Now().Add(10 * time.Second))
	for i := 0; i < events+1; i++ {
		_, raw, err := client.ReadMessage()
		require.NoError(t, err)
		if strings.Contains(string(raw), string(EventPong)) {
			sawPong++
		}
	}
	assert.Equal(t, 1, sawPong)

	client.Close()
	<-served
}
