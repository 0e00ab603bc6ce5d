package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/streaming"
)

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
	auth     []string
	conns    atomic.Int32
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func (m *messageLog) count(msgType string) int {
	n := 0
	for _, env := range m.all() {
		if env.Type == msgType {
			n++
		}
	}
	return n
}

// testServer upgrades to WebSocket, records received envelopes and acks
// start_session/end_session. When dropFirst is set, the first connection
// is closed right after its start_session ack.
func testServer(t *testing.T, dropFirst bool) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.mu.Lock()
		ml.auth = append(ml.auth, r.Header.Get("Authorization"))
		ml.mu.Unlock()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()
		n := ml.conns.Add(1)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
				if dropFirst && n == 1 {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, ml
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAndEndSession(t *testing.T) {
	srv, ml := testServer(t, false)

	b := New(Config{URL: wsURL(srv), AuthToken: "secret"}, nil, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	s := &core.Session{Name: "demo", Tracks: []core.TrackSlot{{Index: 0, Offset: 1.5}}}
	require.NoError(t, b.StartSession(s))
	assert.Equal(t, uint(1), s.ID)
	require.NoError(t, b.EndSession())

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartSession, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSession, msgs[len(msgs)-1].Type)

	var start streaming.StartSessionPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &start))
	assert.Equal(t, "demo", start.Name)
	require.Len(t, start.Tracks, 1)

	ml.mu.Lock()
	assert.Equal(t, "Bearer secret", ml.auth[0])
	ml.mu.Unlock()
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t, false)
	proj, err := geo.NewProjector(core.GeoOrigin{Longitude: 2, Latitude: 48}, 1)
	require.NoError(t, err)

	b := New(Config{URL: wsURL(srv)}, proj, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.Session{Name: "M"}))
	require.NoError(t, b.RecordTrainState(&core.TrainState{Track: 1, Direction: core.South, Tick: 5, Position: core.Vector3{X: -1.5, Z: 2}}))
	require.NoError(t, b.RecordKeyEvent(&core.KeyEvent{Key: "t", Handled: true, Controlled: 1}))
	require.NoError(t, b.EndSession())

	// the end_session ack orders everything sent before it
	assert.Equal(t, 1, ml.count(streaming.TypeTrainState))
	assert.Equal(t, 1, ml.count(streaming.TypeKeyEvent))

	for _, env := range ml.all() {
		if env.Type != streaming.TypeTrainState {
			continue
		}
		var p streaming.TrainStatePayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, "south", p.Direction)
		assert.Equal(t, [3]float32{-1.5, 0, 2}, p.Position)
		assert.InDelta(t, 2, p.Lon, 1e-3)
		assert.InDelta(t, 48, p.Lat, 1e-3)
	}
}

func TestDialError(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1/nothing"}, nil, nil)
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestEndSession_AfterClose(t *testing.T) {
	srv, _ := testServer(t, false)
	b := New(Config{URL: wsURL(srv)}, nil, nil)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())

	assert.Error(t, b.EndSession())
}

func TestReconnect_ReplaysStartSession(t *testing.T) {
	srv, ml := testServer(t, true)

	b := New(Config{URL: wsURL(srv)}, nil, nil)
	b.conn.backoff = 10 * time.Millisecond
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.Session{Name: "again"}))

	assert.Eventually(t, func() bool {
		return ml.conns.Load() == 2 && ml.count(streaming.TypeStartSession) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.RecordKeyEvent(&core.KeyEvent{Key: "p"}))
	assert.Eventually(t, func() bool {
		return ml.count(streaming.TypeKeyEvent) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
