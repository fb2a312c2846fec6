package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/rubikal"
)

func newTestServer(t *testing.T, opts ...rubikal.Option) (*Server, *httptest.Server, *rubikal.Cube) {
	t.Helper()
	cube, err := rubikal.New(opts...)
	require.NoError(t, err)

	s := New(cube, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv, cube
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(payload, &f))
	require.Equal(t, "frame", f.Type)
	return f
}

func TestInitialFrame(t *testing.T) {
	_, srv, _ := newTestServer(t)
	conn := dial(t, srv)

	f := readFrame(t, conn)
	assert.Equal(t, "idle", f.State)
	assert.Empty(t, f.Active)
	assert.Len(t, f.Cubelets, rubikal.CubeletCount)
	assert.Equal(t, "normal", f.Cubelets[0].Display)
}

func TestMoveIsQueuedAndAnimated(t *testing.T) {
	s, srv, cube := newTestServer(t)
	conn := dial(t, srv)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"move": "R"}))
	ack := readJSON(t, conn)
	assert.Equal(t, "queued", ack["type"])
	assert.Equal(t, []any{"R"}, ack["moves"])

	s.step()
	f := readFrame(t, conn)
	assert.Equal(t, "stepping", f.State)
	assert.Equal(t, "x2:down", f.Active)
	assert.Equal(t, 1, f.Step)

	blank := 0
	for _, c := range f.Cubelets {
		if c.Display == "blank" {
			blank++
		}
	}
	assert.Equal(t, 18, blank)

	for cube.Busy() {
		s.step()
		f = readFrame(t, conn)
	}
	assert.Equal(t, "idle", f.State)
	assert.Equal(t, uint64(1), f.Completed)

	// One idle frame, then silence
	s.step()
	readFrame(t, conn)
	s.step()
	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestMoveSequence(t *testing.T) {
	_, srv, cube := newTestServer(t)
	conn := dial(t, srv)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"moves": "R U Ri"}))
	ack := readJSON(t, conn)
	assert.Equal(t, []any{"R", "U", "Ri"}, ack["moves"])
	assert.Equal(t, []rubikal.Rotation{rubikal.U, rubikal.Ri}, cube.Pending())
}

func TestInvalidMoves(t *testing.T) {
	_, srv, cube := newTestServer(t)
	conn := dial(t, srv)
	readFrame(t, conn)

	for _, payload := range []string{`{"move":"Q"}`, `{"moves":"R X"}`, `{}`, `not json`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
		msg := readJSON(t, conn)
		assert.Equal(t, "error", msg["type"], payload)
		assert.NotEmpty(t, msg["error"], payload)
	}
	assert.False(t, cube.Busy())
}

func TestNetEndpoint(t *testing.T) {
	_, srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/net")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "OOO GGG RRR BBB")
}

func TestClientsTracked(t *testing.T) {
	s, srv, _ := newTestServer(t)
	conn := dial(t, srv)
	readFrame(t, conn)
	assert.Equal(t, 1, s.Clients())

	s.closeAll()
	assert.Equal(t, 0, s.Clients())
}
