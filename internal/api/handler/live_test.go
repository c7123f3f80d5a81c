package handler

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
)

type MockFramePusher struct {
	mock.Mock
}

func (m *MockFramePusher) PushFrame(ctx context.Context, id uuid.UUID, data []byte) ([]byte, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// startLiveServer serves the live loop on a loopback port and returns its ws URL
func startLiveServer(t *testing.T, id uuid.UUID, h *LiveHandler) string {
	t.Helper()
	app := newTestApp(id)
	app.Get("/v1/sessions/:id/live", ws.UpgradeMiddleware(), h.Stream())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/v1/sessions/" + id.String() + "/live"
}

func dialLive(t *testing.T, url string) *fastws.Conn {
	t.Helper()
	conn, _, err := fastws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestLiveHandler_Stream(t *testing.T) {
	id := uuid.New()

	t.Run("frame answered with preview", func(t *testing.T) {
		frames := new(MockFramePusher)
		frames.On("PushFrame", mock.Anything, id, []byte("frame")).Return([]byte("preview"), nil)

		conn := dialLive(t, startLiveServer(t, id, NewLiveHandler(frames, 64, time.Second, testLogger())))
		require.NoError(t, conn.WriteMessage(fastws.BinaryMessage, []byte("frame")))

		msgType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, fastws.BinaryMessage, msgType)
		assert.Equal(t, []byte("preview"), data)
		frames.AssertExpectations(t)
	})

	t.Run("oversized frame closes the connection", func(t *testing.T) {
		frames := new(MockFramePusher)

		conn := dialLive(t, startLiveServer(t, id, NewLiveHandler(frames, 64, time.Second, testLogger())))
		require.NoError(t, conn.WriteMessage(fastws.BinaryMessage, bytes.Repeat([]byte{0xff}, 65)))

		_, _, err := conn.ReadMessage()
		require.Error(t, err)
		assert.True(t, fastws.IsCloseError(err, fastws.CloseMessageTooBig), "got %v", err)
		frames.AssertNotCalled(t, "PushFrame", mock.Anything, mock.Anything, mock.Anything)
	})
}
