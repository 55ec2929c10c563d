package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/formlab/playground/internal/catalog"
	"github.com/formlab/playground/internal/demo"
	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/library"
)

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewNop()
	cat, err := catalog.Load("", logger)
	require.NoError(t, err)

	eng, err := engine.New(library.Default(), engine.DefaultOptions(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	sessions := demo.NewManager(eng, cat, logger)
	handler := NewHandler(sessions, logger)

	router := gin.New()
	router.GET("/stream", handler.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// Consume the welcome message.
	welcome := readMessage(t, conn)
	require.Equal(t, "system", welcome["type"])

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &msg))
	return msg
}

func writeMessage(t *testing.T, conn *websocket.Conn, msg Message) {
	t.Helper()
	raw, err := sonic.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func TestPingPong(t *testing.T) {
	conn := dialTestServer(t)

	writeMessage(t, conn, Message{Type: "ping"})
	resp := readMessage(t, conn)
	require.Equal(t, "pong", resp["type"])
}

func TestUnknownMessageType(t *testing.T) {
	conn := dialTestServer(t)

	writeMessage(t, conn, Message{Type: "teleport"})
	resp := readMessage(t, conn)
	require.Equal(t, "error", resp["type"])
}

func TestMalformedMessage(t *testing.T) {
	conn := dialTestServer(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	resp := readMessage(t, conn)
	require.Equal(t, "error", resp["type"])
	require.Equal(t, "malformed message", resp["message"])
}

func TestOpenRunClose(t *testing.T) {
	conn := dialTestServer(t)

	writeMessage(t, conn, Message{Type: "open", DemoID: "customer-form"})
	resp := readMessage(t, conn)
	require.Equal(t, "session", resp["type"])

	session := resp["session"].(map[string]interface{})
	sessionID := session["id"].(string)
	require.Equal(t, "initial", session["state"])

	writeMessage(t, conn, Message{Type: "run", SessionID: sessionID})
	resp = readMessage(t, conn)
	require.Equal(t, "result", resp["type"])

	session = resp["session"].(map[string]interface{})
	require.Equal(t, "compiled", session["state"])

	writeMessage(t, conn, Message{Type: "close", SessionID: sessionID})
	resp = readMessage(t, conn)
	require.Equal(t, "closed", resp["type"])
	require.Equal(t, true, resp["success"])
}

func TestRunWithEdits(t *testing.T) {
	conn := dialTestServer(t)

	writeMessage(t, conn, Message{Type: "open", DemoID: "customer-form"})
	resp := readMessage(t, conn)
	session := resp["session"].(map[string]interface{})
	sessionID := session["id"].(string)

	writeMessage(t, conn, Message{
		Type:      "run",
		SessionID: sessionID,
		Edits: []demo.UnitEdit{
			{Name: "demo.ts", Content: "class Oops extends Form { configure() { throw new Error(\"boom\"); } }"},
		},
	})
	resp = readMessage(t, conn)
	require.Equal(t, "result", resp["type"])

	session = resp["session"].(map[string]interface{})
	require.Equal(t, "compiled_with_error", session["state"])

	result := session["result"].(map[string]interface{})
	require.Contains(t, result["error"], "boom")
}

func TestOpenUnknownDemo(t *testing.T) {
	conn := dialTestServer(t)

	writeMessage(t, conn, Message{Type: "open", DemoID: "no-such-demo"})
	resp := readMessage(t, conn)
	require.Equal(t, "error", resp["type"])
}
