package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fashion-recommender-be/internal/constant"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/recommend/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestHubDeliversTurnToEverySessionConnection(t *testing.T) {
	var gotSession, gotText string
	hub := NewHub(nil, func(ctx context.Context, sessionID, text string) []response.OutboundMessage {
		gotSession, gotText = sessionID, text
		return []response.OutboundMessage{response.Text("echo " + text)}
	}, logger.NewNopLogger())
	go hub.Run()

	phone := &Client{Hub: hub, ID: uuid.New(), SessionID: "chat-1", Send: make(chan []byte, 4)}
	laptop := &Client{Hub: hub, ID: uuid.New(), SessionID: "chat-1", Send: make(chan []byte, 4)}
	other := &Client{Hub: hub, ID: uuid.New(), SessionID: "chat-2", Send: make(chan []byte, 4)}
	hub.register <- phone
	hub.register <- laptop
	hub.register <- other
	// Run handles one registration at a time, so this returns only after the
	// previous ones are in the map.
	hub.register <- &Client{Hub: hub, ID: uuid.New(), SessionID: "sync", Send: make(chan []byte, 1)}

	hub.HandleText(context.Background(), phone, "hello")

	assert.Equal(t, "chat-1", gotSession)
	assert.Equal(t, "hello", gotText)
	for _, c := range []*Client{phone, laptop} {
		status := receive(t, c)
		assert.Equal(t, "status", status["type"])
		assert.Equal(t, constant.NoteProcessing, status["text"])

		frame := receive(t, c)
		assert.Equal(t, "turn", frame["type"])
		msgs := frame["messages"].([]interface{})
		require.Len(t, msgs, 1)
		assert.Equal(t, "echo hello", msgs[0].(map[string]interface{})["text"])
	}
	assert.Empty(t, other.Send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil, nil, logger.NewNopLogger())
	go hub.Run()

	c := &Client{Hub: hub, ID: uuid.New(), SessionID: "chat-1", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
