package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/saomyaraj/ConvoSphere/internal/hub"
	"github.com/saomyaraj/ConvoSphere/internal/proto"
)

func testClient() *hub.Client {
	return hub.NewClient("c1", hub.Identity{UserID: 1, Username: "alice"})
}

func TestInboundToCommandUnknownType(t *testing.T) {
	cmd, protoErr := inboundToCommand(testClient(), proto.Inbound{Type: "dance"})
	if cmd != nil {
		t.Fatalf("no command expected, got %+v", cmd)
	}
	if protoErr == nil || protoErr.Text != "Unknown event type." {
		t.Fatalf("unexpected protocol error: %+v", protoErr)
	}
}

func TestInboundToCommandRequiresRoom(t *testing.T) {
	payload, _ := json.Marshal(proto.JoinRoomData{})
	cmd, protoErr := inboundToCommand(testClient(), proto.Inbound{
		Type: proto.InboundJoinRoom,
		Data: payload,
	})
	if cmd != nil {
		t.Fatalf("no command expected, got %+v", cmd)
	}
	if protoErr == nil || protoErr.Text != "Room is required." {
		t.Fatalf("unexpected protocol error: %+v", protoErr)
	}
}

func TestInboundToCommandRequiresRecipient(t *testing.T) {
	payload, _ := json.Marshal(proto.PrivateMessageData{Text: "psst"})
	cmd, protoErr := inboundToCommand(testClient(), proto.Inbound{
		Type: proto.InboundPrivateMessage,
		Data: payload,
	})
	if cmd != nil {
		t.Fatalf("no command expected, got %+v", cmd)
	}
	if protoErr == nil || protoErr.Text != "Recipient is required." {
		t.Fatalf("unexpected protocol error: %+v", protoErr)
	}
}

func TestInboundToCommandEmptyPayloadDecodes(t *testing.T) {
	cmd, protoErr := inboundToCommand(testClient(), proto.Inbound{Type: proto.InboundTypingStart})
	if protoErr != nil {
		t.Fatalf("unexpected failure: %+v", protoErr)
	}
	if cmd == nil || cmd.Kind != hub.CommandTypingStart {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestInboundToCommandWrongTypedPayloadIsProtocolError(t *testing.T) {
	cases := []struct {
		eventType string
		data      string
	}{
		{proto.InboundChatMessage, `{"text":5}`},
		{proto.InboundRoomMessage, `{"roomId":42,"text":"hi"}`},
		{proto.InboundPrivateMessage, `{"toUserId":"2","text":"hi"}`},
		{proto.InboundJoinRoom, `[]`},
	}
	for _, tc := range cases {
		cmd, protoErr := inboundToCommand(testClient(), proto.Inbound{
			Type: tc.eventType,
			Data: json.RawMessage(tc.data),
		})
		if cmd != nil {
			t.Fatalf("%s: no command expected, got %+v", tc.eventType, cmd)
		}
		if protoErr == nil || protoErr.Text != "Invalid message format." {
			t.Fatalf("%s: expected invalid-format protocol error, got %+v", tc.eventType, protoErr)
		}
	}
}

func TestOutboundFromMessageSelectsWireType(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		msg  hub.Message
		want string
	}{
		{hub.Message{ID: "a", Channel: hub.ChannelGlobal, Username: "alice", Text: "hi", Timestamp: ts}, proto.OutboundNewMessage},
		{hub.Message{ID: "b", Channel: hub.ChannelRoom, RoomID: "lobby", Username: "alice", Text: "hi", Timestamp: ts}, proto.OutboundNewRoomMessage},
		{hub.Message{ID: "c", Channel: hub.ChannelPrivate, ToUserID: 2, Username: "alice", Text: "hi", Timestamp: ts}, proto.OutboundNewPrivateMessage},
	}
	for _, tc := range cases {
		out := outboundFromMessage(&tc.msg)
		if out.Type != tc.want {
			t.Fatalf("channel %s: expected wire type %s, got %s", tc.msg.Channel, tc.want, out.Type)
		}
	}
}
