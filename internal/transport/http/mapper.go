package http

import (
	"encoding/json"
	"time"

	"github.com/saomyaraj/ConvoSphere/internal/hub"
	"github.com/saomyaraj/ConvoSphere/internal/proto"
)

// inboundToCommand maps a decoded wire event to a hub command. A payload
// that is malformed in any way — undecodable, wrong types, or missing a
// required field — yields a protocol error reported to the sender only;
// the connection stays alive.
func inboundToCommand(client *hub.Client, inbound proto.Inbound) (*hub.Command, *proto.ErrorMessage) {
	switch inbound.Type {
	case proto.InboundJoinRoom, proto.InboundLeaveRoom:
		var data proto.JoinRoomData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, invalidPayload()
		}
		if data.RoomID == "" {
			return nil, &proto.ErrorMessage{Text: "Room is required."}
		}
		kind := hub.CommandJoinRoom
		if inbound.Type == proto.InboundLeaveRoom {
			kind = hub.CommandLeaveRoom
		}
		return &hub.Command{Client: client, Kind: kind, Room: data.RoomID}, nil

	case proto.InboundRoomMessage:
		var data proto.RoomMessageData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, invalidPayload()
		}
		if data.RoomID == "" {
			return nil, &proto.ErrorMessage{Text: "Room is required."}
		}
		return &hub.Command{
			Client:        client,
			Kind:          hub.CommandRoomMessage,
			Room:          data.RoomID,
			Text:          data.Text,
			HasFormatting: data.HasFormatting,
			Image:         data.Image,
		}, nil

	case proto.InboundPrivateMessage:
		var data proto.PrivateMessageData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, invalidPayload()
		}
		if data.ToUserID == 0 {
			return nil, &proto.ErrorMessage{Text: "Recipient is required."}
		}
		return &hub.Command{
			Client:        client,
			Kind:          hub.CommandPrivateMessage,
			ToUserID:      data.ToUserID,
			Text:          data.Text,
			HasFormatting: data.HasFormatting,
			Image:         data.Image,
		}, nil

	case proto.InboundChatMessage:
		var data proto.ChatMessageData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, invalidPayload()
		}
		return &hub.Command{Client: client, Kind: hub.CommandGlobalMessage, Text: data.Text}, nil

	case proto.InboundTypingStart:
		return &hub.Command{Client: client, Kind: hub.CommandTypingStart}, nil

	case proto.InboundTypingStop:
		return &hub.Command{Client: client, Kind: hub.CommandTypingStop}, nil

	case proto.InboundRequestUserList:
		return &hub.Command{Client: client, Kind: hub.CommandRequestUserList}, nil

	default:
		return nil, &proto.ErrorMessage{Text: "Unknown event type."}
	}
}

func invalidPayload() *proto.ErrorMessage {
	return &proto.ErrorMessage{Text: "Invalid message format."}
}

// unmarshalData decodes an event payload. A missing payload decodes as an
// empty object so that required-field checks report the real problem.
func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func outboundFromEvent(event *hub.Event) proto.Outbound {
	switch event.Kind {
	case hub.EventServerMessage:
		return proto.Outbound{
			Type: proto.OutboundServerMessage,
			Data: proto.ServerMessage{Text: event.Text},
		}
	case hub.EventErrorMessage:
		return proto.Outbound{
			Type: proto.OutboundErrorMessage,
			Data: proto.ErrorMessage{Text: event.Text},
		}
	case hub.EventUserList:
		users := make([]proto.UserEntry, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.UserEntry{UserID: u.UserID, Username: u.Username})
		}
		return proto.Outbound{Type: proto.OutboundUpdateUserList, Data: users}
	case hub.EventJoinedRoom:
		return proto.Outbound{Type: proto.OutboundJoinedRoom, Data: proto.RoomAck{RoomID: event.Room}}
	case hub.EventLeftRoom:
		return proto.Outbound{Type: proto.OutboundLeftRoom, Data: proto.RoomAck{RoomID: event.Room}}
	case hub.EventUserTyping:
		return proto.Outbound{Type: proto.OutboundUserTyping, Data: proto.TypingNotice{Username: event.Username}}
	case hub.EventUserStoppedTyping:
		return proto.Outbound{Type: proto.OutboundUserStoppedTyping, Data: proto.TypingNotice{Username: event.Username}}
	case hub.EventChatMessage:
		return outboundFromMessage(event.Message)
	default:
		return proto.Outbound{Type: proto.OutboundErrorMessage, Data: proto.ErrorMessage{Text: "Unknown event."}}
	}
}

func outboundFromMessage(msg *hub.Message) proto.Outbound {
	ts := msg.Timestamp.UTC().Format(time.RFC3339Nano)

	switch msg.Channel {
	case hub.ChannelRoom:
		return proto.Outbound{
			Type: proto.OutboundNewRoomMessage,
			Data: proto.NewRoomMessage{
				ID:            msg.ID,
				Username:      msg.Username,
				Text:          msg.Text,
				Timestamp:     ts,
				RoomID:        msg.RoomID,
				HasFormatting: msg.HasFormatting,
				Image:         msg.Image,
				Type:          string(hub.ChannelRoom),
			},
		}
	case hub.ChannelPrivate:
		return proto.Outbound{
			Type: proto.OutboundNewPrivateMessage,
			Data: proto.NewPrivateMessage{
				ID:            msg.ID,
				From:          msg.Username,
				ToUserID:      msg.ToUserID,
				Text:          msg.Text,
				Timestamp:     ts,
				HasFormatting: msg.HasFormatting,
				Image:         msg.Image,
				Type:          string(hub.ChannelPrivate),
			},
		}
	default:
		return proto.Outbound{
			Type: proto.OutboundNewMessage,
			Data: proto.NewMessage{
				ID:        msg.ID,
				Username:  msg.Username,
				Text:      msg.Text,
				Timestamp: ts,
				Type:      string(hub.ChannelGlobal),
			},
		}
	}
}
