package hub

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startTestHub(t *testing.T, authorize JoinAuthorizer) *Hub {
	t.Helper()

	logger := zerolog.New(nil)
	h := New(&logger, authorize)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go h.Run(ctx)

	return h
}

func connect(t *testing.T, h *Hub, connID string, userID int64, username string) *Client {
	t.Helper()

	c := NewClient(connID, Identity{UserID: userID, Username: username})
	h.RegisterClient(c)
	mustEvent(t, c.Events, EventServerMessage) // welcome
	return c
}

func TestHubConnectAnnouncesAndLists(t *testing.T) {
	h := startTestHub(t, nil)

	alice := NewClient("a1", Identity{UserID: 1, Username: "alice"})
	h.RegisterClient(alice)

	list := mustEvent(t, alice.Events, EventUserList)
	if len(list.Users) != 1 || list.Users[0].Username != "alice" {
		t.Fatalf("unexpected user list: %+v", list.Users)
	}
	welcome := mustEvent(t, alice.Events, EventServerMessage)
	if welcome.Text != "Welcome to the chat, alice!" {
		t.Fatalf("unexpected welcome: %q", welcome.Text)
	}

	bob := NewClient("b1", Identity{UserID: 2, Username: "bob"})
	h.RegisterClient(bob)

	// Both connections get the updated list; alice also gets the join
	// announcement.
	list = mustEvent(t, alice.Events, EventUserList)
	if len(list.Users) != 2 {
		t.Fatalf("expected 2 users, got %+v", list.Users)
	}
	joined := mustEvent(t, alice.Events, EventServerMessage)
	if joined.Text != "bob has joined the chat." {
		t.Fatalf("unexpected announcement: %q", joined.Text)
	}
	list = mustEvent(t, bob.Events, EventUserList)
	if len(list.Users) != 2 || list.Users[0].Username != "alice" || list.Users[1].Username != "bob" {
		t.Fatalf("unexpected list for bob: %+v", list.Users)
	}
}

func TestHubRequestUserList(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	drain(alice.Events)

	h.Submit(&Command{Client: alice, Kind: CommandRequestUserList})

	list := mustEvent(t, alice.Events, EventUserList)
	if len(list.Users) != 1 || list.Users[0].UserID != 1 || list.Users[0].Username != "alice" {
		t.Fatalf("unexpected list: %+v", list.Users)
	}
}

func TestHubRoomMessageOnlyToMembers(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "lobby"})
	ack := mustEvent(t, alice.Events, EventJoinedRoom)
	if ack.Room != "lobby" {
		t.Fatalf("unexpected join ack: %+v", ack)
	}

	h.Submit(&Command{Client: alice, Kind: CommandRoomMessage, Room: "lobby", Text: "hello"})

	msg := mustEvent(t, alice.Events, EventChatMessage)
	if msg.Message.Text != "hello" || msg.Message.RoomID != "lobby" || msg.Message.Channel != ChannelRoom {
		t.Fatalf("unexpected message: %+v", msg.Message)
	}
	expectNoEvent(t, bob.Events, EventChatMessage)
}

func TestHubPrivateMessageEchoSharesID(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bobPhone := connect(t, h, "b1", 2, "bob")
	bobLaptop := connect(t, h, "b2", 2, "bob")
	carol := connect(t, h, "c1", 3, "carol")
	drain(alice.Events)
	drain(bobPhone.Events)
	drain(bobLaptop.Events)
	drain(carol.Events)

	h.Submit(&Command{Client: alice, Kind: CommandPrivateMessage, ToUserID: 2, Text: "psst"})

	echo := mustEvent(t, alice.Events, EventChatMessage)
	phoneCopy := mustEvent(t, bobPhone.Events, EventChatMessage)
	laptopCopy := mustEvent(t, bobLaptop.Events, EventChatMessage)

	if echo.Message.ID == "" || echo.Message.ID != phoneCopy.Message.ID || echo.Message.ID != laptopCopy.Message.ID {
		t.Fatalf("all copies must share one id: %q %q %q",
			echo.Message.ID, phoneCopy.Message.ID, laptopCopy.Message.ID)
	}
	expectNoEvent(t, carol.Events, EventChatMessage)
}

func TestHubEmptyGlobalMessageErrorsSenderOnly(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.Submit(&Command{Client: alice, Kind: CommandGlobalMessage, Text: "   "})

	errEv := mustEvent(t, alice.Events, EventErrorMessage)
	if errEv.Err == nil || errEv.Err.Code != ErrCodeInvalidMessage {
		t.Fatalf("unexpected error event: %+v", errEv)
	}
	expectNoEvent(t, bob.Events, EventChatMessage)
	expectNoEvent(t, bob.Events, EventErrorMessage)
}

func TestHubDisconnectCleansUpAndStopsTyping(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "lobby"})
	mustEvent(t, alice.Events, EventJoinedRoom)
	h.Submit(&Command{Client: alice, Kind: CommandTypingStart})
	mustEvent(t, bob.Events, EventUserTyping)

	// alice vanishes mid-keystroke, no typing_stop was ever sent.
	h.UnregisterClient(alice)

	stopped := mustEvent(t, bob.Events, EventUserStoppedTyping)
	if stopped.Username != "alice" {
		t.Fatalf("expected stop for alice, got %+v", stopped)
	}
	left := mustEvent(t, bob.Events, EventServerMessage)
	if left.Text != "alice has left the chat." {
		t.Fatalf("unexpected leave announcement: %q", left.Text)
	}
	list := mustEvent(t, bob.Events, EventUserList)
	if len(list.Users) != 1 || list.Users[0].Username != "bob" {
		t.Fatalf("alice still present in list: %+v", list.Users)
	}

	// Unregistering twice is safe.
	h.UnregisterClient(alice)

	// Messages to the shared room no longer reach alice's table entry.
	h.Submit(&Command{Client: bob, Kind: CommandJoinRoom, Room: "lobby"})
	mustEvent(t, bob.Events, EventJoinedRoom)
	h.Submit(&Command{Client: bob, Kind: CommandRoomMessage, Room: "lobby", Text: "anyone?"})
	msg := mustEvent(t, bob.Events, EventChatMessage)
	if msg.Message.Text != "anyone?" {
		t.Fatalf("unexpected message: %+v", msg.Message)
	}
	expectNoEvent(t, alice.Events, EventChatMessage)
}

func TestHubCommandAfterDisconnectIsDropped(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.UnregisterClient(alice)
	mustEvent(t, bob.Events, EventUserList)

	h.Submit(&Command{Client: alice, Kind: CommandGlobalMessage, Text: "ghost message"})

	expectNoEvent(t, bob.Events, EventChatMessage)
	expectNoEvent(t, alice.Events, EventChatMessage)
}

func TestHubJoinAuthorizerRejects(t *testing.T) {
	h := startTestHub(t, func(userID int64, roomID string) bool {
		return roomID != "restricted"
	})

	alice := connect(t, h, "a1", 1, "alice")
	drain(alice.Events)

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "restricted"})
	errEv := mustEvent(t, alice.Events, EventErrorMessage)
	if errEv.Err == nil || errEv.Err.Code != ErrCodeForbidden {
		t.Fatalf("expected forbidden error, got %+v", errEv)
	}

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "open"})
	mustEvent(t, alice.Events, EventJoinedRoom)
}

func TestHubPanickingHandlerIsolatedToConnection(t *testing.T) {
	h := startTestHub(t, func(userID int64, roomID string) bool {
		if roomID == "boom" {
			panic("authorizer exploded")
		}
		return true
	})

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "boom"})

	errEv := mustEvent(t, alice.Events, EventErrorMessage)
	if errEv.Err == nil || errEv.Err.Code != ErrCodeInternal {
		t.Fatalf("expected internal error to the sender, got %+v", errEv)
	}
	expectNoEvent(t, bob.Events, EventErrorMessage)

	// The hub keeps processing; both connections still work.
	h.Submit(&Command{Client: bob, Kind: CommandGlobalMessage, Text: "still alive"})
	msg := mustEvent(t, alice.Events, EventChatMessage)
	if msg.Message.Text != "still alive" {
		t.Fatalf("unexpected message after panic: %+v", msg.Message)
	}
	mustEvent(t, bob.Events, EventChatMessage)

	h.Submit(&Command{Client: alice, Kind: CommandJoinRoom, Room: "safe"})
	mustEvent(t, alice.Events, EventJoinedRoom)
}

func TestHubDuplicateConnIDRejectedWithError(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "c1", 1, "alice")
	drain(alice.Events)

	imposter := NewClient("c1", Identity{UserID: 2, Username: "mallory"})
	h.RegisterClient(imposter)

	errEv := mustEvent(t, imposter.Events, EventErrorMessage)
	if errEv.Err == nil || errEv.Err.Code != ErrCodeInternal {
		t.Fatalf("expected registration error, got %+v", errEv)
	}

	// The original connection is untouched.
	h.Submit(&Command{Client: alice, Kind: CommandRequestUserList})
	list := mustEvent(t, alice.Events, EventUserList)
	if len(list.Users) != 1 || list.Users[0].Username != "alice" {
		t.Fatalf("presence corrupted by duplicate register: %+v", list.Users)
	}
}

func TestHubTypingStopSkipsOrigin(t *testing.T) {
	h := startTestHub(t, nil)

	alice := connect(t, h, "a1", 1, "alice")
	bob := connect(t, h, "b1", 2, "bob")
	drain(alice.Events)
	drain(bob.Events)

	h.Submit(&Command{Client: alice, Kind: CommandTypingStart})
	mustEvent(t, bob.Events, EventUserTyping)
	expectNoEvent(t, alice.Events, EventUserTyping)

	h.Submit(&Command{Client: alice, Kind: CommandTypingStop})
	mustEvent(t, bob.Events, EventUserStoppedTyping)
	expectNoEvent(t, alice.Events, EventUserStoppedTyping)
}
