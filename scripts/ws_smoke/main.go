package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/saomyaraj/ConvoSphere/internal/proto"
)

// Smoke client: registers (or logs in) a user over REST, connects to the
// WebSocket endpoint, joins a room and sends one message.
func main() {
	apiAddr := flag.String("api", "http://localhost:8080", "REST API base URL")
	wsAddr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "username")
	password := flag.String("password", "password123", "password")
	room := flag.String("room", "general", "room id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	token, err := obtainToken(ctx, *apiAddr, *user, *password)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	conn, _, err := websocket.Dial(ctx, *wsAddr+"?token="+token, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(eventType string, data any) {
		var raw json.RawMessage
		if data != nil {
			raw, _ = json.Marshal(data)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: eventType, Data: raw}); err != nil {
			log.Fatalf("send %s: %v", eventType, err)
		}
	}

	mustSend(proto.InboundJoinRoom, proto.JoinRoomData{RoomID: *room})
	mustSend(proto.InboundRoomMessage, proto.RoomMessageData{RoomID: *room, Text: *text})

	deadline := time.Now().Add(*timeout)
	for time.Now().Before(deadline) {
		var outbound struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			log.Fatalf("read: %v", err)
		}

		fmt.Printf("Received outbound: type=%s data=%s\n", outbound.Type, string(outbound.Data))
		if outbound.Type == proto.OutboundNewRoomMessage {
			return
		}
	}
	log.Fatal("room message echo not received")
}

// obtainToken registers the user, falling back to login when the account
// already exists.
func obtainToken(ctx context.Context, apiAddr, user, password string) (string, error) {
	token, err := authRequest(ctx, apiAddr+"/api/auth/register", user, password)
	if err == nil {
		return token, nil
	}
	return authRequest(ctx, apiAddr+"/api/auth/login", user, password)
}

func authRequest(ctx context.Context, url, user, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": user, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%s: empty token", url)
	}
	return out.Token, nil
}
