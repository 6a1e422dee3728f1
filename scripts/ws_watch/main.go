// Command ws_watch connects to the presence endpoint and prints every
// activeUsers snapshot it receives. Useful for eyeballing fan-out while
// poking at a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-admin/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_watch: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "watcher", "identity to connect as (prefix with admin_ for a dashboard identity)")
	timeout := flag.Duration("timeout", time.Minute, "total timeout for the run")
	ping := flag.Duration("ping", 15*time.Second, "keepalive ping interval, 0 to disable")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"?userId="+*user, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if *ping > 0 {
		go func() {
			ticker := time.NewTicker(*ping)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypePing}); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch {
		case outbound.Type == proto.OutboundTypePong:
			fmt.Println("pong")
		case outbound.Error != nil:
			fmt.Printf("error: %s %s\n", outbound.Error.Code, outbound.Error.Msg)
		case outbound.Event == proto.EventActiveUsers:
			raw, err := json.Marshal(outbound.Data)
			if err != nil {
				return fmt.Errorf("marshal data: %w", err)
			}
			var ids []string
			if err := json.Unmarshal(raw, &ids); err != nil {
				fmt.Printf("raw data: %s\n", string(raw))
				return fmt.Errorf("unmarshal activeUsers: %w", err)
			}
			online := 0
			for _, id := range ids {
				if !strings.HasPrefix(id, "admin_") {
					online++
				}
			}
			fmt.Printf("activeUsers: %d online (%d total): %s\n", online, len(ids), strings.Join(ids, ", "))
		default:
			fmt.Printf("outbound: type=%s event=%s\n", outbound.Type, outbound.Event)
		}
	}
}
