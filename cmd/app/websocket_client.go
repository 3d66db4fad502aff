// Command app tails the usage event stream of the organization in a token.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
)

func main() {
	addr := flag.String("addr", "ws://localhost:10000/api/v1/usage/stream", "usage stream URL")
	raw := flag.Bool("raw", false, "print events as received")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: go run ./cmd/app [-addr URL] [-raw] <JWT_TOKEN>")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+flag.Arg(0))

	fmt.Printf("Connecting to %s...\n", *addr)
	conn, resp, err := websocket.DefaultDialer.Dial(*addr, header)
	if err != nil {
		if resp != nil {
			log.Fatalf("Failed to connect: %v (HTTP %d)", err, resp.StatusCode)
		}
		log.Fatal("Failed to connect: ", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		tail(conn, *raw)
	}()

	fmt.Println("Connected! Waiting for usage events...")
	select {
	case <-done:
	case <-ctx.Done():
		fmt.Println("\nDisconnecting...")
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			log.Println("Write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// tail prints one row per usage event until the connection closes.
func tail(conn *websocket.Conn, raw bool) {
	out := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if !raw {
		fmt.Fprintln(out, "TIME\tUSER\tOPERATION\tTOKEN TYPE\tTOKENS\tMODEL")
		out.Flush()
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseNormalClosure {
				log.Println("Read error:", err)
			}
			return
		}
		if raw {
			fmt.Println(string(message))
			continue
		}

		var event dto.UsageEventResponse
		if err := json.Unmarshal(message, &event); err != nil {
			log.Println("Skipping malformed event:", err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%s\n",
			event.CreatedAt.Format(time.TimeOnly), event.UserID, event.OperationType,
			event.TokenType, event.TokensUsed, event.Model)
		out.Flush()
	}
}
