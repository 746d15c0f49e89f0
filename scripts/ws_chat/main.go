package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"

	"github.com/vovakirdan/linechat-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	login := flag.String("login", "", "login name")
	password := flag.String("password", "", "password")
	flag.Parse()

	if *login == "" || *password == "" {
		return errors.New("-login and -password are required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.AuthRequestLine(*login, *password)); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *login)
	fmt.Println("Type messages and press Enter to send. /nick <name> renames. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, line string) error {
	return conn.Write(ctx, websocket.MessageText, []byte(line))
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				fmt.Println("connection closed by server")
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		in := proto.Decode(string(data))
		switch in.Type {
		case proto.TypeBroadcast:
			if len(in.Args) < 1 {
				continue
			}
			fmt.Printf("%s: %s\n", in.Args[0], strings.Join(in.Args[1:], proto.Delimiter))
		case proto.TypeUserList:
			fmt.Printf("online: %s\n", strings.Join(in.Args, ", "))
		case proto.TypeUserRenamed:
			if len(in.Args) == 2 {
				fmt.Printf("%s is now known as %s\n", in.Args[0], in.Args[1])
			}
		case proto.TypeAuthAccept:
			fmt.Printf("logged in as %s\n", in.Rest())
		case proto.TypeAuthDenied:
			fmt.Println("login denied")
		case proto.TypeReconnect:
			fmt.Println("logged in from another connection")
		case proto.TypeMsgFormatError:
			fmt.Printf("server rejected: %s\n", in.Rest())
		default:
			fmt.Println(in.Raw)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			out := proto.UserBroadcastLine(text)
			if name, ok := strings.CutPrefix(text, "/nick "); ok {
				out = proto.UserChangeNameLine(strings.TrimSpace(name))
			}
			if err := send(ctx, conn, out); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
