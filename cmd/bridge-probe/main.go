// bridge-probe is a diagnostic tool that attaches to a running bridge, prints
// the occupied sessions and then streams table events as they arrive.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

type event struct {
	Type    string         `json:"type"`
	Session int            `json:"session"`
	Data    map[string]any `json:"data"`
	Time    time.Time      `json:"time"`
}

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data event  `json:"data"`
}

func main() {
	addr := flag.String("addr", "http://localhost:3000", "bridge base URL")
	poll := flag.Duration("poll", 5*time.Second, "session summary interval (0 to disable)")
	flag.Parse()

	base, err := url.Parse(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-probe] invalid address: %v\n", err)
		os.Exit(1)
	}
	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Printf("[bridge-probe] Bridge: %s\n", base)
	if err := printSessions(client, base); err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-probe] WARNING: %v\n", err)
	}

	wsURL := *base
	wsURL.Scheme = "ws"
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[bridge-probe] websocket: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("[bridge-probe] Waiting for events... (Ctrl+C to stop)")
	fmt.Println("---")

	events := make(chan envelope, 64)
	go readEvents(conn, events)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var tick <-chan time.Time
	if *poll > 0 {
		ticker := time.NewTicker(*poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	counts := make(map[string]int)
	for {
		select {
		case <-sigCh:
			fmt.Printf("\n[bridge-probe] Totals: %v\n", counts)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg, ok := <-events:
			if !ok {
				fmt.Println("[bridge-probe] connection closed")
				return
			}
			counts[msg.Type]++
			fmt.Printf("%-20s #%-5d session=%-3d %s %v\n",
				msg.Type, counts[msg.Type], msg.Data.Session, msg.Data.Time.Format("15:04:05.000"), msg.Data.Data)
		case <-tick:
			if err := printSessions(client, base); err != nil {
				fmt.Fprintf(os.Stderr, "[bridge-probe] WARNING: %v\n", err)
			}
		}
	}
}

func readEvents(conn *websocket.Conn, out chan<- envelope) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg envelope
		if err := sonic.Unmarshal(data, &msg); err != nil {
			fmt.Fprintf(os.Stderr, "[bridge-probe] bad message: %v\n", err)
			continue
		}
		out <- msg
	}
}

func printSessions(client *http.Client, base *url.URL) error {
	var sessions []model.Session
	if err := getJSON(client, base.JoinPath("GetAllSessions").String(), &sessions); err != nil {
		return err
	}
	occupied := 0
	for _, s := range sessions {
		if s.Free() {
			continue
		}
		occupied++
		fmt.Printf("SESSION #%d  acct=%d  handle=%d  %s [%s %s %s]  magic=%q  status=%q\n",
			s.Index, s.AccountNumber, s.Handle, s.Symbol, s.Symbol1, s.Symbol2, s.Symbol3, s.Magic, s.OrderStatus)
	}
	fmt.Printf("[bridge-probe] %d of %d slots occupied\n", occupied, len(sessions))
	return nil
}

func getJSON(client *http.Client, u string, out any) error {
	resp, err := client.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return sonic.Unmarshal(data, out)
}
