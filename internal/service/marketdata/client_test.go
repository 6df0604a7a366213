package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"EquityLens/pkg/logger"
)

func wsServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))
}

func TestSubscribeSendsConfiguredSymbols(t *testing.T) {
	got := make(chan string, 2)
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for i := 0; i < 2; i++ {
			var msg map[string]string
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			got <- msg["type"] + ":" + msg["symbol"]
		}
	})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New("key", url, []string{"AAPL", "MSFT"}, time.Millisecond, time.Second, logger.Nop())
	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for _, want := range []string{"subscribe:AAPL", "subscribe:MSFT"} {
		select {
		case g := <-got:
			if g != want {
				t.Fatalf("expected %s, got %s", want, g)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestReadDeliversBarFrames(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		frame := `{"type":"bar","data":[{"s":"AAPL","t":1700000000000,"o":1,"h":2,"l":0.5,"c":1.5,"v":300}]}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := New("key", url, nil, time.Millisecond, time.Second, logger.Nop())
	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	bars, _ := c.Read(ctx)
	select {
	case bar := <-bars:
		if bar.Symbol != "AAPL" || bar.Timestamp != 1700000000 || bar.Close != 1.5 {
			t.Fatalf("unexpected bar: %+v", bar)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for bar")
	}
}

func TestReadGoroutinesStopOnConnectionLoss(t *testing.T) {
	// every Read spawns a ping loop; it must end with the read loop, not
	// linger until ctx cancellation, or each reconnect cycle leaks one
	srv := wsServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx := context.Background()

	baseline := runtime.NumGoroutine()
	for i := 0; i < 5; i++ {
		c := New("key", url, nil, time.Millisecond, time.Millisecond, logger.Nop())
		if err := c.Connect(ctx); err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
		bars, errs := c.Read(ctx)
		for range bars {
		}
		<-errs
		_ = c.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("goroutines did not settle after reconnect cycles: baseline %d, now %d",
		baseline, runtime.NumGoroutine())
}
