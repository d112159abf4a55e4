// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingTransport struct {
	sent   []any
	err    error
	closed bool
}

func (r *recordingTransport) Send(data any) error {
	r.sent = append(r.sent, data)
	return r.err
}

func (r *recordingTransport) Close() error {
	r.closed = true
	return r.err
}

func TestMultiFansOut(t *testing.T) {
	a := &recordingTransport{}
	b := &recordingTransport{err: errors.New("b is down")}
	m := Multi{a, b}

	err := m.Send("hello")
	if err == nil || !strings.Contains(err.Error(), "b is down") {
		t.Errorf("Send error = %v, want b's error", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("sent a=%v b=%v, want one each", a.sent, b.sent)
	}
	_ = m.Close()
	if !a.closed || !b.closed {
		t.Error("Close did not reach every transport")
	}
}

func TestLoggingTransportNeverFails(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(NewEvent(EventProgress, map[string]int{"progress": 10})); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := lt.Send(make(chan int)); err != nil {
		t.Errorf("Send(unmarshalable): %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport()
	defer wst.Close()
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return wst.ClientCount() == 1 })

	if err := wst.Send(NewEvent(EventProgress, map[string]any{"stage": "fusion", "progress": 80})); err != nil {
		t.Fatalf("Send: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Type != EventProgress || got.Data["stage"] != "fusion" || got.Data["progress"] != float64(80) {
		t.Errorf("received %+v", got)
	}
}

func TestWebSocketDropsDisconnectedClients(t *testing.T) {
	wst := NewWebSocketTransport()
	defer wst.Close()
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitFor(t, func() bool { return wst.ClientCount() == 1 })
	conn.Close()
	waitFor(t, func() bool { return wst.ClientCount() == 0 })
}

func TestWebSocketCloseFlushesQueue(t *testing.T) {
	wst := NewWebSocketTransport()
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return wst.ClientCount() == 1 })

	const n = 20
	for i := range n - 1 {
		if err := wst.Send(NewEvent(EventProgress, i)); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if err := wst.Send(NewEvent(EventResult, "final")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var last Event
	for i := range n {
		if err := conn.ReadJSON(&last); err != nil {
			t.Fatalf("message %d lost at Close: %v", i, err)
		}
	}
	if last.Type != EventResult || last.Data != "final" {
		t.Errorf("last message = %+v, want the final result", last)
	}
}

func TestWebSocketSendAfterClose(t *testing.T) {
	wst := NewWebSocketTransport()
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := wst.Send("late"); err == nil {
		t.Error("Send after Close succeeded")
	}
}

func TestWebSocketListen(t *testing.T) {
	wst := NewWebSocketTransport()
	defer wst.Close()

	addr, err := wst.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
}
