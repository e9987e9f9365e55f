package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"grapher/surface/pipeline"
	"grapher/surface/sample"
	"grapher/surface/view"
)

var base = pipeline.State{
	Expr:       "sin(x) * cos(y)",
	Domain:     sample.Symmetric(3),
	Resolution: sample.Square(21),
	View:       view.Transform{Rot: view.Angles{X: view.Radians(30), Y: view.Radians(30)}, Zoom: 0.8},
	Fill:       true,
	Wireframe:  true,
}

func dial(t *testing.T, opts Options, header http.Header) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewServer(opts))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req any) Response {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return resp
}

func TestServer_Frame(t *testing.T) {
	conn := dial(t, Options{Base: base}, nil)

	resp := roundTrip(t, conn, Request{})
	if resp.Error != nil {
		t.Fatalf("error = %v", resp.Error)
	}
	if resp.Seq != 1 || resp.Canonical != "(sin(x) * cos(y))" {
		t.Fatalf("seq = %d, canonical = %q", resp.Seq, resp.Canonical)
	}
	if len(resp.Triangles) != 800 || resp.Stats == nil || resp.Stats.Triangles != 800 || resp.Stats.Cells != 441 {
		t.Fatalf("triangles = %d, stats = %+v", len(resp.Triangles), resp.Stats)
	}
	if len(resp.Lines) == 0 || !strings.HasPrefix(resp.Triangles[0].Color, "#") {
		t.Fatalf("lines = %d, colour = %q", len(resp.Lines), resp.Triangles[0].Color)
	}

	off := false
	resp = roundTrip(t, conn, Request{Rotation: &Rotation{X: 10}, Wireframe: &off})
	if resp.Error != nil || len(resp.Lines) != 0 || resp.Stats.Resampled {
		t.Fatalf("rotate-only response: err = %v, lines = %d, stats = %+v", resp.Error, len(resp.Lines), resp.Stats)
	}

	resp = roundTrip(t, conn, Request{Expr: "x + y", Resolution: &Resolution{X: 3, Y: 3}, Fill: &off, Points: true})
	if resp.Error != nil || len(resp.Points) != 9 || len(resp.Triangles) != 0 || !resp.Stats.Resampled {
		t.Fatalf("points response: err = %v, points = %d, stats = %+v", resp.Error, len(resp.Points), resp.Stats)
	}
}

func TestServer_Errors(t *testing.T) {
	conn := dial(t, Options{Base: base, MaxResolution: 50}, nil)

	resp := roundTrip(t, conn, Request{Expr: "sin(x) + foo(y)"})
	if resp.Error == nil || resp.Error.Kind != "UnknownFunction" || resp.Error.Offset != 9 {
		t.Fatalf("parse error = %+v", resp.Error)
	}
	if len(resp.Triangles) != 0 {
		t.Fatalf("error response carried geometry")
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	var bad Response
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if bad.Error == nil || bad.Error.Kind != KindRequest {
		t.Fatalf("bad json error = %+v", bad.Error)
	}

	tests := []Request{
		{Resolution: &Resolution{X: 51, Y: 10}},
		{Resolution: &Resolution{X: 1, Y: 10}},
		{Zoom: -1},
		{Projection: "fisheye"},
		{Domain: &Domain{XMin: 1, XMax: 0, YMin: 0, YMax: 1}},
	}
	for _, req := range tests {
		resp := roundTrip(t, conn, req)
		if resp.Error == nil || resp.Error.Kind != KindConfig || resp.Error.Offset != -1 {
			t.Fatalf("request %+v: error = %+v, want Config", req, resp.Error)
		}
	}

	// The connection still serves frames after errors.
	if resp := roundTrip(t, conn, Request{}); resp.Error != nil || len(resp.Triangles) == 0 {
		t.Fatalf("recovery frame: %+v", resp.Error)
	}
}

func TestServer_Origin(t *testing.T) {
	srv := httptest.NewServer(NewServer(Options{Base: base, AllowedOrigins: []string{"http://ok.example"}}))
	defer srv.Close()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatalf("foreign origin accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign origin response = %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://ok.example"}})
	if err != nil {
		t.Fatalf("allowed origin: %v", err)
	}
	conn.Close()
}

func TestMailbox_KeepsLatest(t *testing.T) {
	m := newMailbox[int]()
	if m.post(1) {
		t.Fatalf("first post reported a drop")
	}
	if !m.post(2) {
		t.Fatalf("second post did not supersede")
	}
	if !m.post(3) {
		t.Fatalf("third post did not supersede")
	}
	if got := <-m.recv(); got != 3 {
		t.Fatalf("recv = %d, want 3", got)
	}
	select {
	case v := <-m.recv():
		t.Fatalf("mailbox still held %d", v)
	default:
	}
}
