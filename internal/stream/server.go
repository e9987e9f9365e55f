// Package stream serves rendered frames over a WebSocket.
//
// Each connection owns one pipeline. Requests land in a one-slot mailbox so a client that sends
// faster than frames are built only ever gets the newest one answered.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"grapher/internal/logging"
	"grapher/surface/pipeline"
	"grapher/surface/sample"
)

const (
	DefaultReadLimit     = 64 << 10
	DefaultPingInterval  = 30 * time.Second
	DefaultWriteTimeout  = 10 * time.Second
	DefaultMaxResolution = 256
)

type Options struct {
	// Base fills request fields the client omits.
	Base     pipeline.State
	Pipeline pipeline.Options
	Logger   *logging.Logger

	ReadLimit    int64
	PingInterval time.Duration
	WriteTimeout time.Duration
	// MaxResolution caps each grid axis a client may ask for.
	MaxResolution int
	// AllowedOrigins lists accepted Origin headers. Empty accepts same-host requests only,
	// "*" accepts any.
	AllowedOrigins []string
}

type Server struct {
	opts     Options
	log      *logging.Logger
	upgrader websocket.Upgrader

	conns      atomic.Int64
	frames     atomic.Uint64
	superseded atomic.Uint64
}

func NewServer(opts Options) *Server {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.MaxResolution <= 0 {
		opts.MaxResolution = DefaultMaxResolution
	}
	s := &Server{opts: opts, log: opts.Logger}
	s.upgrader = websocket.Upgrader{
		EnableCompression: true,
		CheckOrigin:       s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
	return slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin)
}

// Counters reports open connections, frames sent and requests superseded before they ran.
func (s *Server) Counters() (conns int64, frames, superseded uint64) {
	return s.conns.Load(), s.frames.Load(), s.superseded.Load()
}

type inbound struct {
	seq uint64
	req Request
	err error
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", logging.String("remote", r.RemoteAddr), logging.Error(err))
		return
	}
	log := s.log.With(logging.String("remote", r.RemoteAddr))
	s.conns.Add(1)
	defer s.conns.Add(-1)
	log.Info("client connected")

	conn.SetReadLimit(s.opts.ReadLimit)
	wait := 2 * s.opts.PingInterval
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	box := newMailbox[inbound]()
	done := make(chan struct{})

	// reader
	go func() {
		defer close(done)
		var seq uint64
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn("read failed", logging.Error(err))
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(wait))
			seq++
			in := inbound{seq: seq}
			if err := json.Unmarshal(msg, &in.req); err != nil {
				in.err = err
			}
			if box.post(in) {
				s.superseded.Add(1)
			}
		}
	}()

	// writer
	p := pipeline.New(s.opts.Pipeline)
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
		<-done
		log.Info("client disconnected")
	}()
	for {
		select {
		case <-done:
			return
		case in := <-box.recv():
			resp := s.handle(p, in)
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteJSON(resp); err != nil {
				log.Warn("write failed", logging.Error(err))
				return
			}
			if resp.Error == nil {
				s.frames.Add(1)
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handle(p *pipeline.Pipeline, in inbound) Response {
	if in.err != nil {
		return Response{Seq: in.seq, Error: &Error{Kind: KindRequest, Offset: -1, Message: in.err.Error()}}
	}
	st, err := in.req.state(s.opts.Base)
	if err == nil {
		err = s.checkResolution(st.Resolution)
	}
	if err != nil {
		return Response{Seq: in.seq, Error: &Error{Kind: KindConfig, Offset: -1, Message: err.Error()}}
	}
	f, err := p.Frame(st)
	if err != nil {
		s.log.Debug("frame rejected", logging.Uint64("seq", in.seq), logging.Error(err))
		return Response{Seq: in.seq, Gen: p.Last().Stats.Gen, Error: errorOf(err)}
	}
	s.log.Debug("frame",
		logging.Uint64("seq", in.seq),
		logging.String("expr", f.Canonical),
		logging.Int("triangles", f.Stats.Triangles),
		logging.Duration("elapsed", f.Stats.Elapsed),
	)
	return encodeFrame(in.seq, f)
}

func (s *Server) checkResolution(r sample.Resolution) error {
	if r.NX > s.opts.MaxResolution || r.NY > s.opts.MaxResolution {
		return fmt.Errorf("resolution %dx%d exceeds server limit %d", r.NX, r.NY, s.opts.MaxResolution)
	}
	return nil
}
