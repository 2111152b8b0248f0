// Package web streams the emulator's frames to browsers over a
// websocket, and feeds their button presses back to the joypad.
package web

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbcemu/internal/joypad"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/display"
	"github.com/thelolagemann/gbcemu/pkg/emulator"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

// Hub fans frames out to every connected client. All clients share
// a single joypad.
type Hub struct {
	frames <-chan display.Frame
	pad    *joypad.Pad
	emu    emulator.Controller
	log    log.Logger

	mu        sync.Mutex
	settings  Settings
	currentID uint8

	clients              map[*Client]bool
	register, unregister chan *Client
	broadcast            chan []byte
	done                 chan struct{}
}

// NewHub returns a new Hub streaming frames, pressing buttons on pad.
// emu may be nil, in which case pause and reset requests are ignored.
func NewHub(frames <-chan display.Frame, pad *joypad.Pad, emu emulator.Controller, l log.Logger) *Hub {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Hub{
		frames:     frames,
		pad:        pad,
		emu:        emu,
		log:        l,
		settings:   DefaultSettings,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP upgrades the request to a websocket, and registers the
// new client with the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// upgrade the connection to a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("web: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := h.newClient(conn, r)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	// spawn read/write pumps
	go c.ReadPump()
	go c.WritePump()
}

// Run streams frames until ctx is cancelled or the frame channel is
// closed.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		for c := range h.clients {
			close(c.Send)
			delete(h.clients, c)
		}
		close(h.done)
	}()

	enc := newEncoder()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-h.register:
			h.clients[c] = true
			h.log.Infof("web: client %d connected from %s", c.ID, c.RemoteAddr)
			c.Send <- []byte{ClientInfo, h.info()}
			// make sure the new client receives a full frame
			enc.reset()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
				h.log.Infof("web: client %d disconnected", c.ID)
			}
		case f, ok := <-h.frames:
			if !ok {
				return nil
			}
			if len(h.clients) == 0 {
				continue
			}
			for _, msg := range enc.encode(&f, h.Settings()) {
				h.send(msg)
			}
		case msg := <-h.broadcast:
			h.send(msg)
		case <-ticker.C:
			h.send(h.serverInfo())
		}
	}
}

// send sends msg to every client, dropping those that can't keep up.
func (h *Hub) send(msg []byte) {
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			h.log.Warnf("web: dropping slow client %d", c.ID)
			close(c.Send)
			delete(h.clients, c)
		}
	}
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Settings returns the current encoder settings.
func (h *Hub) Settings() Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

// ListenAndServe serves the hub on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	h.log.Infof("web: listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// info returns a byte of information containing the various
// hub settings. The byte is constructed as follows:
//
//	Bit 0: Emulator running
//	Bit 1: Emulator paused
//	Bit 2: Compression enabled
//	Bit 3: Frame patching enabled
//	Bit 4: Frame skipping enabled
func (h *Hub) info() byte {
	info := uint8(0)
	if h.emu != nil {
		if h.emu.Status().IsRunning() {
			info |= types.Bit0
		}
		if h.emu.Paused() {
			info |= types.Bit1
		}
	}

	s := h.Settings()
	if s.Compression {
		info |= types.Bit2
	}
	if s.FramePatching {
		info |= types.Bit3
	}
	if s.FrameSkipping {
		info |= types.Bit4
	}

	return info
}

// serverInfo returns the id and latency (in ms) of every client.
func (h *Hub) serverInfo() []byte {
	data := []byte{ServerInfo}
	for c := range h.clients {
		data = append(data, c.ID, 0, 0)
		binary.LittleEndian.PutUint16(data[len(data)-2:], c.Latency())
	}
	return data
}

// newClient creates a new client for the connection.
func (h *Hub) newClient(conn *websocket.Conn, r *http.Request) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentID++
	return &Client{
		hub:         h,
		conn:        conn,
		Send:        make(chan []byte, 256),
		ID:          h.currentID,
		RemoteAddr:  r.RemoteAddr,
		UserAgent:   r.Header.Get("User-Agent"),
		connectedAt: time.Now(),
	}
}

// applyEvent updates the settings from a client control message.
func (h *Hub) applyEvent(event Event, value uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event {
	case Compression:
		h.settings.Compression = value == 1
	case CompressionLevel:
		h.settings.CompressionLevel = int(value)
	case FramePatching:
		h.settings.FramePatching = value == 1
	case FrameSkipping:
		h.settings.FrameSkipping = value == 1
	case FramePatchingRatio:
		h.settings.FramePatchRatio = int(value)
	default:
		h.log.Debugf("web: unknown event %d", event)
	}
}
