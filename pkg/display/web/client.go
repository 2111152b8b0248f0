package web

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbcemu/internal/joypad"
	"github.com/thelolagemann/gbcemu/pkg/emulator"
)

// Client is a single websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	Send chan []byte
	ID   uint8

	RemoteAddr string
	UserAgent  string

	avgLatency  atomic.Uint32
	connectedAt time.Time
}

// Latency returns the smoothed round trip time to the client in
// milliseconds, or 0 where it can't be measured.
func (c *Client) Latency() uint16 {
	return uint16(c.avgLatency.Load())
}

// ReadPump reads messages from the client until the connection
// closes.
func (c *Client) ReadPump() {
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) == 0 {
			continue
		}

		switch message[0] {
		case pauseMessage:
			if len(message) < 2 {
				continue
			}
			c.pausePlay(message[1] != 0)
		case controlMessage:
			if len(message) < 3 {
				continue
			}
			c.hub.applyEvent(message[1], message[2])
		case resetMessage:
			c.command(emulator.CommandReset)
			c.hub.Broadcast([]byte{PlayerInfo, Reset})
		case closingMessage:
			return
		case joypad.ButtonA, joypad.ButtonB, joypad.ButtonSelect, joypad.ButtonStart,
			joypad.ButtonRight, joypad.ButtonLeft, joypad.ButtonUp, joypad.ButtonDown:
			if len(message) < 2 {
				continue
			}
			if message[1] == 0 {
				c.hub.pad.Release(message[0])
			} else {
				c.hub.pad.Press(message[0])
			}
		default:
			c.hub.log.Debugf("web: client %d sent unknown message %v", c.ID, message)
		}
	}
}

func (c *Client) pausePlay(resume bool) {
	if resume {
		c.command(emulator.CommandResume)
		c.hub.Broadcast([]byte{PlayerInfo, PausePlay, 1})
	} else {
		c.command(emulator.CommandPause)
		c.hub.Broadcast([]byte{PlayerInfo, PausePlay, 0})
	}
}

func (c *Client) command(cmd emulator.Command) {
	if c.hub.emu == nil {
		return
	}
	if resp := c.hub.emu.SendCommand(emulator.CommandPacket{Command: cmd}); resp.Error != nil {
		c.hub.log.Warnf("web: client %d: %v", c.ID, resp.Error)
	}
}

// WritePump writes queued messages to the client until the hub
// closes Send.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.Send {
		// try to write message to client
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}

		// update average latency
		if rtt, ok := roundTrip(c.conn.UnderlyingConn()); ok {
			ms := uint32(rtt / time.Millisecond)
			c.avgLatency.Store((c.avgLatency.Load()*9 + ms) / 10)
		}
	}

	// hub closed the connection
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
