// Package chat relays messages between connected terminals over
// websockets. There is no persistence: a message reaches whoever is
// connected at that moment and is gone.
package chat

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Conn is one connected client. Writes are serialized through the mutex
// because gorilla/websocket allows a single concurrent writer.
type Conn struct {
	ws   *websocket.Conn
	name string
	mu   sync.Mutex
}

func (c *Conn) Name() string { return c.name }

func (c *Conn) send(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// Registry tracks live connections per channel. A channel is either a
// station name for the floor-to-bar relay or the shared kitchen room.
type Registry struct {
	mu       sync.Mutex
	channels map[string][]*Conn
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string][]*Conn)}
}

func (r *Registry) Add(channel string, ws *websocket.Conn, name string) *Conn {
	conn := &Conn{ws: ws, name: name}
	r.mu.Lock()
	r.channels[channel] = append(r.channels[channel], conn)
	r.mu.Unlock()
	log.Debug().Str("channel", channel).Str("client", name).Msg("Chat client connected")
	return conn
}

func (r *Registry) Remove(channel string, conn *Conn) {
	r.mu.Lock()
	conns := r.channels[channel]
	for i, c := range conns {
		if c == conn {
			r.channels[channel] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	log.Debug().Str("channel", channel).Str("client", conn.name).Msg("Chat client disconnected")
}

// Broadcast delivers data to every connection on the channel except the
// sender. A connection that fails to take the write is skipped; its own
// read loop will notice the dead socket and remove it.
func (r *Registry) Broadcast(channel string, sender *Conn, messageType int, data []byte) {
	r.mu.Lock()
	conns := make([]*Conn, len(r.channels[channel]))
	copy(conns, r.channels[channel])
	r.mu.Unlock()

	for _, c := range conns {
		if c == sender {
			continue
		}
		if err := c.send(messageType, data); err != nil {
			log.Debug().Err(err).Str("channel", channel).Str("client", c.name).Msg("Chat write failed")
		}
	}
}
