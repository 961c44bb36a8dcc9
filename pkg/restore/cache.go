package restore

import (
	"github.com/rs/zerolog/log"
)

// Cache lazily dials one connection per vhost and hands out fresh channels
// from it. Restore is single threaded; the cache is not safe for concurrent
// use.
type Cache struct {
	dial  DialFunc
	conns map[string]Connection
}

func NewCache(dial DialFunc) *Cache {
	return &Cache{dial: dial, conns: make(map[string]Connection)}
}

// Channel returns a new channel on the cached connection for the vhost,
// dialing it first if needed.
func (c *Cache) Channel(vhost string) (Channel, error) {
	conn, ok := c.conns[vhost]
	if !ok {
		var err error
		conn, err = c.dial(vhost)
		if err != nil {
			return nil, err
		}
		c.conns[vhost] = conn
	}
	return conn.Channel()
}

// CloseAll closes every cached connection.
func (c *Cache) CloseAll() {
	for vhost, conn := range c.conns {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Str("vhost", vhost).Msg("failed closing connection")
		}
		delete(c.conns, vhost)
	}
}
