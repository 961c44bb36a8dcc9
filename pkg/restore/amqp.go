package restore

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gentoomaniac/rmqbackup/pkg/dump"
)

// Channel is the slice of the AMQP channel API the restorer needs. A channel
// becomes unusable after a failed passive declare; callers fetch a fresh one
// from the connection cache.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection hands out channels for one vhost.
type Connection interface {
	Channel() (Channel, error)
	Close() error
}

// DialFunc opens a connection to one vhost.
type DialFunc func(vhost string) (Connection, error)

// AMQPDialer returns a DialFunc connecting to the given broker.
func AMQPDialer(host string, port int, user string, password string) DialFunc {
	return func(vhost string) (Connection, error) {
		uri := amqp.URI{
			Scheme:   "amqp",
			Host:     host,
			Port:     port,
			Username: user,
			Password: password,
			Vhost:    vhost,
		}
		conn, err := amqp.Dial(uri.String())
		if err != nil {
			return nil, err
		}
		return amqpConnection{conn}, nil
	}
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	channel, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return channel, nil
}

func (c amqpConnection) Close() error {
	return c.conn.Close()
}

// publishing maps a record's properties, headers and body onto an AMQP
// publishing. The cluster id property has no counterpart in the publish frame
// and is dropped here.
func publishing(record *dump.Record, body []byte) amqp.Publishing {
	pub := amqp.Publishing{
		Headers:         amqp.Table(record.Headers),
		ContentType:     record.Properties.ContentType,
		ContentEncoding: record.Properties.ContentEncoding,
		DeliveryMode:    record.Properties.DeliveryMode,
		Priority:        record.Properties.Priority,
		CorrelationId:   record.Properties.CorrelationID,
		ReplyTo:         record.Properties.ReplyTo,
		Expiration:      record.Properties.Expiration,
		MessageId:       record.Properties.MessageID,
		Type:            record.Properties.Type,
		UserId:          record.Properties.UserID,
		AppId:           record.Properties.AppID,
		Body:            body,
	}
	if record.Properties.Timestamp != 0 {
		pub.Timestamp = time.Unix(record.Properties.Timestamp, 0)
	}
	return pub
}
