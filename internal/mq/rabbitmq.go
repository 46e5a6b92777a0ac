package mq

import (
	"Go_Site/config"
	"context"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeTasks = "asset.reconcile.exchange"
	ExchangeRetry = "asset.reconcile.retry.exchange"
	ExchangeDLQ   = "asset.reconcile.dlq.exchange"

	QueueTasks = "asset.reconcile.queue"
	QueueRetry = "asset.reconcile.retry.queue"
	QueueDLQ   = "asset.reconcile.dlq.queue"

	RoutingTask  = "reconcile"
	RoutingRetry = "reconcile.retry"
	RoutingDLQ   = "reconcile.dlq"
)

// binding is one exchange -> queue leg of the reconcile topology.
type binding struct {
	exchange string
	queue    string
	routing  string
	args     amqp.Table
}

// topology: tasks are consumed from QueueTasks; retries sit in QueueRetry
// until their per-message TTL expires and dead-letter back to the task
// exchange; exhausted tasks land in QueueDLQ.
var topology = []binding{
	{exchange: ExchangeTasks, queue: QueueTasks, routing: RoutingTask},
	{exchange: ExchangeRetry, queue: QueueRetry, routing: RoutingRetry, args: amqp.Table{
		"x-dead-letter-exchange":    ExchangeTasks,
		"x-dead-letter-routing-key": RoutingTask,
	}},
	{exchange: ExchangeDLQ, queue: QueueDLQ, routing: RoutingDLQ},
}

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

// Dial connects to the configured broker.
func Dial() (*Client, error) {
	return DialURL(config.AppConfig.RabbitMQURL)
}

// DialURL connects to url and opens one channel.
func DialURL(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns the shared publishing client, redialing when the
// previous connection was closed.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

// ClosePublisher closes the shared publishing client if one is open.
func ClosePublisher() {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	publisher.Close()
	publisher = nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the durable exchanges, queues and bindings.
func (c *Client) DeclareTopology() error {
	for _, b := range topology {
		if err := c.Channel.ExchangeDeclare(b.exchange, "direct", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := c.Channel.QueueDeclare(b.queue, true, false, false, false, b.args); err != nil {
			return err
		}
		if err := c.Channel.QueueBind(b.queue, b.routing, b.exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) PublishTask(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeTasks, RoutingTask, body, "")
}

// PublishRetry parks body in the retry queue for delay.
func (c *Client) PublishRetry(ctx context.Context, body []byte, delay time.Duration) error {
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, retryExpiration(delay))
}

func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func retryExpiration(delay time.Duration) string {
	if delay < 0 {
		delay = 0
	}
	return strconv.FormatInt(delay.Milliseconds(), 10)
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Expiration:   expiration,
	}
	return c.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}
