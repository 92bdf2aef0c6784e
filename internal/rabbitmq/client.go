package rabbitmq

import "github.com/streadway/amqp"

// Client публикует сообщения в exchange уведомлений через открытый канал.
type Client struct {
	ch *amqp.Channel
}

// NewClient создает новый экземпляр Client.
func NewClient(ch *amqp.Channel) *Client {
	return &Client{ch: ch}
}

// Publish отправляет message в exchange уведомлений с заданным ключом маршрутизации.
func (c *Client) Publish(routingKey string, message any) error {
	return PublishMessage(c.ch, Exchange, routingKey, message)
}
