// Package nsq adapts an NSQ producer to the notification pipeline.
package nsq

import (
	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
)

// Producer publishes payment events to an nsqd instance.
type Producer struct {
	producer *nsq.Producer
}

// NewProducer connects to nsqd at addr and verifies the connection.
func NewProducer(addr string, logger *logrus.Logger) (*Producer, error) {
	cfg := nsq.NewConfig()

	producer, err := nsq.NewProducer(addr, cfg)
	if err != nil {
		return nil, err
	}
	producer.SetLogger(newLogAdapter(logger), nsq.LogLevelWarning)

	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, err
	}

	return &Producer{producer: producer}, nil
}

// Publish sends a message to the given topic.
func (p *Producer) Publish(topic string, body []byte) error {
	return p.producer.Publish(topic, body)
}

// Stop gracefully stops the producer, draining pending messages.
func (p *Producer) Stop() {
	p.producer.Stop()
}

// logAdapter bridges the nsq client's logger to logrus.
type logAdapter struct {
	logger *logrus.Logger
}

func newLogAdapter(logger *logrus.Logger) *logAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logAdapter{logger: logger}
}

func (a *logAdapter) Output(_ int, s string) error {
	a.logger.Warn(s)
	return nil
}
