// Package appkafka carries engagement events between the HTTP server
// and the feed fan-out worker.
package appkafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/socialnet/internal/models"
	"github.com/segmentio/kafka-go"
)

// Event keys carried on the engagement topic.
const (
	EventPostCreated = "post_created"
)

// KafkaWriter defines an interface for writing messages to Kafka.
type KafkaWriter interface {
	WriteMessages(messages ...kafka.Message) error
	Close() error
}

// KafkaReader defines an interface for reading messages from Kafka.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// PublishPostCreated encodes the post as a post_created event and
// hands it to the writer. The worker decodes the same shape on the
// other end of the topic.
func PublishPostCreated(w KafkaWriter, post models.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post event: %w", err)
	}
	return w.WriteMessages(kafka.Message{
		Key:   []byte(EventPostCreated),
		Value: data,
	})
}

// KafkaConfig holds connection parameters for the engagement topic.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	Partition    int // used for low-level writes
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	GroupID      string // consumer group for the fan-out workers
}

func (c *KafkaConfig) applyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// RealKafkaWriter implements KafkaWriter using kafka.Conn (low-level writes).
type RealKafkaWriter struct {
	conn   *kafka.Conn
	config KafkaConfig
}

// NewKafkaWriter dials the partition leader for the engagement topic.
func NewKafkaWriter(cfg KafkaConfig) (*RealKafkaWriter, error) {
	cfg.applyDefaults()

	conn, err := kafka.DialLeader(context.Background(), "tcp", cfg.Brokers[0], cfg.Topic, cfg.Partition)
	if err != nil {
		return nil, err
	}

	return &RealKafkaWriter{
		conn:   conn,
		config: cfg,
	}, nil
}

func (w *RealKafkaWriter) WriteMessages(messages ...kafka.Message) error {
	if w.conn == nil {
		return errors.New("kafka connection is nil")
	}
	w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	_, err := w.conn.WriteMessages(messages...)
	return err
}

func (w *RealKafkaWriter) Close() error {
	if w.conn != nil {
		return w.conn.Close()
	}
	return nil
}

// RealKafkaReader implements KafkaReader using kafka.Reader (consumer group).
type RealKafkaReader struct {
	reader *kafka.Reader
}

// NewKafkaReader creates a consumer group reader for the fan-out worker.
func NewKafkaReader(cfg KafkaConfig) KafkaReader {
	cfg.applyDefaults()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return &RealKafkaReader{reader: r}
}

func (r *RealKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return r.reader.ReadMessage(ctx)
}

func (r *RealKafkaReader) Close() error {
	return r.reader.Close()
}
