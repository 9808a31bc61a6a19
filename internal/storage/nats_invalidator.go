package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// InvalidationMessage уведомление об инвалидации ключа
type InvalidationMessage struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
}

// InvalidatorConfig параметры NATS invalidator
type InvalidatorConfig struct {
	NATSURL       string
	Subject       string
	NodeID        string // пусто: сгенерировать UUID
	MaxReconnects int
	ReconnectWait time.Duration
}

// NATSInvalidator реализует Invalidator поверх NATS Pub/Sub.
// Собственные сообщения узла игнорируются.
type NATSInvalidator struct {
	conn    *nats.Conn
	subject string
	nodeID  string

	mu           sync.Mutex
	subscription *nats.Subscription

	publishedCount int64
	receivedCount  int64
	errorsCount    int64
}

// NewNATSInvalidator подключается к NATS
func NewNATSInvalidator(cfg InvalidatorConfig) (*NATSInvalidator, error) {
	if cfg.Subject == "" {
		cfg.Subject = "greenhouse.cache.invalidation"
	}
	if cfg.NodeID == "" {
		cfg.NodeID = uuid.NewString()
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	log := logging.GetStorageLogger()
	conn, err := nats.Connect(cfg.NATSURL,
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("NATS invalidator initialized: %s (subject: %s, node: %s)", cfg.NATSURL, cfg.Subject, cfg.NodeID)
	return &NATSInvalidator{conn: conn, subject: cfg.Subject, nodeID: cfg.NodeID}, nil
}

// PublishInvalidation отправляет уведомление об инвалидации ключа
func (n *NATSInvalidator) PublishInvalidation(ctx context.Context, key string) error {
	data, err := json.Marshal(InvalidationMessage{Key: key, Timestamp: time.Now().UTC(), NodeID: n.nodeID})
	if err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	atomic.AddInt64(&n.publishedCount, 1)
	return nil
}

// SubscribeInvalidations подписывается на уведомления; подписка снимается при отмене ctx или Close
func (n *NATSInvalidator) SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscription != nil {
		return fmt.Errorf("already subscribed to invalidations")
	}

	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		atomic.AddInt64(&n.receivedCount, 1)
		var m InvalidationMessage
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			atomic.AddInt64(&n.errorsCount, 1)
			return
		}
		if m.NodeID == n.nodeID {
			return
		}
		handler(m.Key)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}
	n.subscription = sub

	go func() {
		<-ctx.Done()
		n.unsubscribe()
	}()
	return nil
}

func (n *NATSInvalidator) unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscription != nil {
		_ = n.subscription.Unsubscribe()
		n.subscription = nil
	}
}

// Counters возвращает число отправленных, полученных уведомлений и ошибок
func (n *NATSInvalidator) Counters() (published, received, errors int64) {
	return atomic.LoadInt64(&n.publishedCount), atomic.LoadInt64(&n.receivedCount), atomic.LoadInt64(&n.errorsCount)
}

// Close закрывает соединение с NATS
func (n *NATSInvalidator) Close() error {
	n.unsubscribe()
	n.conn.Close()
	return nil
}
