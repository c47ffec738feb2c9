package fleet

import (
	"context"
	"errors"
	"fmt"
	"transport-simulator/internal/config"
	"transport-simulator/internal/domain"
	"transport-simulator/internal/platform/obs"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RoutedHandler receives the action list of a routed event.
type RoutedHandler func(ctx context.Context, actions []domain.Action) error

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaFleetClient is the simulated transport's binding to the fleet system.
// It publishes location, status and commodity updates and consumes routed
// events addressed to its transport.
//
// Publishing is asynchronous: a slow or unavailable broker never blocks a tick.
type KafkaFleetClient struct {
	transportID string
	writer      messageWriter
	reader      messageReader
	logger      *zap.Logger
}

func NewKafkaFleetClient(cfg config.KafkaConfig, transportID string, logger *zap.Logger) (*KafkaFleetClient, error) {
	if !cfg.Enabled() {
		return nil, errors.New("new fleet client: no kafka brokers configured")
	}
	if transportID == "" {
		return nil, errors.New("new fleet client: transport id is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("fleet")

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.UpdatesTopic,
		Balancer: &kafka.Hash{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("fleet update delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}

	// One consumer group per transport so every simulator sees its own routes.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID + "." + transportID,
		Topic:       cfg.RoutesTopic,
		StartOffset: kafka.LastOffset,
	})

	return newKafkaFleetClient(transportID, writer, reader, logger), nil
}

func newKafkaFleetClient(transportID string, writer messageWriter, reader messageReader, logger *zap.Logger) *KafkaFleetClient {
	return &KafkaFleetClient{
		transportID: transportID,
		writer:      writer,
		reader:      reader,
		logger:      logger,
	}
}

func (c *KafkaFleetClient) ID() string { return c.transportID }

// Register announces the transport online at its start position.
func (c *KafkaFleetClient) Register(ctx context.Context, start domain.Coordinates, metadata map[string]any) error {
	c.logger.Info("registering transport", zap.String("transport_id", c.transportID), zap.Stringer("start", start))
	return c.publish(ctx, TypeCreated, CreatedPayload{
		Lat:      start.Lat,
		Lng:      start.Lon,
		Status:   domain.TransportOnline,
		Metadata: metadata,
	})
}

func (c *KafkaFleetClient) UpdateLocation(ctx context.Context, pos domain.Coordinates) error {
	return c.publish(ctx, TypeLocation, LocationPayload{Lat: pos.Lat, Lng: pos.Lon})
}

func (c *KafkaFleetClient) UpdateStatus(ctx context.Context, status domain.TransportStatus) error {
	return c.publish(ctx, TypeStatus, StatusPayload{Status: status})
}

func (c *KafkaFleetClient) PickedUp(ctx context.Context, commodityID string, carrierID string) error {
	return c.publish(ctx, TypePickedUp, CommodityPayload{CommodityID: commodityID, CarrierID: carrierID})
}

func (c *KafkaFleetClient) DroppedOff(ctx context.Context, commodityID string) error {
	return c.publish(ctx, TypeDroppedOff, CommodityPayload{CommodityID: commodityID})
}

func (c *KafkaFleetClient) publish(ctx context.Context, msgType string, payload any) error {
	env, err := NewEnvelope(msgType, c.transportID, payload)
	if err != nil {
		return err
	}

	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("publish %s: encode: %w", msgType, err)
	}

	if err := c.writer.WriteMessages(ctx, kafka.Message{Key: []byte(c.transportID), Value: data}); err != nil {
		return fmt.Errorf("publish %s: %w", msgType, err)
	}
	return nil
}

// Consume delivers routed events for this transport to handler until ctx is
// cancelled. Malformed messages and handler failures are logged and committed;
// the next routed event supersedes them.
func (c *KafkaFleetClient) Consume(ctx context.Context, handler RoutedHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("consume routes: fetch: %w", err)
		}

		c.handleMessage(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *KafkaFleetClient) handleMessage(ctx context.Context, msg kafka.Message, handler RoutedHandler) {
	env, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse fleet message", zap.Error(err), zap.String("raw", string(msg.Value)))
		return
	}

	if env.Type != TypeRouted || env.TransportID != c.transportID {
		c.logger.Debug("ignoring fleet message", zap.String("type", env.Type), zap.String("transport_id", env.TransportID))
		return
	}

	var routed RoutedPayload
	if err := env.ParsePayload(&routed); err != nil {
		c.logger.Error("failed to parse routed payload", zap.String("id", env.ID), zap.Error(err))
		return
	}

	actions, err := routed.DomainActions()
	if err != nil {
		c.logger.Error("invalid routed actions", zap.String("id", env.ID), zap.Error(err))
		return
	}

	c.logger.Info("received new route", zap.String("id", env.ID), zap.Int("actions", len(actions)))
	if err := handler(obs.WithRequestID(ctx, env.ID), actions); err != nil {
		c.logger.Error("failed to apply route", zap.String("id", env.ID), zap.Error(err))
	}
}

func (c *KafkaFleetClient) Close() error {
	return errors.Join(c.reader.Close(), c.writer.Close())
}
