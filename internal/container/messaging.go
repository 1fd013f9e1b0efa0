package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// AuditConsumerGroup is the Redis Streams consumer group for the audit log.
const AuditConsumerGroup = "shortlink-audit"

// Publishers are the typed event publish funcs.
type Publishers = events.Publishers

// InProcessBus carries events inside the server when Redis is not configured.
type InProcessBus struct {
	*gochannel.GoChannel
}

// PublisherGroupPackage provides the event publisher: Redis Streams when
// Redis is configured, otherwise an in-process channel.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*InProcessBus, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return &InProcessBus{
			GoChannel: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, messaging.NewZapLogger(logger)),
		}, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.RedisAddr == "" {
			return messaging.NewPublisherGroup(do.MustInvoke[*InProcessBus](i)), nil
		}

		client := do.MustInvoke[*RedisClient](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*Publishers, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return events.NewPublishers(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the audit consumers, reading from Redis
// Streams when configured or from the in-process bus otherwise.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		if opts.RedisAddr == "" {
			subscriber = do.MustInvoke[*InProcessBus](i)
		} else {
			client := do.MustInvoke[*RedisClient](i)

			sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        client.Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: AuditConsumerGroup,
			}, messaging.NewZapLogger(logger))
			if err != nil {
				return nil, err
			}

			subscriber = sub
		}

		group := messaging.NewConsumerGroup(subscriber, logger.Named("consumers"))
		for _, consumer := range events.NewAuditLog(logger).Consumers(subscriber, logger.Named("consumers")) {
			group.Add(consumer)
		}

		return group, nil
	})
}
