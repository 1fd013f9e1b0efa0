package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
)

// Publishers bundles the typed publish funcs for every link event.
type Publishers struct {
	LinkCreated messaging.Publish[LinkCreated]
	LinkDeleted messaging.Publish[LinkDeleted]
	LinksPurged messaging.Publish[LinksPurged]
}

// NewPublishers binds each event type to its topic on publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		LinkCreated: messaging.NewPublishFunc[LinkCreated](publisher, TopicLinkCreated, "LinkCreated"),
		LinkDeleted: messaging.NewPublishFunc[LinkDeleted](publisher, TopicLinkDeleted, "LinkDeleted"),
		LinksPurged: messaging.NewPublishFunc[LinksPurged](publisher, TopicLinksPurged, "LinksPurged"),
	}
}
