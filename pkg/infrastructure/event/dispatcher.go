package event

import (
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/service"
)

var _ service.EventDispatcher = &LogDispatcher{}

// LogDispatcher writes every domain event to the log.
type LogDispatcher struct {
	logger log.FieldLogger
}

func NewLogDispatcher(logger log.FieldLogger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(event service.Event) error {
	d.logger.WithFields(log.Fields{
		"type":  event.Type(),
		"event": event,
	}).Info("domain event")
	return nil
}

// Session tags events with the shopper session they belong to.
func (d *LogDispatcher) Session(id string) service.EventDispatcher {
	return &LogDispatcher{logger: d.logger.WithField("session", id)}
}
