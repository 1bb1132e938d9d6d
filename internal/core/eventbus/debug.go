package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs every published event at debug level with the
// identifying fields of its payload. Dropped events are logged as warnings
// and subscriber panics as errors.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		describePayload(e, payload).Msg("event fired")
	})

	bus.OnDrop(func(event Event, payload any) {
		e := logger.Warn().Str("event", string(event))
		describePayload(e, payload).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

// describePayload adds ids and counts only. Student names and emails stay
// out of the log.
func describePayload(e *zerolog.Event, payload any) *zerolog.Event {
	switch p := payload.(type) {
	case StudentCreatedPayload:
		return e.Str("id", p.Record.ID)
	case StudentUpdatedPayload:
		return e.Str("id", p.Record.ID)
	case StudentDeletedPayload:
		return e.Str("id", p.ID)
	case StudentsRefreshedPayload:
		return e.Int("count", p.Count)
	case StudentsBulkDeletedPayload:
		return e.Int("deleted", p.Deleted).Int("failed", p.Failed)
	case AuthChangedPayload:
		if p.User == nil {
			return e.Bool("signed_in", false)
		}
		return e.Bool("signed_in", true).Str("uid", p.User.UID)
	case NotificationPublishedPayload:
		return e.Str("level", string(p.Level))
	default:
		return e
	}
}
