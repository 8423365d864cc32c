// Package validator holds the pure input checks run before an event is
// created.
package validator

import (
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

// ValidateCreateEvent checks the fields of a new event. A nil pointer means
// the value was not supplied. Times are compared by time of day only.
func ValidateCreateEvent(name string, date, startTime, endTime *time.Time) error {
	if strings.TrimSpace(name) == "" {
		return model.InvalidArgument("Event name cannot be empty!")
	}
	if date == nil {
		return model.InvalidArgument("Event date cannot be empty!")
	}
	if startTime == nil || endTime == nil {
		return model.InvalidArgument("Event start and end times cannot be empty!")
	}
	if model.ClockOf(*startTime) >= model.ClockOf(*endTime) {
		return model.InvalidArgument("Event end time cannot be before event start time!")
	}
	return nil
}
