package pipeline

import (
	"strings"
	"time"

	"github.com/user/fleetwatch/internal/model"
)

// Classify derives the boolean facts about a single device relative to
// now. It is pure and never fails: absent or malformed fields simply
// yield false.
func Classify(device *model.DeviceRecord, now time.Time) model.DeviceFacts {
	facts := model.DeviceFacts{
		Activated: isTruthy(device, model.FieldServiceStatus, "activated"),
		Online:    isTruthy(device, model.FieldOnline, "true"),
		InSA:      device.String(model.FieldCountry) == "ZA",
	}

	if syncTime, ok := device.Epoch(model.FieldSyncTime); ok {
		facts.SyncedLast24h = within(syncTime, now, 24*time.Hour)
	}

	if connectedTime, ok := device.Epoch(model.FieldConnectedTime); ok {
		facts.ConnectedLast24h = within(connectedTime, now, 24*time.Hour)
		facts.ConnectedLast7Days = within(connectedTime, now, 7*24*time.Hour)
		facts.ConnectedSinceMonth = !connectedTime.Before(monthStart(now))
	}

	return facts
}

// isTruthy normalizes a field that may arrive as a native boolean or as
// a case-insensitive string form of the given word.
func isTruthy(device *model.DeviceRecord, field, trueWord string) bool {
	v, ok := device.Get(field)
	if !ok || v == nil {
		return false
	}

	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, trueWord)
	default:
		return false
	}
}

func within(t, now time.Time, window time.Duration) bool {
	return !t.Before(now.Add(-window))
}

// monthStart is the first day of now's calendar month at now's
// time-of-day, not midnight.
func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1,
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
}
