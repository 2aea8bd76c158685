// Package activity records every successfully dispatched device action.
//
// Entries are append-only: the dispatcher inserts one row per committed
// action inside the same transaction as the device status write, so the
// log and the device table can never disagree about what happened.
package activity

import (
	"errors"
	"time"
)

// ErrEntryInvalid rejects an entry with no device or action.
var ErrEntryInvalid = errors.New("activity: entry requires device and action")

// Entry is one recorded device action.
type Entry struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Action    string    `json:"action"`
	Value     *float64  `json:"value,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// Filter narrows a log listing. Zero values mean "no constraint";
// a zero Limit falls back to DefaultLimit.
type Filter struct {
	DeviceID string
	Limit    int
	Offset   int
}

// DefaultLimit caps unbounded listings.
const DefaultLimit = 100
