// Package events publishes room and booking changes after they are committed.
// Subscribers (dashboards, housekeeping tools) consume them from RabbitMQ.
package events

import (
	"context"
	"time"
)

type Type string

const (
	RoomCreated     Type = "room.created"
	RoomUpdated     Type = "room.updated"
	RoomDeleted     Type = "room.deleted"
	BookingCreated  Type = "booking.created"
	BookingUpdated  Type = "booking.updated"
	BookingDeleted  Type = "booking.deleted"
	BookingsCleared Type = "bookings.cleared"
)

type Event struct {
	Type       Type      `json:"type"`
	RoomID     string    `json:"roomId"`
	RoomNumber int       `json:"roomNumber,omitempty"`
	BookingID  string    `json:"bookingId,omitempty"`
	StartDate  string    `json:"startDate,omitempty"`
	EndDate    string    `json:"endDate,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
