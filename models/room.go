package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomType string

const (
	RoomTypeSingle   RoomType = "Single"
	RoomTypeDouble   RoomType = "Double"
	RoomTypeBusiness RoomType = "Business"
	RoomTypeSuite    RoomType = "Suite"
	RoomTypeDeluxe   RoomType = "Deluxe"
)

// RoomTypes lists every supported room type in display order.
var RoomTypes = []RoomType{RoomTypeSingle, RoomTypeDouble, RoomTypeBusiness, RoomTypeSuite, RoomTypeDeluxe}

func (t RoomType) Valid() bool {
	for _, rt := range RoomTypes {
		if rt == t {
			return true
		}
	}
	return false
}

func ParseRoomType(s string) (RoomType, error) {
	t := RoomType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown room type %q", s)
	}
	return t, nil
}

type Room struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`

	// room_number is not unique on purpose: the UI keeps numbers distinct.
	RoomNumber    int      `gorm:"column:room_number;index" json:"roomNumber"`
	Type          RoomType `gorm:"column:type;type:varchar(16)" json:"type"`
	PricePerNight float64  `gorm:"column:price_per_night" json:"pricePerNight"`
	IsOccupied    bool     `gorm:"column:is_occupied;default:false" json:"isOccupied"`
	BedCount      int      `gorm:"column:bed_count" json:"bedCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Owned collection, always ordered by start date. Deleting the room deletes these.
	Bookings []Booking `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:CASCADE" json:"bookings"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Overlapping returns the first booking of the room that overlaps [start, end],
// skipping the booking whose id equals exclude.
func (r *Room) Overlapping(start, end time.Time, exclude uuid.UUID) (*Booking, bool) {
	for i := range r.Bookings {
		b := &r.Bookings[i]
		if exclude != uuid.Nil && b.ID == exclude {
			continue
		}
		if Overlaps(start, end, b.Start(), b.End()) {
			return b, true
		}
	}
	return nil, false
}

// Detach removes the booking with the given id from the in-memory collection.
func (r *Room) Detach(id uuid.UUID) bool {
	for i := range r.Bookings {
		if r.Bookings[i].ID == id {
			r.Bookings = append(r.Bookings[:i], r.Bookings[i+1:]...)
			return true
		}
	}
	return false
}
