package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

type Booking struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`

	// RoomID is the only link back to the room; ownership flows Room -> Booking.
	RoomID    uuid.UUID      `gorm:"column:room_id;type:char(36);index;not null" json:"roomId"`
	StartDate datatypes.Date `gorm:"column:start_date;not null" json:"startDate"`
	EndDate   datatypes.Date `gorm:"column:end_date;not null" json:"endDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewBooking(start, end time.Time) *Booking {
	return &Booking{StartDate: NewDate(start), EndDate: NewDate(end)}
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Start and End re-read the stored calendar day so that the location the
// driver scanned the column in does not shift the interval.
func (b Booking) Start() time.Time { return Day(time.Time(b.StartDate)) }
func (b Booking) End() time.Time   { return Day(time.Time(b.EndDate)) }

// Overlaps reports whether this booking shares at least one day with other.
func (b Booking) Overlaps(other Booking) bool {
	return Overlaps(b.Start(), b.End(), other.Start(), other.End())
}

// Overlaps is the inclusive interval test: ranges that only touch on a
// boundary day still overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// NewDate truncates t to its calendar day at UTC midnight.
func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(Day(t))
}

func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
