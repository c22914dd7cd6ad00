// services/reservation_service.go
package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-reservation/events"
	"hotel-reservation/locks"
	"hotel-reservation/models"
)

// ReservationService owns every write to rooms and bookings. It enforces that
// the bookings of one room never overlap and that a room is deleted together
// with its bookings.
type ReservationService struct {
	DB     *gorm.DB
	Locker locks.Locker
	Events events.Publisher
	Log    *zap.Logger
}

func NewReservationService(db *gorm.DB, locker locks.Locker, publisher events.Publisher, log *zap.Logger) *ReservationService {
	if locker == nil {
		locker = locks.NewLocalLocker()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{DB: db, Locker: locker, Events: publisher, Log: log}
}

func orderByStart(db *gorm.DB) *gorm.DB {
	return db.Order("start_date ASC").Order("created_at ASC")
}

func sortBookings(bookings []models.Booking) {
	slices.SortStableFunc(bookings, func(a, b models.Booking) int {
		return a.Start().Compare(b.Start())
	})
}

// mapErr keeps domain errors as they are and wraps everything else as a
// persistence failure. A missing record becomes notFound when one is given.
func mapErr(op string, err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrOverlappingBooking),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrPersistenceFailure):
		return err
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	}
	return persistenceErr(op, err)
}

func (s *ReservationService) lockRoom(ctx context.Context, id uuid.UUID) (func(), error) {
	unlock, err := s.Locker.Lock(ctx, locks.RoomKey(id.String()))
	if err != nil {
		return nil, persistenceErr("lock room", err)
	}
	return unlock, nil
}

// lockRoomRow re-reads the room inside tx with a row lock. SQLite has no row
// locks; there the room lock alone serializes writers.
func lockRoomRow(tx *gorm.DB, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// loadRoomForUpdate locks the room row and loads its current bookings, the
// snapshot every overlap check runs against.
func loadRoomForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Room, error) {
	room, err := lockRoomRow(tx, id)
	if err != nil {
		return nil, err
	}
	room.Bookings = []models.Booking{}
	if err := tx.Scopes(orderByStart).Where("room_id = ?", id).Find(&room.Bookings).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func touchRoom(tx *gorm.DB, id uuid.UUID, now time.Time) error {
	return tx.Model(&models.Room{}).Where("id = ?", id).Update("updated_at", now).Error
}

func (s *ReservationService) publish(ctx context.Context, ev events.Event) {
	ev.OccurredAt = time.Now().UTC()
	// The mutation is already committed; a late client disconnect must not drop the event.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Events.Publish(pctx, ev); err != nil {
		s.Log.Warn("publish event failed", zap.String("type", string(ev.Type)), zap.String("roomId", ev.RoomID), zap.Error(err))
	}
}

func bookingEvent(t events.Type, room *models.Room, b *models.Booking) events.Event {
	return events.Event{
		Type:       t,
		RoomID:     room.ID.String(),
		RoomNumber: room.RoomNumber,
		BookingID:  b.ID.String(),
		StartDate:  b.Start().Format(models.DateLayout),
		EndDate:    b.End().Format(models.DateLayout),
	}
}

// ---------------------------
// Rooms
// ---------------------------

// CreateRoom inserts room with an empty booking collection. Field validation
// is the caller's job.
func (s *ReservationService) CreateRoom(ctx context.Context, room *models.Room) error {
	room.Bookings = []models.Booking{}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(room).Error; err != nil {
		return persistenceErr("create room", err)
	}

	s.Log.Info("created room",
		zap.String("roomId", room.ID.String()),
		zap.Int("roomNumber", room.RoomNumber),
		zap.String("type", string(room.Type)),
	)
	s.publish(ctx, events.Event{Type: events.RoomCreated, RoomID: room.ID.String(), RoomNumber: room.RoomNumber})
	return nil
}

// FetchRooms returns all rooms by ascending room number, bookings included.
func (s *ReservationService) FetchRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.WithContext(ctx).
		Preload("Bookings", orderByStart).
		Order("room_number ASC").
		Order("created_at ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, persistenceErr("fetch rooms", err)
	}
	for i := range rooms {
		if rooms[i].Bookings == nil {
			rooms[i].Bookings = []models.Booking{}
		}
	}
	return rooms, nil
}

// FetchRoomByID returns ErrRoomNotFound when no room has that id.
func (s *ReservationService) FetchRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Preload("Bookings", orderByStart).First(&room, "id = ?", id).Error
	if err != nil {
		return nil, mapErr("fetch room", err, ErrRoomNotFound)
	}
	if room.Bookings == nil {
		room.Bookings = []models.Booking{}
	}
	return &room, nil
}

// UpdateRoom saves the descriptive fields of an existing room. Bookings are
// not touched and not revalidated.
func (s *ReservationService) UpdateRoom(ctx context.Context, room *models.Room) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Room
		if err := tx.Select("id").First(&current, "id = ?", room.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).Updates(map[string]interface{}{
			"room_number":     room.RoomNumber,
			"type":            string(room.Type),
			"price_per_night": room.PricePerNight,
			"is_occupied":     room.IsOccupied,
			"bed_count":       room.BedCount,
		}).Error; err != nil {
			return err
		}
		if err := tx.Select("updated_at").First(&current, "id = ?", room.ID).Error; err != nil {
			return err
		}
		room.UpdatedAt = current.UpdatedAt
		return nil
	})
	if err != nil {
		return mapErr("update room", err, ErrRoomNotFound)
	}

	s.Log.Info("updated room",
		zap.String("roomId", room.ID.String()),
		zap.Int("roomNumber", room.RoomNumber),
		zap.String("type", string(room.Type)),
		zap.Bool("isOccupied", room.IsOccupied),
	)
	s.publish(ctx, events.Event{Type: events.RoomUpdated, RoomID: room.ID.String(), RoomNumber: room.RoomNumber})
	return nil
}

// DeleteRoom removes the room and every booking that points at it in one
// transaction: children first, then the parent. It returns how many bookings
// went with the room.
func (s *ReservationService) DeleteRoom(ctx context.Context, room *models.Room) (int64, error) {
	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var removed int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoomRow(tx, room.ID); err != nil {
			return err
		}
		res := tx.Where("room_id = ?", room.ID).Delete(&models.Booking{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		res = tx.Where("id = ?", room.ID).Delete(&models.Room{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
	if err != nil {
		return 0, mapErr("delete room", err, ErrRoomNotFound)
	}

	room.Bookings = []models.Booking{}
	s.Log.Info("deleted room",
		zap.String("roomId", room.ID.String()),
		zap.Int("roomNumber", room.RoomNumber),
		zap.Int64("bookings", removed),
	)
	s.publish(ctx, events.Event{Type: events.RoomDeleted, RoomID: room.ID.String(), RoomNumber: room.RoomNumber, Count: int(removed)})
	return removed, nil
}

// ---------------------------
// Bookings
// ---------------------------

// CreateBooking attaches booking to room unless it overlaps one of the room's
// bookings. The check, the insert and the room update commit together; on
// any failure nothing is written and booking is left as it was.
func (s *ReservationService) CreateBooking(ctx context.Context, booking *models.Booking, room *models.Room) error {
	if !booking.End().After(booking.Start()) {
		return ErrInvalidDateRange
	}

	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	defer unlock()

	prevID, prevRoom := booking.ID, booking.RoomID
	now := time.Now()
	var current *models.Room
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := loadRoomForUpdate(tx, room.ID)
		if err != nil {
			return err
		}
		if existing, ok := r.Overlapping(booking.Start(), booking.End(), uuid.Nil); ok {
			s.Log.Info("rejected overlapping booking",
				zap.Int("roomNumber", r.RoomNumber),
				zap.String("conflictsWith", existing.ID.String()),
			)
			return ErrOverlappingBooking
		}

		booking.RoomID = r.ID
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		if err := touchRoom(tx, r.ID, now); err != nil {
			return err
		}
		r.Bookings = append(r.Bookings, *booking)
		sortBookings(r.Bookings)
		current = r
		return nil
	})
	if err != nil {
		booking.ID, booking.RoomID = prevID, prevRoom
		return mapErr("create booking", err, ErrRoomNotFound)
	}

	room.Bookings = current.Bookings
	room.UpdatedAt = now
	s.Log.Info("created booking",
		zap.String("bookingId", booking.ID.String()),
		zap.Int("roomNumber", current.RoomNumber),
		zap.String("start", booking.Start().Format(models.DateLayout)),
		zap.String("end", booking.End().Format(models.DateLayout)),
	)
	s.publish(ctx, bookingEvent(events.BookingCreated, current, booking))
	return nil
}

// UpdateBooking moves booking to [newStart, newEnd]. The booking itself is
// excluded from the conflict set, so keeping the same dates always succeeds.
func (s *ReservationService) UpdateBooking(ctx context.Context, booking *models.Booking, newStart, newEnd time.Time, room *models.Room) error {
	start, end := models.Day(newStart), models.Day(newEnd)
	if !end.After(start) {
		return ErrInvalidDateRange
	}

	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	defer unlock()

	var current *models.Room
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := loadRoomForUpdate(tx, room.ID)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(r.Bookings, func(b models.Booking) bool { return b.ID == booking.ID })
		if idx < 0 {
			return ErrBookingNotFound
		}
		if existing, ok := r.Overlapping(start, end, booking.ID); ok {
			s.Log.Info("rejected overlapping booking update",
				zap.String("bookingId", booking.ID.String()),
				zap.Int("roomNumber", r.RoomNumber),
				zap.String("conflictsWith", existing.ID.String()),
			)
			return ErrOverlappingBooking
		}

		res := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"start_date": models.NewDate(start),
			"end_date":   models.NewDate(end),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingNotFound
		}
		r.Bookings[idx].StartDate = models.NewDate(start)
		r.Bookings[idx].EndDate = models.NewDate(end)
		sortBookings(r.Bookings)
		current = r
		return nil
	})
	if err != nil {
		return mapErr("update booking", err, ErrRoomNotFound)
	}

	booking.StartDate = models.NewDate(start)
	booking.EndDate = models.NewDate(end)
	booking.RoomID = current.ID
	room.Bookings = current.Bookings
	s.Log.Info("updated booking",
		zap.String("bookingId", booking.ID.String()),
		zap.Int("roomNumber", current.RoomNumber),
		zap.String("start", start.Format(models.DateLayout)),
		zap.String("end", end.Format(models.DateLayout)),
	)
	s.publish(ctx, bookingEvent(events.BookingUpdated, current, booking))
	return nil
}

// DeleteBooking removes one booking and detaches it from room, when given.
// It holds the room lock of the booking so it cannot interleave with an
// update of the same booking.
func (s *ReservationService) DeleteBooking(ctx context.Context, booking *models.Booking, room *models.Room) error {
	unlock, err := s.lockRoom(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	res := s.DB.WithContext(ctx).Where("id = ?", booking.ID).Delete(&models.Booking{})
	if res.Error != nil {
		return persistenceErr("delete booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBookingNotFound
	}

	ev := events.Event{
		Type:      events.BookingDeleted,
		RoomID:    booking.RoomID.String(),
		BookingID: booking.ID.String(),
		StartDate: booking.Start().Format(models.DateLayout),
		EndDate:   booking.End().Format(models.DateLayout),
	}
	if room != nil {
		room.Detach(booking.ID)
		ev.RoomNumber = room.RoomNumber
	}
	s.Log.Info("deleted booking",
		zap.String("bookingId", booking.ID.String()),
		zap.String("roomId", booking.RoomID.String()),
	)
	s.publish(ctx, ev)
	return nil
}

// DeleteAllBookings empties the room's booking collection in storage and in
// memory.
func (s *ReservationService) DeleteAllBookings(ctx context.Context, room *models.Room) error {
	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	defer unlock()

	var removed int64
	now := time.Now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoomRow(tx, room.ID); err != nil {
			return err
		}
		res := tx.Where("room_id = ?", room.ID).Delete(&models.Booking{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return touchRoom(tx, room.ID, now)
	})
	if err != nil {
		return mapErr("delete all bookings", err, ErrRoomNotFound)
	}

	room.Bookings = []models.Booking{}
	room.UpdatedAt = now
	s.Log.Info("deleted all bookings",
		zap.String("roomId", room.ID.String()),
		zap.Int("roomNumber", room.RoomNumber),
		zap.Int64("bookings", removed),
	)
	s.publish(ctx, events.Event{Type: events.BookingsCleared, RoomID: room.ID.String(), RoomNumber: room.RoomNumber, Count: int(removed)})
	return nil
}

// FetchBookings lists the bookings of one room ordered by start date.
func (s *ReservationService) FetchBookings(ctx context.Context, roomID uuid.UUID) ([]models.Booking, error) {
	db := s.DB.WithContext(ctx)
	var room models.Room
	if err := db.Select("id").First(&room, "id = ?", roomID).Error; err != nil {
		return nil, mapErr("fetch bookings", err, ErrRoomNotFound)
	}
	bookings := []models.Booking{}
	if err := db.Scopes(orderByStart).Where("room_id = ?", roomID).Find(&bookings).Error; err != nil {
		return nil, persistenceErr("fetch bookings", err)
	}
	return bookings, nil
}

func (s *ReservationService) FetchBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, mapErr("fetch booking", err, ErrBookingNotFound)
	}
	return &booking, nil
}
