package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"
)

// ---------------------------
// Response DTOs
// ---------------------------

type BookingResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Nights    int    `json:"nights"`
}

type RoomResponse struct {
	ID            string            `json:"id"`
	RoomNumber    int               `json:"roomNumber"`
	Type          models.RoomType   `json:"type"`
	PricePerNight float64           `json:"pricePerNight"`
	IsOccupied    bool              `json:"isOccupied"`
	BedCount      int               `json:"bedCount"`
	Bookings      []BookingResponse `json:"bookings"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func toBookingResponse(b models.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID.String(),
		RoomID:    b.RoomID.String(),
		StartDate: b.Start().Format(models.DateLayout),
		EndDate:   b.End().Format(models.DateLayout),
		Nights:    int(b.End().Sub(b.Start()).Hours() / 24),
	}
}

func toBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toRoomResponse(r models.Room) RoomResponse {
	return RoomResponse{
		ID:            r.ID.String(),
		RoomNumber:    r.RoomNumber,
		Type:          r.Type,
		PricePerNight: r.PricePerNight,
		IsOccupied:    r.IsOccupied,
		BedCount:      r.BedCount,
		Bookings:      toBookingResponses(r.Bookings),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ---------------------------
// Helpers
// ---------------------------

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrOverlappingBooking):
		utils.JSONError(c, http.StatusConflict, "error.overlappingBooking", "the booking overlaps an existing booking for this room")
	case errors.Is(err, services.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "room not found")
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", "booking not found")
	case errors.Is(err, services.ErrInvalidDateRange):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDateRange", "endDate must be after startDate")
	default:
		_ = c.Error(err)
		log.Error("service error", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "error.persistence", "database error")
	}
}
