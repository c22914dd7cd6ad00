package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"
)

type BookingRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

type BookingController struct {
	Svc *services.ReservationService
	Log *zap.Logger
	// Now is the clock used to reject bookings that start in the past.
	Now func() time.Time
}

func NewBookingController(svc *services.ReservationService, log *zap.Logger) *BookingController {
	return &BookingController{Svc: svc, Log: log, Now: time.Now}
}

// parseRange validates the request dates and writes the 400 response itself.
func (ctrl *BookingController) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "startDate and endDate are required")
		return time.Time{}, time.Time{}, false
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "startDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "endDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDateRange", "endDate must be after startDate")
		return time.Time{}, time.Time{}, false
	}
	if start.Before(models.Day(ctrl.Now())) {
		utils.JSONError(c, http.StatusBadRequest, "error.dateInPast", "startDate cannot be in the past")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// loadRoomBooking resolves :id and :bookingId and checks that the booking
// belongs to that room.
func (ctrl *BookingController) loadRoomBooking(c *gin.Context) (*models.Room, *models.Booking, bool) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, nil, false
	}
	bookingID, ok := parseIDParam(c, "bookingId")
	if !ok {
		return nil, nil, false
	}
	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), roomID)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return nil, nil, false
	}
	booking, err := ctrl.Svc.FetchBookingByID(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return nil, nil, false
	}
	if booking.RoomID != room.ID {
		respondServiceError(c, ctrl.Log, services.ErrBookingNotFound)
		return nil, nil, false
	}
	return room, booking, true
}

// GET /api/rooms/:id/bookings
func (ctrl *BookingController) GetRoomBookings(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookings, err := ctrl.Svc.FetchBookings(c.Request.Context(), roomID)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toBookingResponses(bookings))
}

// GET /api/bookings/:id
func (ctrl *BookingController) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.Svc.FetchBookingByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toBookingResponse(*booking))
}

// POST /api/rooms/:id/bookings
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	start, end, ok := ctrl.parseRange(c)
	if !ok {
		return
	}
	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), roomID)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}

	booking := models.NewBooking(start, end)
	if err := ctrl.Svc.CreateBooking(c.Request.Context(), booking, room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"booking": toBookingResponse(*booking),
		"room":    toRoomResponse(*room),
	})
}

// PUT /api/rooms/:id/bookings/:bookingId
func (ctrl *BookingController) UpdateBooking(c *gin.Context) {
	room, booking, ok := ctrl.loadRoomBooking(c)
	if !ok {
		return
	}
	start, end, ok := ctrl.parseRange(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.UpdateBooking(c.Request.Context(), booking, start, end, room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"booking": toBookingResponse(*booking),
		"room":    toRoomResponse(*room),
	})
}

// DELETE /api/rooms/:id/bookings/:bookingId
func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	room, booking, ok := ctrl.loadRoomBooking(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.DeleteBooking(c.Request.Context(), booking, room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toRoomResponse(*room))
}

// DELETE /api/rooms/:id/bookings
func (ctrl *BookingController) DeleteAllBookings(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), roomID)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	if err := ctrl.Svc.DeleteAllBookings(c.Request.Context(), room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toRoomResponse(*room))
}
