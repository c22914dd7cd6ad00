package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"
)

type CreateRoomRequest struct {
	RoomNumber    *int     `json:"roomNumber" binding:"required,gt=0"`
	Type          string   `json:"type" binding:"required"`
	PricePerNight *float64 `json:"pricePerNight" binding:"required,gte=0"`
	IsOccupied    bool     `json:"isOccupied"`
	BedCount      *int     `json:"bedCount" binding:"required,gt=0"`
}

// UpdateRoomRequest only changes the fields that are present.
type UpdateRoomRequest struct {
	RoomNumber    *int     `json:"roomNumber" binding:"omitempty,gt=0"`
	Type          *string  `json:"type"`
	PricePerNight *float64 `json:"pricePerNight" binding:"omitempty,gte=0"`
	IsOccupied    *bool    `json:"isOccupied"`
	BedCount      *int     `json:"bedCount" binding:"omitempty,gt=0"`
}

type RoomController struct {
	Svc *services.ReservationService
	Log *zap.Logger
}

func NewRoomController(svc *services.ReservationService, log *zap.Logger) *RoomController {
	return &RoomController{Svc: svc, Log: log}
}

// GET /api/rooms
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.Svc.FetchRooms(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/rooms/:id
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toRoomResponse(*room))
}

// POST /api/rooms
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "please fill in all room fields correctly: "+err.Error())
		return
	}
	rt, err := models.ParseRoomType(req.Type)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRoomType", err.Error())
		return
	}

	room := &models.Room{
		RoomNumber:    *req.RoomNumber,
		Type:          rt,
		PricePerNight: *req.PricePerNight,
		IsOccupied:    req.IsOccupied,
		BedCount:      *req.BedCount,
	}
	if err := ctrl.Svc.CreateRoom(c.Request.Context(), room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, toRoomResponse(*room))
}

// PATCH|PUT /api/rooms/:id
func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "please fill in all room fields correctly: "+err.Error())
		return
	}

	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	if req.Type != nil {
		rt, err := models.ParseRoomType(*req.Type)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidRoomType", err.Error())
			return
		}
		room.Type = rt
	}
	if req.RoomNumber != nil {
		room.RoomNumber = *req.RoomNumber
	}
	if req.PricePerNight != nil {
		room.PricePerNight = *req.PricePerNight
	}
	if req.IsOccupied != nil {
		room.IsOccupied = *req.IsOccupied
	}
	if req.BedCount != nil {
		room.BedCount = *req.BedCount
	}

	if err := ctrl.Svc.UpdateRoom(c.Request.Context(), room); err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, toRoomResponse(*room))
}

// DELETE /api/rooms/:id
func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.Svc.FetchRoomByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	removed, err := ctrl.Svc.DeleteRoom(c.Request.Context(), room)
	if err != nil {
		respondServiceError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"id":              id.String(),
		"deletedBookings": removed,
	})
}
