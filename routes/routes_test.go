package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotel-reservation/config"
	"hotel-reservation/controllers"
	"hotel-reservation/locks"
	"hotel-reservation/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDatabase(config.DBConfig{
		Driver:   "sqlite",
		Path:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	svc := services.NewReservationService(db, locks.NewLocalLocker(), nil, log)
	bc := controllers.NewBookingController(svc, log)
	bc.Now = func() time.Time { return time.Date(2030, 1, 1, 15, 0, 0, 0, time.UTC) }

	return &testServer{t: t, router: SetupRouter(controllers.NewRoomController(svc, log), bc, []string{"*"}, log)}
}

func (s *testServer) do(method, path string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (s *testServer) createRoom(number int) controllers.RoomResponse {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/rooms", gin.H{
		"roomNumber": number, "type": "Double", "pricePerNight": 1500, "bedCount": 2,
	})
	if code != http.StatusCreated {
		s.t.Fatalf("create room status = %d, body = %+v", code, env)
	}
	var room controllers.RoomResponse
	if err := json.Unmarshal(env.Data, &room); err != nil {
		s.t.Fatal(err)
	}
	return room
}

type bookingResult struct {
	Booking controllers.BookingResponse `json:"booking"`
	Room    controllers.RoomResponse    `json:"room"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     gin.H
		wantCode string
	}{
		{"missing number", gin.H{"type": "Single", "pricePerNight": 100, "bedCount": 1}, "error.invalidPayload"},
		{"zero beds", gin.H{"roomNumber": 1, "type": "Single", "pricePerNight": 100, "bedCount": 0}, "error.invalidPayload"},
		{"negative price", gin.H{"roomNumber": 1, "type": "Single", "pricePerNight": -1, "bedCount": 1}, "error.invalidPayload"},
		{"unknown type", gin.H{"roomNumber": 1, "type": "Penthouse", "pricePerNight": 100, "bedCount": 1}, "error.invalidRoomType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/api/rooms", tt.body)
			if code != http.StatusBadRequest || env.Success || env.Error.Code != tt.wantCode {
				t.Fatalf("got %d %+v, want 400 %s", code, env, tt.wantCode)
			}
		})
	}
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.createRoom(202)
	room := s.createRoom(101)

	code, env := s.do(http.MethodGet, "/api/rooms", nil)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	var rooms []controllers.RoomResponse
	if err := json.Unmarshal(env.Data, &rooms); err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 || rooms[0].RoomNumber != 101 {
		t.Fatalf("rooms = %+v, want 101 first", rooms)
	}

	code, env = s.do(http.MethodPatch, "/api/rooms/"+room.ID, gin.H{"isOccupied": true, "type": "Suite"})
	if code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %+v", code, env)
	}
	var updated controllers.RoomResponse
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if !updated.IsOccupied || updated.Type != "Suite" || updated.BedCount != 2 {
		t.Fatalf("updated = %+v", updated)
	}

	code, _ = s.do(http.MethodDelete, "/api/rooms/"+room.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete status = %d", code)
	}
	code, env = s.do(http.MethodGet, "/api/rooms/"+room.ID, nil)
	if code != http.StatusNotFound || env.Error.Code != "error.roomNotFound" {
		t.Fatalf("get deleted room: %d %+v", code, env)
	}
}

func TestRoomBadID(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/rooms/not-a-uuid", nil)
	if code != http.StatusBadRequest || env.Error.Code != "error.invalidId" {
		t.Fatalf("got %d %+v", code, env)
	}
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	room := s.createRoom(101)
	base := "/api/rooms/" + room.ID + "/bookings"

	code, env := s.do(http.MethodPost, base, gin.H{"startDate": "2030-01-10", "endDate": "2030-01-12"})
	if code != http.StatusCreated {
		t.Fatalf("create booking: %d %+v", code, env)
	}
	var first bookingResult
	if err := json.Unmarshal(env.Data, &first); err != nil {
		t.Fatal(err)
	}
	if first.Booking.Nights != 2 || first.Booking.StartDate != "2030-01-10" || len(first.Room.Bookings) != 1 {
		t.Fatalf("unexpected create result: %+v", first)
	}

	// shares the boundary day
	code, env = s.do(http.MethodPost, base, gin.H{"startDate": "2030-01-12", "endDate": "2030-01-14"})
	if code != http.StatusConflict || env.Error.Code != "error.overlappingBooking" {
		t.Fatalf("overlap: %d %+v", code, env)
	}

	code, env = s.do(http.MethodPost, base, gin.H{"startDate": "2030-01-13", "endDate": "2030-01-14"})
	if code != http.StatusCreated {
		t.Fatalf("adjacent free day: %d %+v", code, env)
	}
	var second bookingResult
	if err := json.Unmarshal(env.Data, &second); err != nil {
		t.Fatal(err)
	}

	code, env = s.do(http.MethodPut, base+"/"+first.Booking.ID, gin.H{"startDate": "2030-01-10", "endDate": "2030-01-12"})
	if code != http.StatusOK {
		t.Fatalf("update to same dates: %d %+v", code, env)
	}
	code, env = s.do(http.MethodPut, base+"/"+first.Booking.ID, gin.H{"startDate": "2030-01-10", "endDate": "2030-01-13"})
	if code != http.StatusConflict {
		t.Fatalf("update into conflict: %d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, "/api/bookings/"+second.Booking.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("get booking: %d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, base, nil)
	var list []controllers.BookingResponse
	if err := json.Unmarshal(env.Data, &list); err != nil || code != http.StatusOK || len(list) != 2 {
		t.Fatalf("list bookings: %d %s %v", code, env.Data, err)
	}

	code, _ = s.do(http.MethodDelete, base+"/"+second.Booking.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete booking: %d", code)
	}
	code, env = s.do(http.MethodGet, "/api/bookings/"+second.Booking.ID, nil)
	if code != http.StatusNotFound || env.Error.Code != "error.bookingNotFound" {
		t.Fatalf("deleted booking: %d %+v", code, env)
	}

	code, env = s.do(http.MethodDelete, base, nil)
	if code != http.StatusOK {
		t.Fatalf("clear bookings: %d %+v", code, env)
	}
	var cleared controllers.RoomResponse
	if err := json.Unmarshal(env.Data, &cleared); err != nil || len(cleared.Bookings) != 0 {
		t.Fatalf("cleared room: %+v %v", cleared, err)
	}
}

func TestBookingValidation(t *testing.T) {
	s := newTestServer(t)
	room := s.createRoom(101)
	base := "/api/rooms/" + room.ID + "/bookings"

	tests := []struct {
		name     string
		body     gin.H
		wantCode string
	}{
		{"missing end", gin.H{"startDate": "2030-02-01"}, "error.invalidPayload"},
		{"bad format", gin.H{"startDate": "01/02/2030", "endDate": "2030-02-03"}, "error.invalidDate"},
		{"end before start", gin.H{"startDate": "2030-02-05", "endDate": "2030-02-03"}, "error.invalidDateRange"},
		{"same day", gin.H{"startDate": "2030-02-05", "endDate": "2030-02-05"}, "error.invalidDateRange"},
		{"in the past", gin.H{"startDate": "2029-12-31", "endDate": "2030-01-02"}, "error.dateInPast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, base, tt.body)
			if code != http.StatusBadRequest || env.Error.Code != tt.wantCode {
				t.Fatalf("got %d %+v, want 400 %s", code, env, tt.wantCode)
			}
		})
	}

	// today is allowed
	code, env := s.do(http.MethodPost, base, gin.H{"startDate": "2030-01-01", "endDate": "2030-01-02"})
	if code != http.StatusCreated {
		t.Fatalf("booking from today: %d %+v", code, env)
	}

	code, env = s.do(http.MethodPost, "/api/rooms/"+uuid.NewString()+"/bookings", gin.H{"startDate": "2030-03-01", "endDate": "2030-03-02"})
	if code != http.StatusNotFound || env.Error.Code != "error.roomNotFound" {
		t.Fatalf("unknown room: %d %+v", code, env)
	}
}

func TestBookingMustBelongToRoom(t *testing.T) {
	s := newTestServer(t)
	a := s.createRoom(101)
	b := s.createRoom(102)

	code, env := s.do(http.MethodPost, "/api/rooms/"+a.ID+"/bookings", gin.H{"startDate": "2030-01-10", "endDate": "2030-01-12"})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env)
	}
	var res bookingResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}

	code, env = s.do(http.MethodDelete, "/api/rooms/"+b.ID+"/bookings/"+res.Booking.ID, nil)
	if code != http.StatusNotFound || env.Error.Code != "error.bookingNotFound" {
		t.Fatalf("cross-room delete: %d %+v", code, env)
	}
}

func TestDeleteRoomRemovesBookings(t *testing.T) {
	s := newTestServer(t)
	room := s.createRoom(101)
	code, env := s.do(http.MethodPost, "/api/rooms/"+room.ID+"/bookings", gin.H{"startDate": "2030-01-10", "endDate": "2030-01-12"})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env)
	}
	var res bookingResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}

	code, env = s.do(http.MethodDelete, "/api/rooms/"+room.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete room: %d %+v", code, env)
	}
	var body struct {
		DeletedBookings int `json:"deletedBookings"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil || body.DeletedBookings != 1 {
		t.Fatalf("delete body = %s, err %v", env.Data, err)
	}

	code, _ = s.do(http.MethodGet, "/api/bookings/"+res.Booking.ID, nil)
	if code != http.StatusNotFound {
		t.Fatalf("booking survived room delete: %d", code)
	}
}
