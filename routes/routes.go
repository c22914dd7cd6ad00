package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-reservation/controllers"
	"hotel-reservation/middleware"
)

// SetupRouter wires the controllers onto /api.
func SetupRouter(
	rc *controllers.RoomController,
	bc *controllers.BookingController,
	origins []string,
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.POST("", rc.CreateRoom)
			rooms.GET("/:id", rc.GetRoom)
			rooms.PATCH("/:id", rc.UpdateRoom)
			rooms.PUT("/:id", rc.UpdateRoom)
			rooms.DELETE("/:id", rc.DeleteRoom)

			rooms.GET("/:id/bookings", bc.GetRoomBookings)
			rooms.POST("/:id/bookings", bc.CreateBooking)
			rooms.DELETE("/:id/bookings", bc.DeleteAllBookings)
			rooms.PUT("/:id/bookings/:bookingId", bc.UpdateBooking)
			rooms.DELETE("/:id/bookings/:bookingId", bc.DeleteBooking)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("/:id", bc.GetBooking)
		}
	}

	return r
}
