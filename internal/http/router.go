package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"greenbus/backend/internal/config"
	"greenbus/backend/internal/domain"
	h "greenbus/backend/internal/http/handlers"
	"greenbus/backend/internal/http/middleware"
)

func NewRouter(db *sql.DB, env config.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	deps := h.NewDeps(db, env)
	auth := middleware.Auth(env.JWTSecret)
	operators := middleware.RequireRoles(domain.RoleSupervisor, domain.RoleAdmin)
	drivers := middleware.RequireRoles(domain.RoleDriver, domain.RoleSupervisor, domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", deps.DBCheck)

		api.POST("/auth/login", deps.Login)

		// Capture devices: taps and offline queue replay.
		nfc := api.Group("/nfc", auth, operators)
		nfc.POST("/tap-in", deps.TapIn)
		nfc.POST("/tap-out", deps.TapOut)
		nfc.POST("/sync", deps.Sync)

		tickets := api.Group("/tickets", auth)
		tickets.POST("/manual", operators, deps.CreateManualTicket)
		tickets.GET("/:id", operators, deps.GetTicket)
		tickets.GET("/:id/receipt", operators, deps.TicketReceipt)

		cards := api.Group("/cards", auth)
		cards.GET("/:card_id", deps.GetCard)
		cards.POST("/topup", deps.TopUp)

		api.POST("/admin/balance", auth, middleware.RequireRoles(domain.RoleAdmin), deps.AdminAdjustBalance)

		api.POST("/bookings", auth, deps.BookSeat)
		api.GET("/supervisor/bookings", auth,
			middleware.RequireRoles(domain.RoleSupervisor, domain.RoleAdmin), deps.SupervisorBookings)

		driver := api.Group("/driver", auth, drivers)
		driver.POST("/buses/:id/arrive", deps.DriverArrive)
		driver.POST("/buses/:id/complete", deps.DriverComplete)
	}

	return r
}
