package router

import (
	"github.com/expendio/foh-app/controllers"
	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/middlewares"
	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

// Deps carries everything the route table needs. Services are constructed in
// main (or in tests) and injected; the router holds no state of its own.
type Deps struct {
	Floor    *services.FloorService
	OTP      *services.OTPService
	Reports  *services.ReportService
	Insights *services.InsightsService
	Hub      *hub.Hub
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(deps.OTP)
	tableCtrl := controllers.NewTableController(deps.Floor)
	checkInCtrl := controllers.NewCheckInController(deps.Floor)
	visitCtrl := controllers.NewVisitController(deps.Floor)
	reservationCtrl := controllers.NewReservationController(deps.Floor)
	reportCtrl := controllers.NewReportController(deps.Reports, deps.Insights)
	wsCtrl := controllers.NewWSController(deps.Hub)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, 200, "pong", nil)
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------

	// Login endpoints sit behind the strict limiter: passcodes are short.
	limited := r.Group("/")
	limited.Use(middlewares.NewStrictRateLimiter())
	{
		limited.POST("/login", authCtrl.StaffLogin)
		limited.POST("/auth/otp/start", authCtrl.StartOTP)
		limited.POST("/auth/otp/verify", authCtrl.VerifyOTP)
	}

	// QR check-in flow, no session needed.
	r.GET("/checkin/table", checkInCtrl.ResolveTable)
	r.POST("/checkin", checkInCtrl.CheckIn)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(utils.RoleStaff))
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.POST("/tables", tableCtrl.CreateTable)
		staff.GET("/tables/qr", tableCtrl.GetTableQRCodes)
		staff.GET("/tables/:table_id", tableCtrl.GetTableDetail)

		staff.POST("/visits/:visit_id/release", visitCtrl.ReleaseTable)

		staff.GET("/reservations", reservationCtrl.GetUpcoming)
		staff.POST("/reservations", reservationCtrl.Create)
		staff.POST("/reservations/:reservation_id/cancel", reservationCtrl.Cancel)
		staff.POST("/reservations/:reservation_id/arrived", reservationCtrl.MarkArrived)

		staff.GET("/reports/visits", reportCtrl.GetVisits)
		staff.GET("/reports/visits.csv", reportCtrl.ExportCSV)
		staff.POST("/reports/insights", reportCtrl.AskInsights)

		// Dashboard live feed; the token rides the query string here.
		staff.GET("/ws", wsCtrl.Handler)
	}

	return r
}
