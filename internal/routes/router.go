// internal/routes/router.go
package routes

import (
	"attendance_backend/internal/attendance"
	"attendance_backend/internal/handlers"
	"attendance_backend/internal/middleware"
	"attendance_backend/internal/sweep"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, svc *attendance.Service, store attendance.Store, sweeper *sweep.Sweeper) *gin.Engine {
	r := gin.Default()

	authH := handlers.NewAuthHandler(db)
	adminH := handlers.NewAdminHandler(db)
	attH := handlers.NewAttendanceHandler(svc, store)
	excH := handlers.NewExceptionHandler(svc, store, sweeper)

	r.GET("/health", handlers.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/admin/register", authH.RegisterAdmin)
		api.POST("/auth/employee/register", authH.RegisterEmployee)
		api.POST("/auth/totp/verify", authH.VerifyTOTPSetup)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", middleware.AuthRequired(), authH.Logout)
	}

	att := r.Group("/api/v1/attendance")
	att.Use(middleware.AuthRequired())
	{
		att.POST("/authorize", attH.Authorize)
		att.POST("/checkin", attH.CheckIn)
		att.POST("/checkout", attH.CheckOut)
		att.GET("/me/today", attH.Today)
		att.GET("/me/history", attH.History)
	}

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin())
	{
		admin.POST("/invite", adminH.GenerateInvite)
		admin.GET("/employees/pending", adminH.ListPendingEmployees)
		admin.POST("/employees/:id/approve", adminH.ApproveEmployee)
		admin.POST("/employees/:id/reject", adminH.RejectEmployee)
		admin.POST("/employees/:id/reset-device", adminH.ResetDeviceBinding)
		admin.POST("/employees/:id/locations", adminH.AssignLocations)

		admin.POST("/locations", adminH.CreateLocation)
		admin.GET("/locations", adminH.ListLocations)
		admin.POST("/locations/:id/active", adminH.SetLocationActive)

		admin.GET("/attendance/forgotten", excH.ForgottenCheckouts)
		admin.GET("/attendance/overtime", excH.OvertimeApprovals)
		admin.POST("/attendance/:id/resolve", excH.Resolve)
		admin.POST("/attendance/sweep", excH.RunSweep)
	}

	return r
}
