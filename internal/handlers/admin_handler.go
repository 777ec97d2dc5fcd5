// internal/handlers/admin_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/shifts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler { return &AdminHandler{DB: db} }

type InviteReq struct {
	MinutesValid int `json:"minutes_valid"`
}

func (h *AdminHandler) GenerateInvite(c *gin.Context) {
	var req InviteReq
	_ = c.ShouldBindJSON(&req)
	if req.MinutesValid <= 0 {
		req.MinutesValid = 60
	}

	companyID := c.GetUint("company_id")
	adminID := c.GetUint("user_id")

	token := uuid.NewString()
	inv := models.InviteToken{
		CompanyID: companyID,
		Token:     token,
		Status:    models.InviteUnused,
		ExpiresAt: time.Now().Add(time.Duration(req.MinutesValid) * time.Minute),
		CreatedBy: adminID,
	}

	if err := h.DB.Create(&inv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create invite failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token, "expires_at": inv.ExpiresAt})
}

func (h *AdminHandler) ListPendingEmployees(c *gin.Context) {
	companyID := c.GetUint("company_id")

	var rows []models.User
	if err := h.DB.Where("company_id = ? AND role = ? AND status = ?",
		companyID, models.RoleEmployee, models.StatusPending).
		Order("created_at asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

func (h *AdminHandler) ApproveEmployee(c *gin.Context) {
	u, ok := h.companyUser(c)
	if !ok {
		return
	}

	u.Status = models.StatusActive
	if err := h.DB.Save(u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) RejectEmployee(c *gin.Context) {
	u, ok := h.companyUser(c)
	if !ok {
		return
	}

	u.Status = models.StatusRejected
	if err := h.DB.Save(u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ResetDeviceBinding(c *gin.Context) {
	u, ok := h.companyUser(c)
	if !ok {
		return
	}

	u.BoundDeviceID = ""
	if err := h.DB.Save(u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// =========================
// Attendance permissions
// =========================

type AssignLocationsReq struct {
	AllowedLocationIDs []uint `json:"allowed_location_ids"`
	AllowOutside       bool   `json:"allow_outside"`
}

// AssignLocations sets which geofences an employee may check in at and
// whether offsite check-in is permitted.
func (h *AdminHandler) AssignLocations(c *gin.Context) {
	u, ok := h.companyUser(c)
	if !ok {
		return
	}

	var req AssignLocationsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	companyID := c.GetUint("company_id")
	if len(req.AllowedLocationIDs) > 0 {
		var count int64
		if err := h.DB.Model(&models.Location{}).
			Where("company_id = ? AND id IN ?", companyID, req.AllowedLocationIDs).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if count != int64(len(req.AllowedLocationIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown location id"})
			return
		}
	}

	u.AllowedLocationIDs = models.UintSlice(req.AllowedLocationIDs)
	u.AllowOutside = req.AllowOutside
	if err := h.DB.Save(u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assign failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// =========================
// Location management
// =========================

type ShiftReq struct {
	Name                 string  `json:"name" binding:"required"`
	StartTime            string  `json:"start_time" binding:"required"`
	EndTime              string  `json:"end_time" binding:"required"`
	GraceMinutes         int     `json:"grace_minutes"`
	LateToleranceMinutes int     `json:"late_tolerance_minutes"`
	StandardHours        float64 `json:"standard_hours"`
}

type LocationReq struct {
	Name         string             `json:"name" binding:"required"`
	Latitude     *float64           `json:"latitude" binding:"required"`
	Longitude    *float64           `json:"longitude" binding:"required"`
	RadiusMeters float64            `json:"radius_meters" binding:"required"`
	Hours        models.WeeklyHours `json:"hours"`
	Shifts       []ShiftReq         `json:"shifts"`
}

func (h *AdminHandler) CreateLocation(c *gin.Context) {
	var req LocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	if req.RadiusMeters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be positive"})
		return
	}
	if msg := validateHours(req.Hours); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	for _, sh := range req.Shifts {
		if sh.GraceMinutes < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "grace minutes must not be negative"})
			return
		}
		if _, err := shifts.ParseClock(sh.StartTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, err := shifts.ParseClock(sh.EndTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	companyID := c.GetUint("company_id")
	loc := models.Location{
		CompanyID:    companyID,
		Name:         strings.TrimSpace(req.Name),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.RadiusMeters,
		Active:       true,
		Hours:        req.Hours,
	}
	for i, sh := range req.Shifts {
		loc.Shifts = append(loc.Shifts, models.Shift{
			Position:             i,
			Name:                 strings.TrimSpace(sh.Name),
			StartTime:            sh.StartTime,
			EndTime:              sh.EndTime,
			GraceMinutes:         sh.GraceMinutes,
			LateToleranceMinutes: sh.LateToleranceMinutes,
			StandardHours:        sh.StandardHours,
		})
	}

	if err := h.DB.Create(&loc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create location failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": loc})
}

func (h *AdminHandler) ListLocations(c *gin.Context) {
	companyID := c.GetUint("company_id")

	var rows []models.Location
	if err := h.DB.Preload("Shifts", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Where("company_id = ?", companyID).
		Order("id asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// SetLocationActive toggles a geofence without deleting its history.
func (h *AdminHandler) SetLocationActive(c *gin.Context) {
	companyID := c.GetUint("company_id")

	idStr := strings.TrimSpace(c.Param("id"))
	id64, _ := strconv.ParseUint(idStr, 10, 64)

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	result := h.DB.Model(&models.Location{}).
		Where("company_id = ? AND id = ?", companyID, uint(id64)).
		Update("active", *req.Active)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateHours(hours models.WeeklyHours) string {
	for _, day := range hours {
		if day.Closed || (day.Open == "" && day.Close == "") {
			continue
		}
		if _, err := shifts.ParseClock(day.Open); err != nil {
			return err.Error()
		}
		if _, err := shifts.ParseClock(day.Close); err != nil {
			return err.Error()
		}
	}
	return ""
}

// companyUser loads the :id user scoped to the caller's company, writing the
// error response itself when that fails.
func (h *AdminHandler) companyUser(c *gin.Context) (*models.User, bool) {
	companyID := c.GetUint("company_id")

	idStr := strings.TrimSpace(c.Param("id"))
	id64, _ := strconv.ParseUint(idStr, 10, 64)

	var u models.User
	if err := h.DB.Where("company_id = ? AND id = ?", companyID, uint(id64)).First(&u).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
		return nil, false
	}
	return &u, true
}
