// internal/handlers/attendance_handler.go
package handlers

import (
	"errors"
	"net/http"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/geo"
	"attendance_backend/internal/matcher"
	"attendance_backend/internal/models"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	Service *attendance.Service
	Store   attendance.Store
}

func NewAttendanceHandler(svc *attendance.Service, store attendance.Store) *AttendanceHandler {
	return &AttendanceHandler{Service: svc, Store: store}
}

type PositionReq struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type CheckInReq struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	ShiftID   *uint    `json:"shift_id"`
	Note      string   `json:"note"`
}

// Authorize previews the geofence + shift decision without creating a
// record, so the client can prompt for a shift when several are open.
func (h *AttendanceHandler) Authorize(c *gin.Context) {
	var req PositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	companyID := c.GetUint("company_id")
	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}

	res, err := h.Service.Authorize(c.Request.Context(), userID, companyID, point)
	if err != nil {
		respondEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "authorization": authView(res)})
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req CheckInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	companyID := c.GetUint("company_id")
	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}

	rec, res, err := h.Service.CheckIn(c.Request.Context(), userID, companyID, point, req.ShiftID, req.Note)
	if err != nil {
		respondEngineError(c, err, &res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rec, "authorization": authView(res)})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req PositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	open, err := h.Service.OpenRecord(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			respondEngineError(c, attendance.ErrNotCheckedIn, nil)
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load open record"})
		return
	}

	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	rec, err := h.Service.CheckOut(c.Request.Context(), open.ID, h.Service.Now(), &point)
	if err != nil {
		respondEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rec})
}

// Today returns the caller's open record for the current day, if any.
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID := c.GetUint("user_id")
	rec, err := h.Service.OpenRecord(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "data": nil})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load open record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rec})
}

func (h *AttendanceHandler) History(c *gin.Context) {
	userID := c.GetUint("user_id")
	rows, err := h.Store.History(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// authView shapes a matcher result for clients.
func authView(res matcher.Result) gin.H {
	view := gin.H{
		"allowed": res.Allowed,
		"reason":  res.Reason,
	}
	if !res.Allowed {
		return view
	}
	view["mode"] = res.Mode
	view["within_location_ids"] = res.WithinIDs
	if res.Primary != nil {
		view["location"] = gin.H{"id": res.Primary.ID, "name": res.Primary.Name}
	}
	if res.Mode == models.ModeOnsite {
		view["shifts"] = shiftViews(res.Shifts)
		if res.Selected != nil {
			view["selected_shift_id"] = res.Selected.ID
		} else {
			view["shift_required"] = true
		}
	}
	return view
}

func shiftViews(list []models.Shift) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, sh := range list {
		out = append(out, gin.H{
			"id":         sh.ID,
			"name":       sh.Name,
			"start_time": sh.StartTime,
			"end_time":   sh.EndTime,
		})
	}
	return out
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses.
// When the failure was "pick a shift", the candidates ride along.
func respondEngineError(c *gin.Context, err error, res *matcher.Result) {
	body := gin.H{"error": reasonOf(err)}
	if res != nil && res.Allowed && res.Selected == nil && len(res.Shifts) > 1 {
		body["shift_required"] = true
		body["shifts"] = shiftViews(res.Shifts)
	}
	switch attendance.KindOf(err) {
	case attendance.KindPermissionDenied:
		c.JSON(http.StatusForbidden, body)
	case attendance.KindInvalidState:
		c.JSON(http.StatusConflict, body)
	case attendance.KindInvalidInput:
		c.JSON(http.StatusBadRequest, body)
	default:
		c.JSON(http.StatusServiceUnavailable, body)
	}
}

func reasonOf(err error) string {
	var e *attendance.Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
