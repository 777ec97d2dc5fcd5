// internal/handlers/exception_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/sweep"

	"github.com/gin-gonic/gin"
)

// ExceptionHandler exposes the two pending-approval queues, the manual
// resolution path, and the sweep trigger. The queues are pure views: all
// state lives on the attendance records.
type ExceptionHandler struct {
	Service *attendance.Service
	Store   attendance.Store
	Sweeper *sweep.Sweeper
}

func NewExceptionHandler(svc *attendance.Service, store attendance.Store, sw *sweep.Sweeper) *ExceptionHandler {
	return &ExceptionHandler{Service: svc, Store: store, Sweeper: sw}
}

// ForgottenCheckouts lists records the sweep auto-closed.
func (h *ExceptionHandler) ForgottenCheckouts(c *gin.Context) {
	companyID := c.GetUint("company_id")
	rows, err := h.Store.Pending(c.Request.Context(), companyID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

// OvertimeApprovals lists records whose checkout ran past the close-time
// tolerance and await an overtime decision.
func (h *ExceptionHandler) OvertimeApprovals(c *gin.Context) {
	companyID := c.GetUint("company_id")
	rows, err := h.Store.Pending(c.Request.Context(), companyID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rows})
}

type ResolveReq struct {
	CheckOutAt      time.Time `json:"check_out_at" binding:"required"`
	Reason          string    `json:"reason" binding:"required"`
	ApproveOvertime bool      `json:"approve_overtime"`
}

// Resolve applies a manual checkout decision to a pending (or still open)
// record. Retrying an identical resolution is a no-op.
func (h *ExceptionHandler) Resolve(c *gin.Context) {
	idStr := strings.TrimSpace(c.Param("id"))
	id64, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	var req ResolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}

	approverID := c.GetUint("user_id")
	rec, err := h.Service.ResolvePending(c.Request.Context(), uint(id64), req.CheckOutAt, approverID, req.Reason, req.ApproveOvertime)
	if err != nil {
		respondEngineError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": rec})
}

// RunSweep triggers the auto-close batch. ?dry_run=true reports what would
// be closed without touching anything.
func (h *ExceptionHandler) RunSweep(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"
	report, err := h.Sweeper.Run(c.Request.Context(), dryRun)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "report": report})
}
