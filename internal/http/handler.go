package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"traffic-care-service/internal/http/middleware"
	"traffic-care-service/internal/model"
	"traffic-care-service/internal/service"
)

// HealthFunc reports whether the state backend is reachable.
type HealthFunc func(ctx context.Context) error

type Handler struct {
	vehicleService  *service.VehicleService
	checkService    *service.CheckService
	testHarness     *service.TestHarness
	settingsService *service.SettingsService
	logbook         *service.Logbook
	health          HealthFunc
	log             zerolog.Logger
}

func NewHandler(
	vehicleService *service.VehicleService,
	checkService *service.CheckService,
	testHarness *service.TestHarness,
	settingsService *service.SettingsService,
	logbook *service.Logbook,
	health HealthFunc,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicleService:  vehicleService,
		checkService:    checkService,
		testHarness:     testHarness,
		settingsService: settingsService,
		logbook:         logbook,
		health:          health,
		log:             log,
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checking": h.checkService.Running()})
}

func (h *Handler) listVehicles(c *gin.Context) {
	records := h.vehicleService.List()

	if statusParam := c.Query("status"); statusParam != "" {
		wanted := make(map[model.VehicleStatus]bool)
		for _, val := range splitCSV(statusParam) {
			wanted[model.VehicleStatus(strings.ToLower(val))] = true
		}
		filtered := records[:0]
		for _, r := range records {
			if wanted[r.Vehicle.Status] {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	record, err := h.vehicleService.Get(strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) addVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Plate                string `json:"plate" binding:"required"`
		Email                string `json:"email"`
		NotificationsEnabled bool   `json:"notifications_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.vehicleService.Add(c.Request.Context(), service.AddVehicleInput{
		Plate:                req.Plate,
		Email:                req.Email,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().
		Str("operator", operatorName(principal)).
		Str("vehicle_id", result.Vehicle.Vehicle.ID).
		Str("plate", result.Vehicle.Vehicle.PlateNumber).
		Msg("vehicle added")

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) removeVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.vehicleService.Remove(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("operator", operatorName(principal)).Str("vehicle_id", id).Msg("vehicle removed")
	c.Status(http.StatusNoContent)
}

func (h *Handler) summarizeVehicle(c *gin.Context) {
	summary, err := h.vehicleService.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) runCheck(c *gin.Context) {
	var req struct {
		VehicleIDs []string `json:"vehicle_ids"`
		Forced     bool     `json:"forced"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
	}

	report, err := h.checkService.Run(c.Request.Context(), service.CheckRequest{
		VehicleIDs: req.VehicleIDs,
		Forced:     req.Forced,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) runTest(c *gin.Context) {
	var req struct {
		Plates      string `json:"plates"`
		TargetEmail string `json:"target_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.testHarness.Run(c.Request.Context(), service.TestRunInput{
		Plates:      req.Plates,
		TargetEmail: req.TargetEmail,
	}, func(line string) {
		h.log.Debug().Str("line", line).Msg("test run progress")
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.settingsService.Get()))
}

func (h *Handler) updateSettings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req model.CheckSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	saved, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("operator", operatorName(principal)).Msg("settings updated")
	c.JSON(http.StatusOK, successResponse(saved))
}

func (h *Handler) listLogs(c *gin.Context) {
	entries := h.logbook.List()

	categories := make(map[model.LogCategory]bool)
	for _, val := range splitCSV(c.Query("category")) {
		categories[model.LogCategory(strings.ToLower(val))] = true
	}
	types := make(map[model.LogType]bool)
	for _, val := range splitCSV(c.Query("type")) {
		types[model.LogType(strings.ToLower(val))] = true
	}

	if len(categories) > 0 || len(types) > 0 {
		filtered := make([]model.SystemLog, 0, len(entries))
		for _, e := range entries {
			if len(categories) > 0 && !categories[e.Category] {
				continue
			}
			if len(types) > 0 && !types[e.Type] {
				continue
			}
			filtered = append(filtered, e)
		}
		entries = filtered
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func (h *Handler) clearLogs(c *gin.Context) {
	if err := h.logbook.Clear(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrCheckInProgress):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func operatorName(p model.Principal) string {
	if p.IsAnonymous() {
		return "anonymous"
	}
	if p.Email != "" {
		return p.Email
	}
	return p.UserID
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
