package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tablebook/internal/venue/service"
	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

type TableHandler struct {
	service service.TableService
	log     *logger.Logger
}

func NewTableHandler(service service.TableService, log *logger.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		log:     log,
	}
}

// tableKey pulls the (zone, id) pair that identifies a table out of the
// route parameters.
func tableKey(ps httprouter.Params) (int, string, error) {
	zone := strings.TrimSpace(ps.ByName("zone"))
	idStr := ps.ByName("id")

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, "", apperrors.InvalidInput("invalid table ID: " + idStr)
	}
	if zone == "" {
		return 0, "", apperrors.InvalidInput("zone parameter is required")
	}
	return id, zone, nil
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var table model.Table
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &table); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, table); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TableHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if zone := strings.TrimSpace(r.URL.Query().Get("zone")); zone != "" {
		tables, err := h.service.GetByZone(r.Context(), zone)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		if err := httputil.WriteSuccess(w, tables); err != nil {
			h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	tables, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, tables, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *TableHandler) GetByIDZone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, zone, err := tableKey(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByIDZone", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	table, err := h.service.GetByIDZone(r.Context(), id, zone)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByIDZone", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, table); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByIDZone", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, zone, err := tableKey(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var updates model.TableUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, zone, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, zone, err := tableKey(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Delete(r.Context(), id, zone); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TableHandler) ToggleActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, zone, err := tableKey(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleActive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	table, err := h.service.ToggleActive(r.Context(), id, zone)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleActive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, table); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleActive", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tables", h.Create)
	router.GET("/api/v1/tables", h.GetAll)
	router.GET("/api/v1/tables/zone/:zone/id/:id", h.GetByIDZone)
	router.PATCH("/api/v1/tables/zone/:zone/id/:id", h.Update)
	router.DELETE("/api/v1/tables/zone/:zone/id/:id", h.Delete)
	router.POST("/api/v1/tables/zone/:zone/id/:id/toggle-active", h.ToggleActive)
}
