package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/response"

	"github.com/google/uuid"
)

const maxAuditPageSize = 500

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	entry, err := h.auditLogUsecase.GetAuditEntry(r.Context(), int64(id))
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, entry)
}

// ListAuditTrail filters on ?action=, ?entity_type=, ?entity_id=, ?user= and
// pages with ?before= and ?limit=.
func (h *AuditLogHandler) ListAuditTrail(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseAuditFilter(r)
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	page, err := h.auditLogUsecase.ListAuditTrail(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, page)
}

// History serves the change history of one record of the given type.
func (h *AuditLogHandler) History(entityType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.NotFound(w, "")
			return
		}

		history, err := h.auditLogUsecase.GetRecordHistory(r.Context(), entityType, id)
		if err != nil {
			if errors.Is(err, usecase.ErrNoHistory) {
				response.NotFound(w, "")
				return
			}
			response.InternalServerError(w, "Failed to get history")
			return
		}

		response.Success(w, http.StatusOK, history)
	}
}

func parseAuditFilter(r *http.Request) (entity.AuditLogFilter, response.FieldErrors) {
	query := r.URL.Query()
	errs := response.FieldErrors{}
	filter := entity.AuditLogFilter{
		Action:     query.Get("action"),
		EntityType: query.Get("entity_type"),
		EntityID:   query.Get("entity_id"),
	}

	if raw := query.Get("user"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			errs.Add("user", "Must be a valid UUID.")
		} else {
			filter.UserID = &userID
		}
	}

	if raw := query.Get("before"); raw != "" {
		before, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || before < 1 {
			errs.Add("before", "Ensure this value is a positive whole number.")
		} else {
			filter.Before = before
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			errs.Add("limit", "Ensure this value is a positive whole number.")
		} else {
			filter.Limit = min(limit, maxAuditPageSize)
		}
	}

	return filter, errs
}
