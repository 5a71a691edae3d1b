package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/response"
	"clinical-scheduling/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func unknownProfessionalMessage(id uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func unknownProfessional(w http.ResponseWriter, id uint) {
	errs := response.FieldErrors{}
	errs.Add("professional", unknownProfessionalMessage(id))
	response.ValidationError(w, errs)
}

// validate reports rule failures and an unknown professional together.
func (h *AppointmentHandler) validate(ctx context.Context, req interface{}, professional *uint) (response.FieldErrors, error) {
	errs := response.FieldErrors{}
	if err := h.validator.Validate(req); err != nil {
		errs = h.validator.FormatValidationErrors(err)
	}

	if professional != nil {
		err := h.appointmentUsecase.CheckProfessional(ctx, *professional)
		switch {
		case errors.Is(err, usecase.ErrUnknownProfessional):
			errs.Add("professional", unknownProfessionalMessage(*professional))
		case err != nil:
			return nil, err
		}
	}

	return errs, nil
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	errs, err := h.validate(r.Context(), &req, req.Professional)
	if err != nil {
		response.InternalServerError(w, "Failed to create appointment")
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownProfessional) {
			unknownProfessional(w, *req.Professional)
			return
		}
		response.InternalServerError(w, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrAppointmentNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, appointment)
}

// GetAllAppointments lists appointments, narrowed by ?professional_id= when given.
func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	var filter entity.AppointmentFilter
	if raw := r.URL.Query().Get("professional_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
		if err != nil {
			errs := response.FieldErrors{}
			errs.Add("professional_id", "Enter a whole number.")
			response.ValidationError(w, errs)
			return
		}
		professionalID := uint(id)
		filter.ProfessionalID = &professionalID
	}

	appointments, err := h.appointmentUsecase.GetAllAppointments(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, appointments)
}

// UpdateAppointment replaces the appointment (PUT).
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	h.update(w, r, &req, func() *dto.UpdateAppointmentRequest {
		return (*dto.UpdateAppointmentRequest)(&req)
	})
}

// PatchAppointment changes only the supplied fields.
func (h *AppointmentHandler) PatchAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAppointmentRequest
	h.update(w, r, &req, func() *dto.UpdateAppointmentRequest {
		return &req
	})
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request, req interface{}, changes func() *dto.UpdateAppointmentRequest) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	// A missing appointment is reported before anything about the body.
	if _, err := h.appointmentUsecase.GetAppointment(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrAppointmentNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to update appointment")
		return
	}

	if err := decodeJSON(r, req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	update := changes()
	errs, err := h.validate(r.Context(), req, update.Professional)
	if err != nil {
		response.InternalServerError(w, "Failed to update appointment")
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "")
		case errors.Is(err, usecase.ErrUnknownProfessional) && update.Professional != nil:
			unknownProfessional(w, *update.Professional)
		default:
			response.InternalServerError(w, "Failed to update appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	err := h.appointmentUsecase.DeleteAppointment(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrAppointmentNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to delete appointment")
		return
	}

	response.NoContent(w)
}
