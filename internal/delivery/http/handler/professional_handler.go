package handler

import (
	"errors"
	"net/http"

	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/response"
	"clinical-scheduling/pkg/validator"
)

type ProfessionalHandler struct {
	professionalUsecase usecase.ProfessionalUsecase
	validator           *validator.CustomValidator
}

func NewProfessionalHandler(professionalUsecase usecase.ProfessionalUsecase, validator *validator.CustomValidator) *ProfessionalHandler {
	return &ProfessionalHandler{
		professionalUsecase: professionalUsecase,
		validator:           validator,
	}
}

func (h *ProfessionalHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfessionalRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	req.Normalize()
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	professional, err := h.professionalUsecase.CreateProfessional(r.Context(), &req)
	if err != nil {
		response.InternalServerError(w, "Failed to create professional")
		return
	}

	response.Success(w, http.StatusCreated, professional)
}

func (h *ProfessionalHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	professional, err := h.professionalUsecase.GetProfessional(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrProfessionalNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to get professional")
		return
	}

	response.Success(w, http.StatusOK, professional)
}

func (h *ProfessionalHandler) GetAllProfessionals(w http.ResponseWriter, r *http.Request) {
	professionals, err := h.professionalUsecase.GetAllProfessionals(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get professionals")
		return
	}

	response.Success(w, http.StatusOK, professionals)
}

// UpdateProfessional replaces the record (PUT): every required field must be present.
func (h *ProfessionalHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfessionalRequest
	h.update(w, r, &req, func() *dto.UpdateProfessionalRequest {
		return (*dto.UpdateProfessionalRequest)(&req)
	})
}

// PatchProfessional updates only the supplied fields.
func (h *ProfessionalHandler) PatchProfessional(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfessionalRequest
	h.update(w, r, &req, func() *dto.UpdateProfessionalRequest {
		return &req
	})
}

type normalizer interface {
	Normalize()
}

func (h *ProfessionalHandler) update(w http.ResponseWriter, r *http.Request, req normalizer, changes func() *dto.UpdateProfessionalRequest) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	// A missing professional is reported before anything about the body.
	if _, err := h.professionalUsecase.GetProfessional(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrProfessionalNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to update professional")
		return
	}

	if err := decodeJSON(r, req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	req.Normalize()
	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	professional, err := h.professionalUsecase.UpdateProfessional(r.Context(), id, changes())
	if err != nil {
		if errors.Is(err, usecase.ErrProfessionalNotFound) {
			response.NotFound(w, "")
			return
		}
		response.InternalServerError(w, "Failed to update professional")
		return
	}

	response.Success(w, http.StatusOK, professional)
}

func (h *ProfessionalHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.NotFound(w, "")
		return
	}

	err := h.professionalUsecase.DeleteProfessional(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProfessionalNotFound):
			response.NotFound(w, "")
		case errors.Is(err, usecase.ErrProfessionalInUse):
			response.Conflict(w, "Cannot delete a professional that has appointments.")
		default:
			response.InternalServerError(w, "Failed to delete professional")
		}
		return
	}

	response.NoContent(w)
}
