package handler

import (
	"errors"
	"net/http"

	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/response"
	"clinical-scheduling/pkg/validator"
)

const (
	detailInvalidCredentials = "No active account found with the given credentials"
	detailInvalidToken       = "Token is invalid or expired"
	detailTokenBlacklisted   = "Token is blacklisted"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// ObtainToken handles login
// @Summary Obtain an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenObtainRequest true "Credentials"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 400 {object} response.FieldErrors
// @Failure 401 {object} response.Detail
// @Router /token/ [post]
func (h *AuthHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenObtainRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.ObtainToken(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			response.Unauthorized(w, detailInvalidCredentials)
			return
		}
		response.InternalServerError(w, "Failed to obtain token")
		return
	}

	response.Success(w, http.StatusOK, tokens)
}

// RefreshToken handles access token renewal
// @Summary Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRefreshRequest true "Refresh token"
// @Success 200 {object} dto.AccessTokenResponse
// @Failure 401 {object} response.Detail
// @Router /token/refresh/ [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	token, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		h.tokenError(w, err, "Failed to refresh token")
		return
	}

	response.Success(w, http.StatusOK, token)
}

// BlacklistToken handles logout by revoking the refresh token
// @Summary Revoke a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRefreshRequest true "Refresh token"
// @Success 200 {object} object
// @Failure 401 {object} response.Detail
// @Router /token/blacklist/ [post]
func (h *AuthHandler) BlacklistToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, invalidBody)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.authUsecase.BlacklistToken(r.Context(), &req); err != nil {
		h.tokenError(w, err, "Failed to blacklist token")
		return
	}

	response.Success(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) tokenError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidToken):
		response.Unauthorized(w, detailInvalidToken)
	case errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, detailTokenBlacklisted)
	default:
		response.InternalServerError(w, fallback)
	}
}
