package dto

import "time"

// Request DTOs

// CreateAppointmentRequest is also the body of a full update (PUT).
type CreateAppointmentRequest struct {
	Date         *time.Time `json:"date" validate:"required,future"`
	Professional *uint      `json:"professional" validate:"required"`
}

type UpdateAppointmentRequest struct {
	Date         *time.Time `json:"date" validate:"omitempty,future"`
	Professional *uint      `json:"professional" validate:"omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uint                  `json:"id"`
	Date               time.Time             `json:"date"`
	Professional       uint                  `json:"professional"`
	ProfessionalDetail *ProfessionalResponse `json:"professional_detail"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}
