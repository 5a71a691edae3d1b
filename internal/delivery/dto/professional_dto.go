package dto

import (
	"strings"
	"time"
)

// Request DTOs

// CreateProfessionalRequest is also the body of a full update (PUT).
type CreateProfessionalRequest struct {
	SocialName *string `json:"social_name" validate:"required,notblank,min=3,max=200"`
	Profession *string `json:"profession" validate:"required,notblank,min=3"`
	Address    *string `json:"address"`
	Contact    *string `json:"contact" validate:"required,notblank,contact"`
}

// UpdateProfessionalRequest is a partial update (PATCH): absent fields are left alone.
type UpdateProfessionalRequest struct {
	SocialName *string `json:"social_name" validate:"omitempty,notblank,min=3,max=200"`
	Profession *string `json:"profession" validate:"omitempty,notblank,min=3"`
	Address    *string `json:"address"`
	Contact    *string `json:"contact" validate:"omitempty,notblank,contact"`
}

func (r *CreateProfessionalRequest) Normalize() {
	trimAll(r.SocialName, r.Profession, r.Address, r.Contact)
}

func (r *UpdateProfessionalRequest) Normalize() {
	trimAll(r.SocialName, r.Profession, r.Address, r.Contact)
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// Response DTOs

type ProfessionalResponse struct {
	ID         uint      `json:"id"`
	SocialName string    `json:"social_name"`
	Profession string    `json:"profession"`
	Address    string    `json:"address"`
	Contact    string    `json:"contact"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
