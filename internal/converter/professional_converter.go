package converter

import (
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
)

func ProfessionalToResponse(p *entity.Professional) *dto.ProfessionalResponse {
	if p == nil {
		return nil
	}

	return &dto.ProfessionalResponse{
		ID:         p.ID,
		SocialName: p.SocialName,
		Profession: p.Profession,
		Address:    p.Address,
		Contact:    p.Contact,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func ProfessionalsToResponses(professionals []entity.Professional) []dto.ProfessionalResponse {
	responses := make([]dto.ProfessionalResponse, len(professionals))
	for i := range professionals {
		responses[i] = *ProfessionalToResponse(&professionals[i])
	}
	return responses
}

// CreateProfessionalRequestToEntity expects a validated request.
func CreateProfessionalRequestToEntity(req *dto.CreateProfessionalRequest) *entity.Professional {
	p := &entity.Professional{}
	ApplyProfessionalUpdate(p, (*dto.UpdateProfessionalRequest)(req))
	return p
}

// ApplyProfessionalUpdate copies the fields present in req onto p.
func ApplyProfessionalUpdate(p *entity.Professional, req *dto.UpdateProfessionalRequest) {
	if req.SocialName != nil {
		p.SocialName = *req.SocialName
	}
	if req.Profession != nil {
		p.Profession = *req.Profession
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Contact != nil {
		p.Contact = *req.Contact
	}
}
