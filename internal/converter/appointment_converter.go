package converter

import (
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
)

func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:           a.ID,
		Date:         a.Date,
		Professional: a.ProfessionalID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}

	// Include the professional if it was loaded
	if a.Professional.ID != 0 {
		response.ProfessionalDetail = ProfessionalToResponse(&a.Professional)
	}

	return response
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// ApplyAppointmentUpdate copies the fields present in req onto a. Changing the
// professional drops the loaded one.
func ApplyAppointmentUpdate(a *entity.Appointment, req *dto.UpdateAppointmentRequest) {
	if req.Date != nil {
		a.Date = req.Date.UTC()
	}
	if req.Professional != nil && *req.Professional != a.ProfessionalID {
		a.ProfessionalID = *req.Professional
		a.Professional = entity.Professional{}
	}
}
