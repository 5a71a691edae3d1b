package converter

import (
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
)

func AuditEntryToResponse(log *entity.AuditLog) dto.AuditEntryResponse {
	res := dto.AuditEntryResponse{
		ID:     log.ID,
		Action: log.Action,
		Record: dto.AuditRecordRef{
			Type: log.EntityType,
			ID:   log.EntityID,
		},
		Actor:     UserToResponse(log.User),
		CreatedAt: log.CreatedAt,
	}

	before, after := log.Metadata["before"], log.Metadata["after"]
	if before != nil || after != nil {
		res.Changes = &dto.AuditChanges{Before: before, After: after}
	}

	return res
}

func AuditEntriesToResponses(logs []entity.AuditLog) []dto.AuditEntryResponse {
	responses := make([]dto.AuditEntryResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, AuditEntryToResponse(&logs[i]))
	}
	return responses
}
