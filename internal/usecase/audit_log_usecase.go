package usecase

import (
	"context"
	"errors"
	"slices"

	"clinical-scheduling/internal/converter"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
	// ErrNoHistory means nothing was ever recorded for the record, so it never existed.
	ErrNoHistory = errors.New("no history for record")
)

const DefaultAuditPageSize = 100

// AuditLogUsecase reads the audit trail written by the other usecases.
type AuditLogUsecase interface {
	ListAuditTrail(ctx context.Context, filter entity.AuditLogFilter) (*dto.AuditTrailPage, error)
	GetAuditEntry(ctx context.Context, id int64) (*dto.AuditEntryResponse, error)
	// GetRecordHistory returns every change to one record, oldest first. It keeps
	// working after the record is deleted.
	GetRecordHistory(ctx context.Context, entityType string, id uint) ([]dto.AuditEntryResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) ListAuditTrail(ctx context.Context, filter entity.AuditLogFilter) (*dto.AuditTrailPage, error) {
	pageSize := filter.Limit
	if pageSize <= 0 {
		pageSize = DefaultAuditPageSize
	}

	// One extra row tells whether another page follows.
	filter.Limit = pageSize + 1
	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	page := &dto.AuditTrailPage{}
	if len(logs) > pageSize {
		logs = logs[:pageSize]
		next := logs[pageSize-1].ID
		page.NextBefore = &next
	}
	page.Results = converter.AuditEntriesToResponses(logs)

	return page, nil
}

func (u *auditLogUsecase) GetAuditEntry(ctx context.Context, id int64) (*dto.AuditEntryResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	res := converter.AuditEntryToResponse(auditLog)
	return &res, nil
}

func (u *auditLogUsecase) GetRecordHistory(ctx context.Context, entityType string, id uint) ([]dto.AuditEntryResponse, error) {
	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), entity.AuditLogFilter{
		EntityType: entityType,
		EntityID:   idString(id),
	})
	if err != nil {
		u.log.Warnf("Failed to find history of %s %d: %+v", entityType, id, err)
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNoHistory
	}

	slices.Reverse(logs)
	return converter.AuditEntriesToResponses(logs), nil
}
