package usecase

import (
	"context"
	"errors"
	"strconv"

	"clinical-scheduling/internal/converter"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/domain/repository"
	"clinical-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrProfessionalInUse    = errors.New("professional has appointments")
)

type ProfessionalUsecase interface {
	CreateProfessional(ctx context.Context, req *dto.CreateProfessionalRequest) (*dto.ProfessionalResponse, error)
	GetProfessional(ctx context.Context, id uint) (*dto.ProfessionalResponse, error)
	GetAllProfessionals(ctx context.Context) ([]dto.ProfessionalResponse, error)
	UpdateProfessional(ctx context.Context, id uint, req *dto.UpdateProfessionalRequest) (*dto.ProfessionalResponse, error)
	DeleteProfessional(ctx context.Context, id uint) error
}

type professionalUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	professionalRepo repository.ProfessionalRepository
	appointmentRepo  repository.AppointmentRepository
	auditService     service.AuditService
}

func NewProfessionalUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	professionalRepo repository.ProfessionalRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) ProfessionalUsecase {
	return &professionalUsecase{
		db:               db,
		log:              log,
		professionalRepo: professionalRepo,
		appointmentRepo:  appointmentRepo,
		auditService:     auditService,
	}
}

func (u *professionalUsecase) CreateProfessional(ctx context.Context, req *dto.CreateProfessionalRequest) (*dto.ProfessionalResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	professional := converter.CreateProfessionalRequestToEntity(req)
	if err := u.professionalRepo.Create(tx, professional); err != nil {
		u.log.Warnf("Failed to create professional: %+v", err)
		return nil, err
	}

	res := converter.ProfessionalToResponse(professional)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionProfessionalCreate, entity.AuditEntityProfessional, idString(professional.ID), res); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return res, nil
}

func (u *professionalUsecase) GetProfessional(ctx context.Context, id uint) (*dto.ProfessionalResponse, error) {
	professional, err := u.professionalRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find professional by id: %+v", err)
		return nil, err
	}
	if professional == nil {
		return nil, ErrProfessionalNotFound
	}

	return converter.ProfessionalToResponse(professional), nil
}

func (u *professionalUsecase) GetAllProfessionals(ctx context.Context) ([]dto.ProfessionalResponse, error) {
	professionals, err := u.professionalRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all professionals: %+v", err)
		return nil, err
	}

	return converter.ProfessionalsToResponses(professionals), nil
}

func (u *professionalUsecase) UpdateProfessional(ctx context.Context, id uint, req *dto.UpdateProfessionalRequest) (*dto.ProfessionalResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	professional, err := u.professionalRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find professional by id: %+v", err)
		return nil, err
	}
	if professional == nil {
		return nil, ErrProfessionalNotFound
	}

	oldValue := converter.ProfessionalToResponse(professional)
	converter.ApplyProfessionalUpdate(professional, req)

	if err := u.professionalRepo.Update(tx, professional); err != nil {
		u.log.Warnf("Failed to update professional: %+v", err)
		return nil, err
	}

	newValue := converter.ProfessionalToResponse(professional)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionProfessionalUpdate, entity.AuditEntityProfessional, idString(id), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// DeleteProfessional refuses to remove a professional that still has appointments.
func (u *professionalUsecase) DeleteProfessional(ctx context.Context, id uint) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	professional, err := u.professionalRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find professional by id: %+v", err)
		return err
	}
	if professional == nil {
		return ErrProfessionalNotFound
	}

	count, err := u.appointmentRepo.CountByProfessional(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count appointments of professional: %+v", err)
		return err
	}
	if count > 0 {
		return ErrProfessionalInUse
	}

	if err := u.professionalRepo.Delete(tx, id); err != nil {
		if isForeignKeyError(err, "professional") {
			return ErrProfessionalInUse
		}
		u.log.Warnf("Failed to delete professional: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionProfessionalDelete, entity.AuditEntityProfessional, idString(id), converter.ProfessionalToResponse(professional)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		if isForeignKeyError(err, "professional") {
			return ErrProfessionalInUse
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
