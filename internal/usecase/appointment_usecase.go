package usecase

import (
	"context"
	"errors"

	"clinical-scheduling/internal/converter"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/domain/repository"
	"clinical-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrUnknownProfessional means the request references a professional id that does not exist.
	ErrUnknownProfessional = errors.New("referenced professional does not exist")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id uint) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, filter entity.AppointmentFilter) ([]dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, id uint, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id uint) error
	CheckProfessional(ctx context.Context, professionalID uint) error
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	professionalRepo repository.ProfessionalRepository
	auditService     service.AuditService
	notifications    service.NotificationService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	professionalRepo repository.ProfessionalRepository,
	auditService service.AuditService,
	notifications service.NotificationService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		professionalRepo: professionalRepo,
		auditService:     auditService,
		notifications:    notifications,
	}
}

// CreateAppointment persists the appointment and, once committed, hands it to the notifiers.
// Notification failures never reach the caller.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	professional, err := u.professionalRepo.FindByID(tx, *req.Professional)
	if err != nil {
		u.log.Warnf("Failed to find professional by id: %+v", err)
		return nil, err
	}
	if professional == nil {
		return nil, ErrUnknownProfessional
	}

	appointment := &entity.Appointment{
		Date:           req.Date.UTC(),
		ProfessionalID: professional.ID,
	}
	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isForeignKeyError(err, "professional") {
			return nil, ErrUnknownProfessional
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}
	appointment.Professional = *professional

	res := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionAppointmentCreate, entity.AuditEntityAppointment, idString(appointment.ID), res); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.notifications.AppointmentCreated(*appointment)

	return res, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uint) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment by id: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter entity.AppointmentFilter) ([]dto.AppointmentResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToResponses(appointments), nil
}

func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, id uint, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment by id: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	oldValue := converter.AppointmentToResponse(appointment)
	converter.ApplyAppointmentUpdate(appointment, req)

	if appointment.Professional.ID == 0 {
		professional, err := u.professionalRepo.FindByID(tx, appointment.ProfessionalID)
		if err != nil {
			u.log.Warnf("Failed to find professional by id: %+v", err)
			return nil, err
		}
		if professional == nil {
			return nil, ErrUnknownProfessional
		}
		appointment.Professional = *professional
	}

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		if isForeignKeyError(err, "professional") {
			return nil, ErrUnknownProfessional
		}
		u.log.Warnf("Failed to update appointment: %+v", err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentUpdate, entity.AuditEntityAppointment, idString(id), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

// CheckProfessional returns ErrUnknownProfessional when no professional has the given id.
// Create and update repeat the lookup inside their transaction.
func (u *appointmentUsecase) CheckProfessional(ctx context.Context, professionalID uint) error {
	professional, err := u.professionalRepo.FindByID(u.db.WithContext(ctx), professionalID)
	if err != nil {
		u.log.Warnf("Failed to find professional by id: %+v", err)
		return err
	}
	if professional == nil {
		return ErrUnknownProfessional
	}
	return nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id uint) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment by id: %+v", err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if err := u.appointmentRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete appointment: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionAppointmentDelete, entity.AuditEntityAppointment, idString(id), converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
