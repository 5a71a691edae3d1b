package repository

import (
	"errors"

	"clinical-scheduling/internal/domain/entity"
	domainRepo "clinical-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

// Create and Update never write the preloaded professional.
func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Professional").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Professional").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	query := db.Preload("Professional").Order("date ASC, id ASC")
	if filter.ProfessionalID != nil {
		query = query.Where("professional_id = ?", *filter.ProfessionalID)
	}

	appointments := []entity.Appointment{}
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Professional").Save(appointment).Error
}

func (r *appointmentRepository) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&entity.Appointment{}, id).Error
}

func (r *appointmentRepository) CountByProfessional(db *gorm.DB, professionalID uint) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).Where("professional_id = ?", professionalID).Count(&count).Error
	return count, err
}
