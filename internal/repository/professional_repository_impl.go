package repository

import (
	"errors"

	"clinical-scheduling/internal/domain/entity"
	domainRepo "clinical-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type professionalRepository struct{}

func NewProfessionalRepository() domainRepo.ProfessionalRepository {
	return &professionalRepository{}
}

func (r *professionalRepository) Create(db *gorm.DB, professional *entity.Professional) error {
	return db.Create(professional).Error
}

func (r *professionalRepository) FindByID(db *gorm.DB, id uint) (*entity.Professional, error) {
	var professional entity.Professional
	err := db.Where("id = ?", id).First(&professional).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &professional, nil
}

func (r *professionalRepository) FindAll(db *gorm.DB) ([]entity.Professional, error) {
	professionals := []entity.Professional{}
	if err := db.Order("id ASC").Find(&professionals).Error; err != nil {
		return nil, err
	}
	return professionals, nil
}

func (r *professionalRepository) Update(db *gorm.DB, professional *entity.Professional) error {
	return db.Save(professional).Error
}

func (r *professionalRepository) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&entity.Professional{}, id).Error
}
