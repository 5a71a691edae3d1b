package entity

import "time"

// Appointment books a professional at a point in time. Professionals with
// appointments cannot be deleted.
type Appointment struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	ProfessionalID uint      `gorm:"not null;index" json:"professional"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Professional Professional `gorm:"foreignKey:ProfessionalID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"professional_detail"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentFilter narrows appointment listings. A nil field means no filter.
type AppointmentFilter struct {
	ProfessionalID *uint
}
