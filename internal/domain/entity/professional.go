package entity

import "time"

type Professional struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SocialName string    `gorm:"type:varchar(200);not null" json:"social_name"`
	Profession string    `gorm:"type:text;not null;index" json:"profession"`
	Address    string    `gorm:"type:text;not null;default:''" json:"address"`
	Contact    string    `gorm:"type:text;not null" json:"contact"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Professional) TableName() string {
	return "professionals"
}
