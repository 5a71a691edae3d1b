package entity

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// AuditLog records one change to a record, with the acting user when known.
// Metadata holds the record's "before" and "after" snapshots; either may be absent.
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(50);not null;default:'';index:idx_audit_logs_entity,priority:1" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(64);not null;default:'';index:idx_audit_logs_entity,priority:2" json:"entity_id"`
	Metadata   JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audited record types
const (
	AuditEntityUser         = "user"
	AuditEntityProfessional = "professional"
	AuditEntityAppointment  = "appointment"
)

// Audit actions
const (
	AuditActionUserCreate         = "user.create"
	AuditActionUserLogin          = "user.login"
	AuditActionUserLogout         = "user.logout"
	AuditActionProfessionalCreate = "professional.create"
	AuditActionProfessionalUpdate = "professional.update"
	AuditActionProfessionalDelete = "professional.delete"
	AuditActionAppointmentCreate  = "appointment.create"
	AuditActionAppointmentUpdate  = "appointment.update"
	AuditActionAppointmentDelete  = "appointment.delete"
)

// AuditLogFilter narrows audit listings. Zero values mean no filter.
// Before pages backwards through the trail: only ids below it are returned.
type AuditLogFilter struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Before     int64
	Limit      int
}
