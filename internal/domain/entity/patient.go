package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient represents patient-specific profile data
type Patient struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name    string    `gorm:"type:varchar(100);not null" json:"name"`
	Age     *int      `json:"age,omitempty"`
	Contact string    `gorm:"type:varchar(50)" json:"contact,omitempty"`

	// Relationships
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
