package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultAvailability = "Mon-Fri, 9:00 AM - 5:00 PM"

// Doctor represents doctor-specific profile data
type Doctor struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Availability    string          `gorm:"type:varchar(200);not null" json:"availability"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`

	// Relationships
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Availability == "" {
		d.Availability = DefaultAvailability
	}
	return nil
}
