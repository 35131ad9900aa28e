package model

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus is the closed set of appointment states.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// ParseAppointmentStatus maps a raw string to an AppointmentStatus.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return AppointmentStatus(s), true
	}
	return "", false
}

// Appointment links a dietitian and a client at a point in time. Either
// party may create one; both parties own it for mutation purposes.
type Appointment struct {
	gorm.Model
	AppointmentDate time.Time         `json:"appointmentDate" gorm:"column:appointment_date;not null"`
	Status          AppointmentStatus `json:"status" gorm:"column:status;type:varchar(20);default:'PENDING'"`
	Notes           string            `json:"notes" gorm:"column:notes;type:text"`
	DietitianID     uint              `json:"dietitianId" gorm:"column:dietitian_id;not null;index"`
	Dietitian       *User             `json:"dietitian,omitempty" gorm:"foreignKey:DietitianID"`
	ClientID        uint              `json:"clientId" gorm:"column:client_id;not null;index"`
	Client          *User             `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
