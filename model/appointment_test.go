package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAppointmentStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "CONFIRMED", "COMPLETED", "CANCELLED"} {
		got, ok := ParseAppointmentStatus(valid)
		assert.True(t, ok)
		assert.Equal(t, AppointmentStatus(valid), got)
	}

	_, ok := ParseAppointmentStatus("pending")
	assert.False(t, ok)
	_, ok = ParseAppointmentStatus("RESCHEDULED")
	assert.False(t, ok)
}

func TestAppointmentModel_CreateAndRead(t *testing.T) {
	db := setupTestDB(t, "appointment", &User{}, &Appointment{})

	dietitian := User{Username: "dr.deniz", Password: "x", Role: RoleDietitian, FullName: "Dr. Deniz"}
	client := User{Username: "hasta1", Password: "x", Role: RoleClient, FullName: "Hasta Bir"}
	db.Create(&dietitian)
	db.Create(&client)

	when := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)
	appt := Appointment{
		AppointmentDate: when,
		Notes:           "İlk görüşme",
		DietitianID:     dietitian.ID,
		ClientID:        client.ID,
	}
	assert.NoError(t, db.Create(&appt).Error)

	var found Appointment
	assert.NoError(t, db.Preload("Dietitian").Preload("Client").First(&found, appt.ID).Error)
	assert.Equal(t, AppointmentPending, found.Status)
	assert.True(t, when.Equal(found.AppointmentDate))
	assert.Equal(t, dietitian.ID, found.Dietitian.ID)
}

func TestAppointmentModel_StatusUpdate(t *testing.T) {
	db := setupTestDB(t, "appointment_status", &User{}, &Appointment{})

	appt := Appointment{AppointmentDate: time.Now(), DietitianID: 1, ClientID: 2}
	db.Create(&appt)

	appt.Status = AppointmentConfirmed
	assert.NoError(t, db.Save(&appt).Error)

	var found Appointment
	db.First(&found, appt.ID)
	assert.Equal(t, AppointmentConfirmed, found.Status)
}
