package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var apptDate = time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC)

func TestCreateAppointment_ByDietitian(t *testing.T) {
	r, _ := newTestAPI(t, "appt_by_diet")
	dietToken, dietID := registerAndLogin(t, r, "dr.randevu", model.RoleDietitian)
	registerUser(t, r, "randevu-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "randevu-danisan")

	w := doRequest(t, r, http.MethodPost, "/appointments", dietToken, map[string]interface{}{
		"appointmentDate": apptDate,
		"clientId":        clientID,
		"notes":           "Ilk gorusme",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var appt model.Appointment
	decodeData(t, w, &appt)
	assert.Equal(t, dietID, appt.DietitianID)
	assert.Equal(t, clientID, appt.ClientID)
	assert.Equal(t, model.AppointmentPending, appt.Status)
	assert.True(t, appt.AppointmentDate.Equal(apptDate))
}

func TestCreateAppointment_ByClient(t *testing.T) {
	r, _ := newTestAPI(t, "appt_by_client")
	registerUser(t, r, "dr.istek", model.RoleDietitian)
	_, dietID := loginUser(t, r, "dr.istek")
	clientToken, clientID := registerAndLogin(t, r, "istekli", model.RoleClient)

	w := doRequest(t, r, http.MethodPost, "/appointments", clientToken, map[string]interface{}{
		"appointmentDate": apptDate,
		"dietitianId":     dietID,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var appt model.Appointment
	decodeData(t, w, &appt)
	assert.Equal(t, dietID, appt.DietitianID)
	assert.Equal(t, clientID, appt.ClientID)
	assert.Equal(t, model.AppointmentPending, appt.Status)
}

func TestCreateAppointment_CounterpartValidation(t *testing.T) {
	r, _ := newTestAPI(t, "appt_counterpart")
	dietToken, dietID := registerAndLogin(t, r, "dr.karsi", model.RoleDietitian)
	clientToken, clientID := registerAndLogin(t, r, "karsi-danisan", model.RoleClient)

	// Dietitian naming another dietitian as the client.
	w := doRequest(t, r, http.MethodPost, "/appointments", dietToken, map[string]interface{}{
		"appointmentDate": apptDate,
		"clientId":        dietID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Client naming another client as the dietitian.
	w = doRequest(t, r, http.MethodPost, "/appointments", clientToken, map[string]interface{}{
		"appointmentDate": apptDate,
		"dietitianId":     clientID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing counterpart entirely.
	w = doRequest(t, r, http.MethodPost, "/appointments", dietToken, map[string]interface{}{
		"appointmentDate": apptDate,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func bookAppointment(t *testing.T, r *gin.Engine, dietToken string, clientID uint) model.Appointment {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/appointments", dietToken, map[string]interface{}{
		"appointmentDate": apptDate,
		"clientId":        clientID,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var appt model.Appointment
	decodeData(t, w, &appt)
	return appt
}

func TestAppointment_ScopedListings(t *testing.T) {
	r, _ := newTestAPI(t, "appt_listings")
	dietToken, _ := registerAndLogin(t, r, "dr.takvim", model.RoleDietitian)
	otherDietToken, _ := registerAndLogin(t, r, "dr.bos", model.RoleDietitian)
	registerUser(t, r, "takvim-danisan", model.RoleClient)
	clientToken, clientID := loginUser(t, r, "takvim-danisan")

	bookAppointment(t, r, dietToken, clientID)

	w := doRequest(t, r, http.MethodGet, "/appointments/my-client-appointments", dietToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var appts []model.Appointment
	decodeData(t, w, &appts)
	assert.Len(t, appts, 1)

	w = doRequest(t, r, http.MethodGet, "/appointments/my-client-appointments", otherDietToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &appts)
	assert.Len(t, appts, 0)

	w = doRequest(t, r, http.MethodGet, "/appointments/my-appointments", clientToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &appts)
	assert.Len(t, appts, 1)

	// Role gates on the scoped listings.
	w = doRequest(t, r, http.MethodGet, "/appointments/my-appointments", dietToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(t, r, http.MethodGet, "/appointments", dietToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateAppointment_ByEitherParticipant(t *testing.T) {
	r, _ := newTestAPI(t, "appt_update")
	dietToken, _ := registerAndLogin(t, r, "dr.onay", model.RoleDietitian)
	registerUser(t, r, "onay-danisan", model.RoleClient)
	clientToken, clientID := loginUser(t, r, "onay-danisan")

	appt := bookAppointment(t, r, dietToken, clientID)

	// Dietitian confirms.
	w := doRequest(t, r, http.MethodPatch, "/appointments/"+itoa(appt.ID), dietToken, map[string]string{
		"status": "CONFIRMED",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var updated model.Appointment
	decodeData(t, w, &updated)
	assert.Equal(t, model.AppointmentConfirmed, updated.Status)

	// Client cancels their own appointment.
	w = doRequest(t, r, http.MethodPatch, "/appointments/"+itoa(appt.ID), clientToken, map[string]string{
		"status": "CANCELLED",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &updated)
	assert.Equal(t, model.AppointmentCancelled, updated.Status)
}

func TestUpdateAppointment_NonParticipantForbidden(t *testing.T) {
	r, _ := newTestAPI(t, "appt_forbidden")
	dietToken, _ := registerAndLogin(t, r, "dr.taraf", model.RoleDietitian)
	registerUser(t, r, "taraf-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "taraf-danisan")
	outsiderToken, _ := registerAndLogin(t, r, "disarida", model.RoleClient)

	appt := bookAppointment(t, r, dietToken, clientID)

	w := doRequest(t, r, http.MethodPatch, "/appointments/"+itoa(appt.ID), outsiderToken, map[string]string{
		"status": "CANCELLED",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/appointments/"+itoa(appt.ID), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteAppointment(t *testing.T) {
	r, db := newTestAPI(t, "appt_delete")
	dietToken, _ := registerAndLogin(t, r, "dr.iptal", model.RoleDietitian)
	registerUser(t, r, "iptal-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "iptal-danisan")

	appt := bookAppointment(t, r, dietToken, clientID)

	w := doRequest(t, r, http.MethodDelete, "/appointments/"+itoa(appt.ID), dietToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Appointment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUpdateAppointment_InvalidStatus(t *testing.T) {
	r, _ := newTestAPI(t, "appt_badstatus")
	dietToken, _ := registerAndLogin(t, r, "dr.durum", model.RoleDietitian)
	registerUser(t, r, "durum-danisan", model.RoleClient)
	_, clientID := loginUser(t, r, "durum-danisan")

	appt := bookAppointment(t, r, dietToken, clientID)

	w := doRequest(t, r, http.MethodPatch, "/appointments/"+itoa(appt.ID), dietToken, map[string]string{
		"status": "MAYBE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
