package endpoint

import (
	"fmt"
	"time"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func appointmentQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Appointment{}).
		Preload("Dietitian").
		Preload("Client").
		Order("appointment_date DESC")
}

func loadAppointmentOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Appointment, bool) {
	var appt model.Appointment
	err := db.Preload("Dietitian").Preload("Client").First(&appt, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
		return model.Appointment{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return model.Appointment{}, false
	}
	return appt, true
}

// ListAppointments returns every appointment. Admin only.
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appts []model.Appointment
	if err := applyListQuery(appointmentQuery(db), parseListQuery(c)).Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// ListMyClientAppointments returns the appointments where the calling
// dietitian is the practitioner.
func ListMyClientAppointments(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appts []model.Appointment
	if err := appointmentQuery(db).Where("dietitian_id = ?", who.ID).Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// ListMyAppointments returns the appointments where the calling client
// is the attendee.
func ListMyAppointments(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appts []model.Appointment
	if err := appointmentQuery(db).Where("client_id = ?", who.ID).Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// GetAppointment returns a single appointment by id.
func GetAppointment(c *gin.Context) {
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appt, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment retrieved", Data: appt})
}

type CreateAppointmentRequest struct {
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	DietitianID     uint      `json:"dietitianId"`
	ClientID        uint      `json:"clientId"`
}

// resolveAppointmentParties fills in the caller's own side and validates
// the counterpart reference. Dietitians name a client; clients name a
// dietitian.
func resolveAppointmentParties(db *gorm.DB, who caller, req CreateAppointmentRequest) (dietitianID, clientID uint, err error) {
	switch who.Role {
	case model.RoleDietitian:
		if req.ClientID == 0 {
			return 0, 0, fmt.Errorf("clientId is required")
		}
		if err := userHasRole(db, req.ClientID, model.RoleClient); err != nil {
			return 0, 0, err
		}
		return who.ID, req.ClientID, nil
	case model.RoleClient:
		if req.DietitianID == 0 {
			return 0, 0, fmt.Errorf("dietitianId is required")
		}
		if err := userHasRole(db, req.DietitianID, model.RoleDietitian); err != nil {
			return 0, 0, err
		}
		return req.DietitianID, who.ID, nil
	}
	return 0, 0, fmt.Errorf("role %s cannot create appointments", who.Role)
}

// CreateAppointment books a new appointment between a dietitian and a
// client. New appointments start PENDING unless a valid status is given.
func CreateAppointment(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	status := model.AppointmentPending
	if req.Status != "" {
		parsed, valid := model.ParseAppointmentStatus(req.Status)
		if !valid {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Status must be PENDING, CONFIRMED, COMPLETED or CANCELLED",
				Err: fmt.Errorf("invalid status %q", req.Status),
			})
			return
		}
		status = parsed
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	dietitianID, clientID, err := resolveAppointmentParties(db, who, req)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid appointment parties", Err: err})
		return
	}

	appt := model.Appointment{
		AppointmentDate: req.AppointmentDate,
		Status:          status,
		Notes:           req.Notes,
		DietitianID:     dietitianID,
		ClientID:        clientID,
	}

	if err := db.Create(&appt).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	created, ok := loadAppointmentOrRespond(c, db, appt.ID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment created", Data: created})
}

type UpdateAppointmentRequest struct {
	AppointmentDate *time.Time `json:"appointmentDate"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
}

// UpdateAppointment partially updates an appointment. Either participant
// may update their own.
func UpdateAppointment(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appt, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if !enforceOwnership(c, who, util.AppointmentOwnership(appt), "appointments") {
		return
	}

	if req.AppointmentDate != nil {
		appt.AppointmentDate = *req.AppointmentDate
	}
	if req.Status != nil {
		parsed, valid := model.ParseAppointmentStatus(*req.Status)
		if !valid {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Status must be PENDING, CONFIRMED, COMPLETED or CANCELLED",
				Err: fmt.Errorf("invalid status %q", *req.Status),
			})
			return
		}
		appt.Status = parsed
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	if err := db.Omit("Dietitian", "Client").Save(&appt).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated", Data: appt})
}

// DeleteAppointment removes an appointment. Either participant or an
// admin.
func DeleteAppointment(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appt model.Appointment
	err := db.First(&appt, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return
	}

	if !enforceOwnership(c, who, util.AppointmentOwnership(appt), "appointments") {
		return
	}

	if err := db.Delete(&appt).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointment deleted successfully",
		Data: map[string]uint{"deletedAppointmentId": appt.ID},
	})
}
