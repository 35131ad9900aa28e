package model

import "gorm.io/gorm"

// DietPlanStatus is the closed set of diet plan states.
type DietPlanStatus string

const (
	DietPlanActive    DietPlanStatus = "ACTIVE"
	DietPlanCompleted DietPlanStatus = "COMPLETED"
	DietPlanCancelled DietPlanStatus = "CANCELLED"
)

// ParseDietPlanStatus maps a raw string to a DietPlanStatus.
func ParseDietPlanStatus(s string) (DietPlanStatus, bool) {
	switch DietPlanStatus(s) {
	case DietPlanActive, DietPlanCompleted, DietPlanCancelled:
		return DietPlanStatus(s), true
	}
	return "", false
}

// DietPlan is a dietitian-authored plan assigned to a client. Dates are
// stored as YYYY-MM-DD strings, matching the wire format.
type DietPlan struct {
	gorm.Model
	Title       string         `json:"title" gorm:"column:title;not null"`
	Description string         `json:"description" gorm:"column:description;type:text"`
	Breakfast   string         `json:"breakfast" gorm:"column:breakfast;type:text"`
	Lunch       string         `json:"lunch" gorm:"column:lunch;type:text"`
	Dinner      string         `json:"dinner" gorm:"column:dinner;type:text"`
	Snacks      string         `json:"snacks" gorm:"column:snacks;type:text"`
	Notes       string         `json:"notes" gorm:"column:notes;type:text"`
	Status      DietPlanStatus `json:"status" gorm:"column:status;type:varchar(20);default:'ACTIVE'"`
	StartDate   string         `json:"startDate" gorm:"column:start_date"`
	EndDate     string         `json:"endDate" gorm:"column:end_date"`
	DietitianID uint           `json:"dietitianId" gorm:"column:dietitian_id;not null;index"`
	Dietitian   *User          `json:"dietitian,omitempty" gorm:"foreignKey:DietitianID"`
	ClientID    uint           `json:"clientId" gorm:"column:client_id;not null;index"`
	Client      *User          `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Recipes     []Recipe       `json:"recipes,omitempty" gorm:"many2many:diet_plan_recipes"`
}
