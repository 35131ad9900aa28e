package endpoint

import (
	"fmt"
	"time"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const planDateLayout = "2006-01-02"

func validatePlanDates(startDate, endDate string) error {
	start, err := time.Parse(planDateLayout, startDate)
	if err != nil {
		return fmt.Errorf("startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(planDateLayout, endDate)
	if err != nil {
		return fmt.Errorf("endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fmt.Errorf("endDate must not be before startDate")
	}
	return nil
}

func planQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.DietPlan{}).
		Preload("Dietitian").
		Preload("Client").
		Preload("Recipes").
		Order("id DESC")
}

func loadDietPlanOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.DietPlan, bool) {
	var plan model.DietPlan
	err := db.Preload("Dietitian").Preload("Client").Preload("Recipes").First(&plan, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Diet plan not found", Err: err})
		return model.DietPlan{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve diet plan", Err: err})
		return model.DietPlan{}, false
	}
	return plan, true
}

// ListDietPlans returns every diet plan. Admin only.
func ListDietPlans(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var plans []model.DietPlan
	if err := applyListQuery(planQuery(db), parseListQuery(c)).Find(&plans).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list diet plans", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plans retrieved", Data: plans})
}

// ListMyDietPlans returns the plans authored by the calling dietitian.
func ListMyDietPlans(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var plans []model.DietPlan
	if err := planQuery(db).Where("dietitian_id = ?", who.ID).Find(&plans).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list diet plans", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plans retrieved", Data: plans})
}

// ListAssignedDietPlans returns the plans assigned to the calling client.
func ListAssignedDietPlans(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var plans []model.DietPlan
	if err := planQuery(db).Where("client_id = ?", who.ID).Find(&plans).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list diet plans", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plans retrieved", Data: plans})
}

// GetDietPlan returns a single plan by id.
func GetDietPlan(c *gin.Context) {
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	plan, ok := loadDietPlanOrRespond(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plan retrieved", Data: plan})
}

type CreateDietPlanRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Breakfast   string `json:"breakfast"`
	Lunch       string `json:"lunch"`
	Dinner      string `json:"dinner"`
	Snacks      string `json:"snacks"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
	ClientID    uint   `json:"clientId" binding:"required"`
	RecipeIDs   []uint `json:"recipeIds"`
}

// attachableRecipes resolves the recipe ids a dietitian may attach to a
// plan: their own recipes plus public ones. Attaching would expose a
// recipe to the assigned client, so another dietitian's private recipe
// is rejected like a missing id.
func attachableRecipes(db *gorm.DB, dietitianID uint, ids []uint) ([]model.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var recipes []model.Recipe
	err := db.Where("id IN ? AND (is_public = ? OR dietitian_id = ?)", unique, true, dietitianID).Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if len(recipes) != len(unique) {
		return nil, fmt.Errorf("one or more recipes not found or not accessible")
	}
	return recipes, nil
}

// CreateDietPlan stores a new plan authored by the calling dietitian.
func CreateDietPlan(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}

	var req CreateDietPlanRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	status := model.DietPlanActive
	if req.Status != "" {
		parsed, valid := model.ParseDietPlanStatus(req.Status)
		if !valid {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Status must be ACTIVE, COMPLETED or CANCELLED",
				Err: fmt.Errorf("invalid status %q", req.Status),
			})
			return
		}
		status = parsed
	}

	if err := validatePlanDates(req.StartDate, req.EndDate); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := userHasRole(db, req.ClientID, model.RoleClient); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "clientId must reference a client account", Err: err})
		return
	}

	recipes, err := attachableRecipes(db, who.ID, req.RecipeIDs)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid recipeIds", Err: err})
		return
	}

	plan := model.DietPlan{
		Title:       req.Title,
		Description: req.Description,
		Breakfast:   req.Breakfast,
		Lunch:       req.Lunch,
		Dinner:      req.Dinner,
		Snacks:      req.Snacks,
		Notes:       req.Notes,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DietitianID: who.ID,
		ClientID:    req.ClientID,
		Recipes:     recipes,
	}

	if err := db.Create(&plan).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create diet plan", Err: err})
		return
	}

	created, ok := loadDietPlanOrRespond(c, db, plan.ID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plan created", Data: created})
}

type UpdateDietPlanRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Breakfast   *string `json:"breakfast"`
	Lunch       *string `json:"lunch"`
	Dinner      *string `json:"dinner"`
	Snacks      *string `json:"snacks"`
	Notes       *string `json:"notes"`
	Status      *string `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	ClientID    *uint   `json:"clientId"`
	RecipeIDs   []uint  `json:"recipeIds"`
}

// UpdateDietPlan partially updates a plan. Only the authoring dietitian
// reaches this handler, and only for their own plans.
func UpdateDietPlan(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}

	var req UpdateDietPlanRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	plan, ok := loadDietPlanOrRespond(c, db, id)
	if !ok {
		return
	}

	if !enforceOwnership(c, who, util.DietPlanOwnership(plan), "diet plans") {
		return
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Breakfast != nil {
		plan.Breakfast = *req.Breakfast
	}
	if req.Lunch != nil {
		plan.Lunch = *req.Lunch
	}
	if req.Dinner != nil {
		plan.Dinner = *req.Dinner
	}
	if req.Snacks != nil {
		plan.Snacks = *req.Snacks
	}
	if req.Notes != nil {
		plan.Notes = *req.Notes
	}
	if req.Status != nil {
		parsed, valid := model.ParseDietPlanStatus(*req.Status)
		if !valid {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Status must be ACTIVE, COMPLETED or CANCELLED",
				Err: fmt.Errorf("invalid status %q", *req.Status),
			})
			return
		}
		plan.Status = parsed
	}
	if req.StartDate != nil {
		plan.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		plan.EndDate = *req.EndDate
	}
	if req.StartDate != nil || req.EndDate != nil {
		if err := validatePlanDates(plan.StartDate, plan.EndDate); err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
			return
		}
	}
	if req.ClientID != nil {
		if err := userHasRole(db, *req.ClientID, model.RoleClient); err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "clientId must reference a client account", Err: err})
			return
		}
		plan.ClientID = *req.ClientID
		plan.Client = nil
	}

	if err := db.Omit("Dietitian", "Client", "Recipes").Save(&plan).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update diet plan", Err: err})
		return
	}

	if req.RecipeIDs != nil {
		recipes, err := attachableRecipes(db, who.ID, req.RecipeIDs)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid recipeIds", Err: err})
			return
		}
		if err := db.Model(&plan).Association("Recipes").Replace(recipes); err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update plan recipes", Err: err})
			return
		}
	}

	updated, ok := loadDietPlanOrRespond(c, db, plan.ID)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Diet plan updated", Data: updated})
}

// DeleteDietPlan removes a plan. The owning dietitian or an admin.
func DeleteDietPlan(c *gin.Context) {
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

	var plan model.DietPlan
	err := db.First(&plan, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Diet plan not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve diet plan", Err: err})
		return
	}

	if !enforceOwnership(c, who, util.DietPlanOwnership(plan), "diet plans") {
		return
	}

	if err := db.Select("Recipes").Delete(&plan).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete diet plan", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Diet plan deleted successfully",
		Data: map[string]uint{"deletedDietPlanId": plan.ID},
	})
}
