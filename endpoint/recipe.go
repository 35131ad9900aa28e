package endpoint

import (
	"fmt"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func recipeQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Recipe{}).
		Preload("Dietitian").
		Order("created_at DESC")
}

func loadRecipeOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Recipe, bool) {
	var recipe model.Recipe
	err := db.Preload("Dietitian").First(&recipe, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Recipe not found", Err: err})
		return model.Recipe{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve recipe", Err: err})
		return model.Recipe{}, false
	}
	return recipe, true
}

func respondRecipes(c *gin.Context, query *gorm.DB) {
	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list recipes", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Recipes retrieved", Data: recipes})
}

// ListRecipes returns every recipe, public or not. Admin only.
func ListRecipes(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	respondRecipes(c, applyListQuery(recipeQuery(db), parseListQuery(c)))
}

// ListPublicRecipes returns the public recipe catalogue.
func ListPublicRecipes(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	respondRecipes(c, recipeQuery(db).Where("is_public = ?", true))
}

// ListMyRecipes returns the calling dietitian's own recipes.
func ListMyRecipes(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	respondRecipes(c, recipeQuery(db).Where("dietitian_id = ?", who.ID))
}

// ListAccessibleRecipes returns what the calling dietitian can see:
// every public recipe plus their own private ones.
func ListAccessibleRecipes(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	respondRecipes(c, recipeQuery(db).Where("is_public = ? OR dietitian_id = ?", true, who.ID))
}

// currentDietitianForClient resolves the dietitian who authored the
// client's most recent diet plan. Zero when the client has no plans.
func currentDietitianForClient(db *gorm.DB, clientID uint) (uint, error) {
	var plan model.DietPlan
	err := db.Where("client_id = ?", clientID).Order("created_at DESC").First(&plan).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return plan.DietitianID, nil
}

// ListClientAccessibleRecipes returns what the calling client can see:
// every public recipe plus the full catalogue of the dietitian who wrote
// their most recent diet plan.
func ListClientAccessibleRecipes(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	dietitianID, err := currentDietitianForClient(db, who.ID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve current dietitian", Err: err})
		return
	}

	query := recipeQuery(db)
	if dietitianID == 0 {
		query = query.Where("is_public = ?", true)
	} else {
		query = query.Where("is_public = ? OR dietitian_id = ?", true, dietitianID)
	}
	respondRecipes(c, query)
}

// GetRecipe returns a single recipe by id.
func GetRecipe(c *gin.Context) {
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	recipe, ok := loadRecipeOrRespond(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Recipe retrieved", Data: recipe})
}

type CreateRecipeRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Category     string `json:"category"`
	PrepTime     int    `json:"prepTime"`
	CookTime     int    `json:"cookTime"`
	Servings     int    `json:"servings"`
	Calories     int    `json:"calories"`
	IsPublic     bool   `json:"isPublic"`
}

// CreateRecipe stores a new recipe owned by the calling dietitian.
func CreateRecipe(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}

	var req CreateRecipeRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if !model.ValidRecipeCategory(req.Category) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Unknown recipe category",
			Err: fmt.Errorf("invalid category %q", req.Category),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	recipe := model.Recipe{
		Name:         req.Name,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Category:     req.Category,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Calories:     req.Calories,
		IsPublic:     req.IsPublic,
		DietitianID:  who.ID,
	}

	if err := db.Create(&recipe).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create recipe", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Recipe created", Data: recipe})
}

type UpdateRecipeRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Ingredients  *string `json:"ingredients"`
	Instructions *string `json:"instructions"`
	Category     *string `json:"category"`
	PrepTime     *int    `json:"prepTime"`
	CookTime     *int    `json:"cookTime"`
	Servings     *int    `json:"servings"`
	Calories     *int    `json:"calories"`
	IsPublic     *bool   `json:"isPublic"`
}

// UpdateRecipe partially updates a recipe. Only the owning dietitian.
func UpdateRecipe(c *gin.Context) {
	who, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := idParamOrRespond(c)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	recipe, ok := loadRecipeOrRespond(c, db, id)
	if !ok {
		return
	}

	if !enforceOwnership(c, who, util.RecipeOwnership(recipe), "recipes") {
		return
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Instructions != nil {
		recipe.Instructions = *req.Instructions
	}
	if req.Category != nil {
		if !model.ValidRecipeCategory(*req.Category) {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Unknown recipe category",
				Err: fmt.Errorf("invalid category %q", *req.Category),
			})
			return
		}
		recipe.Category = *req.Category
	}
	if req.PrepTime != nil {
		recipe.PrepTime = *req.PrepTime
	}
	if req.CookTime != nil {
		recipe.CookTime = *req.CookTime
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Calories != nil {
		recipe.Calories = *req.Calories
	}
	if req.IsPublic != nil {
		recipe.IsPublic = *req.IsPublic
	}

	if err := db.Omit("Dietitian", "DietPlans").Save(&recipe).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update recipe", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Recipe updated", Data: recipe})
}

// DeleteRecipe removes a recipe. The owning dietitian or an admin; join
// rows to diet plans are cleared with it.
func DeleteRecipe(c *gin.Context) {
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

	var recipe model.Recipe
	err := db.First(&recipe, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Recipe not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve recipe", Err: err})
		return
	}

	if !enforceOwnership(c, who, util.RecipeOwnership(recipe), "recipes") {
		return
	}

	if err := db.Select("DietPlans").Delete(&recipe).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete recipe", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Recipe deleted successfully",
		Data: map[string]uint{"deletedRecipeId": recipe.ID},
	})
}
