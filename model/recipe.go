package model

import "gorm.io/gorm"

// RecipeCategories is the closed list of meal-type categories accepted
// for recipes. An empty category is also allowed.
var RecipeCategories = []string{
	"Kahvaltı",
	"Ana Yemek",
	"Tatlı",
	"Ara Öğün",
	"Çorba",
	"Salata",
	"İçecek",
}

// ValidRecipeCategory reports whether the category is empty or one of
// the known meal types.
func ValidRecipeCategory(category string) bool {
	if category == "" {
		return true
	}
	for _, c := range RecipeCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Recipe is authored by a dietitian. Public recipes are visible to
// everyone; private ones only to the owner and to clients whose latest
// diet plan was written by the owner.
type Recipe struct {
	gorm.Model
	Name         string     `json:"name" gorm:"column:name;not null"`
	Description  string     `json:"description" gorm:"column:description;type:text"`
	Ingredients  string     `json:"ingredients" gorm:"column:ingredients;type:text"`
	Instructions string     `json:"instructions" gorm:"column:instructions;type:text"`
	Category     string     `json:"category" gorm:"column:category"`
	PrepTime     int        `json:"prepTime" gorm:"column:prep_time"`
	CookTime     int        `json:"cookTime" gorm:"column:cook_time"`
	Servings     int        `json:"servings" gorm:"column:servings"`
	Calories     int        `json:"calories" gorm:"column:calories"`
	IsPublic     bool       `json:"isPublic" gorm:"column:is_public;default:false"`
	DietitianID  uint       `json:"dietitianId" gorm:"column:dietitian_id;not null;index"`
	Dietitian    *User      `json:"dietitian,omitempty" gorm:"foreignKey:DietitianID"`
	DietPlans    []DietPlan `json:"dietPlans,omitempty" gorm:"many2many:diet_plan_recipes"`
}
