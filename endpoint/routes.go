package endpoint

import (
	"github.com/diyetisyenim/diyet-api/middleware"
	"github.com/diyetisyenim/diyet-api/model"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every API route onto the engine. Route-level role
// lists decide which roles reach a handler at all; per-row ownership is
// enforced inside the handlers.
func RegisterRoutes(r *gin.Engine) {
	loginLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})

	auth := r.Group("/auth")
	{
		auth.POST("/login", loginLimiter, Login)
		auth.POST("/register", loginLimiter, Register)
		auth.DELETE("/logout", middleware.Authenticate(), Logout)
		auth.GET("/profile", middleware.Authenticate(), GetProfile)
		auth.PATCH("/profile", middleware.Authenticate(), UpdateProfile)
		auth.DELETE("/profile", middleware.Authenticate(), DeleteProfile)
		auth.GET("/clients", middleware.Authenticate(), middleware.RequireRoles(model.RoleDietitian), ListClients)
		auth.GET("/dietitians", middleware.Authenticate(), middleware.RequireRoles(model.RoleClient), ListDietitians)
		auth.GET("/users", middleware.Authenticate(), middleware.RequireRoles(model.RoleAdmin), ListUsers)
		auth.DELETE("/users/:id", middleware.Authenticate(), middleware.RequireRoles(model.RoleAdmin), DeleteUser)
	}

	plans := r.Group("/diet-plans", middleware.Authenticate())
	{
		plans.GET("", middleware.RequireRoles(model.RoleAdmin), ListDietPlans)
		plans.GET("/my-plans", middleware.RequireRoles(model.RoleDietitian), ListMyDietPlans)
		plans.GET("/my-assigned-plans", middleware.RequireRoles(model.RoleClient), ListAssignedDietPlans)
		plans.GET("/:id", GetDietPlan)
		plans.POST("", middleware.RequireRoles(model.RoleDietitian), CreateDietPlan)
		plans.PATCH("/:id", middleware.RequireRoles(model.RoleDietitian), UpdateDietPlan)
		plans.DELETE("/:id", middleware.RequireRoles(model.RoleDietitian, model.RoleAdmin), DeleteDietPlan)
	}

	appts := r.Group("/appointments", middleware.Authenticate())
	{
		appts.GET("", middleware.RequireRoles(model.RoleAdmin), ListAppointments)
		appts.GET("/my-appointments", middleware.RequireRoles(model.RoleClient), ListMyAppointments)
		appts.GET("/my-client-appointments", middleware.RequireRoles(model.RoleDietitian), ListMyClientAppointments)
		appts.GET("/:id", GetAppointment)
		appts.POST("", middleware.RequireRoles(model.RoleDietitian, model.RoleClient), CreateAppointment)
		appts.PATCH("/:id", middleware.RequireRoles(model.RoleDietitian, model.RoleClient), UpdateAppointment)
		appts.DELETE("/:id", middleware.RequireRoles(model.RoleDietitian, model.RoleClient, model.RoleAdmin), DeleteAppointment)
	}

	recipes := r.Group("/recipes", middleware.Authenticate())
	{
		recipes.GET("", middleware.RequireRoles(model.RoleAdmin), ListRecipes)
		recipes.GET("/public", ListPublicRecipes)
		recipes.GET("/accessible", middleware.RequireRoles(model.RoleDietitian), ListAccessibleRecipes)
		recipes.GET("/client-accessible", middleware.RequireRoles(model.RoleClient), ListClientAccessibleRecipes)
		recipes.GET("/my-recipes", middleware.RequireRoles(model.RoleDietitian), ListMyRecipes)
		recipes.GET("/:id", GetRecipe)
		recipes.POST("", middleware.RequireRoles(model.RoleDietitian), CreateRecipe)
		recipes.PATCH("/:id", middleware.RequireRoles(model.RoleDietitian), UpdateRecipe)
		recipes.DELETE("/:id", middleware.RequireRoles(model.RoleDietitian, model.RoleAdmin), DeleteRecipe)
	}
}
