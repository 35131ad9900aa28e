// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/diyetisyenim/diyet-api/config"
	"github.com/diyetisyenim/diyet-api/endpoint"
	"github.com/diyetisyenim/diyet-api/middleware"
	"github.com/diyetisyenim/diyet-api/model"
	"github.com/diyetisyenim/diyet-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultAdminPassword = "admin123"

// seedAdminAccount makes sure the bootstrap admin exists. The password
// comes from ADMIN_PASSWORD, falling back to the development default.
func seedAdminAccount(db *gorm.DB) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return err
	}
	return model.SeedAdmin(db, hashed, salt)
}

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.DietPlan{},
		&model.Appointment{},
		&model.Recipe{},
		&model.Session{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error migrating schema: %v", err)
	}

	if err := seedAdminAccount(db); err != nil {
		log.Fatalf("Error seeding admin account: %v", err)
	}

	// Redis is optional; the API degrades to stateless tokens without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, continuing without session cache: %v", err)
	}

	util.SetSecurityLoggerDB(db)
	util.InitUserCacheFromEnv()
	if err := util.InitGeoIP(""); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}
	defer util.CloseGeoIP()

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	endpoint.RegisterRoutes(router)

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
