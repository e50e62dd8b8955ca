// Command seed provisions the admin account. Admins cannot register
// through the API, so deployments run this once with ADMIN_EMAIL,
// ADMIN_NAME and ADMIN_PASSWORD set.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/gearbook/car-service-api/internal/config"
	dbpkg "github.com/gearbook/car-service-api/internal/db"
	"github.com/gearbook/car-service-api/internal/models"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	name := os.Getenv("ADMIN_NAME")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || name == "" || password == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_NAME and ADMIN_PASSWORD are required")
	}

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("admin %s already exists (id=%d)", email, existing.ID)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := models.User{
		Email:        email,
		Name:         name,
		Role:         models.RoleAdmin,
		PasswordHash: string(hashed),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	log.Printf("admin %s created (id=%d)", email, admin.ID)
}
