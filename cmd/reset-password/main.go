package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"carproban-backend/internal/repository"
	"carproban-backend/pkg/database"
)

// Resets a user's password from the command line. Usage:
//
//	reset-password <email> [new-password]
//
// Password defaults to RESET_PASSWORD env or "admin123".
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, relying on system env")
	}

	if len(os.Args) < 2 {
		logrus.Fatal("usage: reset-password <email> [new-password]")
	}
	email := os.Args[1]

	newPassword := os.Getenv("RESET_PASSWORD")
	if len(os.Args) > 2 {
		newPassword = os.Args[2]
	}
	if newPassword == "" {
		newPassword = "admin123"
	}

	db := database.ConnectDB()
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(email)
	if err != nil {
		logrus.WithError(err).Fatalf("user %s not found", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Fatal("failed to hash password")
	}

	if err := userRepo.UpdatePassword(user.ID, string(hashed)); err != nil {
		logrus.WithError(err).Fatal("failed to update password")
	}
	// Rotate token_version so any live session for this user is invalidated.
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.NewString()); err != nil {
		logrus.WithError(err).Fatal("failed to rotate token version")
	}

	logrus.WithField("email", email).Info("password reset")
}
