package main

import (
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"fun-writing-be/internal/model"
	"fun-writing-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🌱 Seeding writing prompts and demo accounts")

	seedPrompts(db)
	seedDemoStudent(db)

	color.Green("✅ Seeding done")
}

func seedPrompts(db *gorm.DB) {
	prompts := []model.WritingPrompt{
		{
			Title:      "The Friendly Dragon",
			PromptText: "Write a story about a dragon who wants to make friends with the children of a small village.",
			AgeGroup:   "7-9",
		},
		{
			Title:      "My Secret Treehouse",
			PromptText: "Describe a magical treehouse that only you can find. What is inside? Who visits you there?",
			AgeGroup:   "7-9",
		},
		{
			Title:      "A Day as an Astronaut",
			PromptText: "Imagine you wake up on a space station. Tell us about your day among the stars.",
			AgeGroup:   "10-12",
		},
		{
			Title:      "The Talking River",
			PromptText: "One morning the river behind your house starts talking. What does it say, and what happens next?",
			AgeGroup:   "10-12",
		},
	}

	for _, p := range prompts {
		var existing model.WritingPrompt
		err := db.Where("title = ?", p.Title).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&p).Error; err != nil {
				color.Red("Failed to seed prompt %q: %v", p.Title, err)
				continue
			}
			color.Yellow("Seeded prompt: %s", p.Title)
		}
	}
}

func seedDemoStudent(db *gorm.DB) {
	guardian := "guardian@example.com"
	trialEnd := time.Now().AddDate(0, 0, 14)

	demo := model.User{
		Email:         "demo.student@example.com",
		FullName:      "Demo Student",
		Role:          "student",
		Status:        "active",
		AgeGroup:      "7-9",
		GuardianEmail: &guardian,
		CreditBalance: 300, // signup grant
		TrialActive:   true,
		TrialEndsAt:   &trialEnd,
	}

	var existing model.User
	err := db.Where("email = ?", demo.Email).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := db.Create(&demo).Error; err != nil {
			color.Red("Failed to seed demo student: %v", err)
			return
		}
		color.Yellow("Seeded demo student: %s", demo.Email)
	}
}
