package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/sunderlandtech/backend/internal/auth"
	"github.com/sunderlandtech/backend/internal/config"
	"github.com/sunderlandtech/backend/internal/db"
	"github.com/sunderlandtech/backend/internal/events"
	"github.com/sunderlandtech/backend/internal/inquiries"
	"github.com/sunderlandtech/backend/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var eventCategories = []string{"community", "company", "conference", "workshop"}

// seeds the database with an admin user and fake events / inquiries,
// for local development against a real postgres
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	adminUsername := flag.String("admin-username", "admin", "username for the seeded admin user")
	adminPassword := flag.String("admin-password", "", "password for the seeded admin user (generated when empty)")
	eventsCount := flag.Int("events", 20, "number of fake events to create")
	inquiriesCount := flag.Int("inquiries", 50, "number of fake inquiries to create")
	flag.Parse()

	if *adminPassword == "" {
		generated, err := pkg.GenerateRandomString(16)
		if err != nil {
			log.Fatalf("generate admin password: %s", err)
		}
		*adminPassword = generated
		log.Infof("admin password not set, generated one: %s", generated)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	passwordHash, err := pkg.HashPassword(*adminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %s", err)
	}

	admin := &auth.Admin{
		ID:           uuid.NewString(),
		Username:     *adminUsername,
		PasswordHash: passwordHash,
	}
	if err := auth.NewRepo(dbPool).Add(ctx, admin); err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			log.Warnf("admin user [%s] already exists, skipping", admin.Username)
		} else {
			log.Fatalf("add admin user: %s", err)
		}
	} else {
		log.Infof("admin user [%s] created: %s", admin.Username, admin.ID)
	}

	eventsRepo := events.NewRepo(dbPool)
	for i := 0; i < *eventsCount; i++ {
		eventDate := gofakeit.DateRange(
			time.Now().AddDate(0, -2, 0),
			time.Now().AddDate(0, 6, 0),
		)
		event := &events.Event{
			Name:        gofakeit.Company() + " " + gofakeit.HackerNoun(),
			Date:        eventDate.Format("2006-01-02"),
			Time:        fmt.Sprintf("%02d:00", gofakeit.Number(9, 20)),
			Location:    gofakeit.City(),
			Description: gofakeit.Sentence(12),
			Link:        gofakeit.URL(),
			Category:    eventCategories[gofakeit.Number(0, len(eventCategories)-1)],
			AdminID:     admin.ID,
		}
		if _, err := eventsRepo.Add(ctx, event); err != nil {
			log.Fatalf("add event %d: %s", i, err)
		}
	}
	log.Infof("%d events created", *eventsCount)

	inquiriesRepo := inquiries.NewRepo(dbPool)
	for i := 0; i < *inquiriesCount; i++ {
		inquiry := &inquiries.Inquiry{
			Name:        gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
			CompanyName: gofakeit.Company(),
			Country:     gofakeit.Country(),
			JobTitle:    gofakeit.JobTitle(),
			JobDetails:  gofakeit.Paragraph(1, 3, 12, " "),
			CreatedAt:   gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		}
		if _, err := inquiriesRepo.Add(ctx, inquiry); err != nil {
			log.Fatalf("add inquiry %d: %s", i, err)
		}
	}
	log.Infof("%d inquiries created", *inquiriesCount)
}
