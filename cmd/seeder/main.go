// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/unclebandit/journey-engine/internal/config"
	"github.com/unclebandit/journey-engine/internal/db"
	"github.com/unclebandit/journey-engine/internal/logging"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/repository"
	"github.com/unclebandit/journey-engine/internal/service"
)

// seedFile is the YAML layout read by the seeder.
type seedFile struct {
	Contacts  []model.Contact  `yaml:"contacts"`
	Campaigns []model.Campaign `yaml:"campaigns"`
}

func loadSeed(path string) (*seedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// apply stores every contact and campaign. Records go through the services
// so ids, timestamps and summary fields are set the same way as in the API.
func apply(ctx context.Context, seed *seedFile, campaigns *service.CampaignService, contacts *service.ContactService, log logrus.FieldLogger) error {
	for i := range seed.Contacts {
		c, err := contacts.CreateContact(ctx, &seed.Contacts[i])
		if err != nil {
			return fmt.Errorf("contact %q: %w", seed.Contacts[i].Name, err)
		}
		log.WithField("contact_id", c.ID).Infof("seeded contact %s", c.Name)
	}
	for i := range seed.Campaigns {
		res, err := campaigns.SaveCampaign(ctx, &seed.Campaigns[i])
		if err != nil {
			return fmt.Errorf("campaign %q: %w", seed.Campaigns[i].Name, err)
		}
		log.WithFields(logrus.Fields{
			"campaign_id": res.Campaign.ID,
			"progress":    res.Campaign.Progress,
		}).Infof("seeded campaign %s", res.Campaign.Name)
	}
	return nil
}

func main() {
	file := flag.String("file", "seed/journeys.yaml", "YAML seed file")
	migrateHistory := flag.Bool("migrate-history", false, "lift legacy notes markers into structured contact history and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	conn, dialect, err := db.Open(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn, Dialect: dialect}
	contactRepo := &repository.ContactRepository{DB: conn, Dialect: dialect}
	campaignService := &service.CampaignService{CampaignRepo: campaignRepo, Log: log}
	contactService := &service.ContactService{ContactRepo: contactRepo, CampaignRepo: campaignRepo, Log: log}

	ctx := context.Background()

	if *migrateHistory {
		n, err := contactService.MigrateHistory(ctx)
		if err != nil {
			log.WithError(err).Fatal("history migration failed")
		}
		log.WithField("contacts", n).Info("history migration completed")
		return
	}

	seed, err := loadSeed(*file)
	if err != nil {
		log.WithError(err).Fatal("failed to load seed")
	}
	if err := apply(ctx, seed, campaignService, contactService, log); err != nil {
		log.WithError(err).Fatal("seeding failed")
	}
	log.Info("database seeding completed successfully")
}
