package main

import (
	"context"
	"log"
	"time"
)

// seedDemoPartners inserts a handful of profiles so a fresh local install
// has something to browse. Skips seeding when the catalog is non-empty.
func seedDemoPartners(ctx context.Context, partners partnerStore) error {
	existing, err := partners.List(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	samples := []PartnerProfile{
		{Name: "Ayesha Rahman", Subject: "Mathematics", Email: "ayesha@example.com", ExperienceLevel: "Expert", Rating: 4.8, StudyMode: "online"},
		{Name: "Tom Becker", Subject: "Physics", Email: "tom@example.com", ExperienceLevel: "Intermediate", Rating: 4.1, StudyMode: "in-person"},
		{Name: "Lina Costa", Subject: "Chemistry", Email: "lina@example.com", ExperienceLevel: "Beginner", Rating: 3.7, StudyMode: "online"},
	}
	now := time.Now().UTC()
	for _, p := range samples {
		p.CreatedAt = now
		if _, err := partners.Create(ctx, p); err != nil {
			return err
		}
	}
	log.Printf("[seed] inserted %d demo partners", len(samples))
	return nil
}
