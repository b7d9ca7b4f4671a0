package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ai-content-scheduler/internal/config"
	"ai-content-scheduler/internal/domain/model"
	pg "ai-content-scheduler/internal/infra/db/postgres"
)

// Seeds a handful of demo schedules, one per supported content type, so the
// dispatch pass has something to pick up in a fresh environment.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	owner := flag.String("owner", "demo-owner", "owner id for the seeded schedules")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := pg.NewScheduleRepo(pool)
	now := time.Now().UTC()

	seed := []struct {
		ContentType model.ContentType
		Prompt      string
		RawSettings string
	}{
		{
			model.ContentTypeImageGeneration,
			"a minimalist poster of a mountain sunrise",
			`{"max_images": 5, "aspect_ratio": "2:3"}`,
		},
		{
			model.ContentTypePrintOnShirt,
			"blend the two designs into one shirt print",
			`{"use_bucket_images": true,
			  "bucket_set_a": ["https://assets.example/designs/a1.png", "https://assets.example/designs/a2.png"],
			  "bucket_set_b": ["https://assets.example/designs/b1.png"]}`,
		},
		{
			model.ContentTypeVideoGeneration,
			"slow pan over a foggy forest at dawn",
			`{"max_videos": 2, "video_duration_seconds": 5}`,
		},
	}

	for _, s := range seed {
		sched := &model.Schedule{
			ID:          uuid.NewString(),
			OwnerID:     *owner,
			ContentType: s.ContentType,
			Prompt:      s.Prompt,
			Config:      model.ScheduleConfig{Enabled: true, DurationHours: 24, IntervalMinutes: 60},
			RawSettings: []byte(s.RawSettings),
			Status:      model.ScheduleStatusActive,
			CreatedAt:   now,
			NextRun:     &now,
		}
		if err := repo.Save(ctx, nil, sched); err != nil {
			log.Fatalf("seed %s schedule: %v", s.ContentType, err)
		}
		fmt.Printf("seeded: %s (id=%s, due now)\n", s.ContentType, sched.ID)
	}

	fmt.Println("Seeding complete.")
}
