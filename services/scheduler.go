// services/scheduler.go
package services

import (
	"log"
	"time"

	"typing-test-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *PassageService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled passages
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var passages []models.Passage
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_at <= ?", models.PassageStatusScheduled, now).
				Find(&passages).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, p := range passages {
				p.Status = models.PassageStatusPublished
				p.PublishAt = nil
				if err := s.DB.Save(&p).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish passage %s: %v", p.ID, err)
				} else {
					log.Printf("✅ Auto-published passage: %s", p.Slug)
				}
			}
		}),
	)
}
