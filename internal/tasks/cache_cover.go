package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// CoverFetcher downloads a cover into the local cache. Implemented by covers.Cache.
type CoverFetcher interface {
	Fetch(ctx context.Context, bookID uint, coverURL string) (string, error)
}

// CacheCoverTask downloads one book cover.
type CacheCoverTask struct {
	BookID   uint   `json:"book_id"`
	CoverURL string `json:"cover_url"`
}

// Config returns the queue configuration for cover downloads.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
func CacheCoverProcessor(fetcher CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover cache not configured")
		}

		path, err := fetcher.Fetch(ctx, task.BookID, task.CoverURL)
		if err != nil {
			return fmt.Errorf("cache cover for book %d: %w", task.BookID, err)
		}

		log.Info().Uint("book_id", task.BookID).Str("path", path).Msg("Cover cached")
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover downloads.
func NewCacheCoverQueue(fetcher CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(fetcher))
}
