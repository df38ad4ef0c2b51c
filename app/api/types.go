package api

import (
	"context"

	"github.com/lysyi3m/liveblog-comb/app/feed"
	"github.com/lysyi3m/liveblog-comb/app/tasks"
)

type GeneratorInterface interface {
	Run(state *feed.State, settings feed.Settings) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// HealthChecker is implemented by stores that can report connectivity.
type HealthChecker interface {
	Health(ctx context.Context) map[string]interface{}
}

type Handler struct {
	settings  feed.SettingsProvider
	current   *feed.Current
	generator GeneratorInterface
	filterer  *feed.Filterer
	extractor *feed.ContentExtractor
	scheduler tasks.TaskSchedulerInterface
	health    HealthChecker
}

type PostResponse struct {
	Post     feed.Post `json:"post"`
	Excerpt  string    `json:"excerpt"`
	ShareURL string    `json:"share_url,omitempty"`
}
