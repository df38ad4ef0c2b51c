package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/liveblog-comb/app/feed"
	"github.com/lysyi3m/liveblog-comb/app/tasks"
)

// NewHandler builds the HTTP handlers. health may be nil when the store
// cannot report connectivity.
func NewHandler(settings feed.SettingsProvider, current *feed.Current,
	scheduler tasks.TaskSchedulerInterface, health HealthChecker) *Handler {
	return &Handler{
		settings:  settings,
		current:   current,
		generator: feed.NewGenerator(),
		filterer:  feed.NewFilterer(),
		extractor: feed.NewContentExtractor(),
		scheduler: scheduler,
		health:    health,
	}
}

// state returns the current state or answers 503 when none exists yet.
func (h *Handler) state(c *gin.Context) (*feed.State, bool) {
	state := h.current.Get()
	if state == nil {
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Liveblog not parsed yet"})
		return nil, false
	}
	return state, true
}

func (h *Handler) GetLiveblog(c *gin.Context) {
	h.writeView(c, false)
}

func (h *Handler) GetLiveblogPreview(c *gin.Context) {
	h.writeView(c, true)
}

func (h *Handler) writeView(c *gin.Context, preview bool) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	settings := h.settings.GetSettings()
	view := h.filterer.Run(state, settings.Headlines, preview)

	c.Header("X-Feed-Status", string(view.Status))
	c.Header("X-Feed-Posts", strconv.Itoa(len(view.Posts)))
	c.Header("X-Last-Parsed", h.current.UpdatedAt().Format(time.RFC3339))
	if preview {
		c.Header("Cache-Control", "no-store")
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing post slug parameter"})
		return
	}

	state, ok := h.state(c)
	if !ok {
		return
	}

	preview := c.Query("preview") == "true"
	post, found := h.filterer.Find(state, slug, preview)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	response := PostResponse{Post: post}
	if excerpt, err := h.extractor.Run(post, feed.DefaultExcerptLength); err != nil {
		slog.Warn("Could not build post excerpt", "slug", slug, "error", err)
	} else {
		response.Excerpt = excerpt
	}

	if link := h.settings.GetSettings().Link; link != "" {
		response.ShareURL = fmt.Sprintf("%s#post-%s", link, slug)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetRSS(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	rss, err := h.generator.Run(state, h.settings.GetSettings())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Status", string(state.Status))
	c.Header("X-Last-Parsed", h.current.UpdatedAt().Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	status := http.StatusOK
	if state := h.current.Get(); state != nil {
		health["status"] = state.Status
		health["posts"] = len(state.Posts)
		health["last_parsed"] = h.current.UpdatedAt().Format(time.RFC3339)
	} else {
		health["status"] = "starting"
		status = http.StatusServiceUnavailable
	}

	if h.health != nil {
		health["store"] = h.health.Health(c.Request.Context())
	}

	c.JSON(status, health)
}

func (h *Handler) APIStatus(c *gin.Context) {
	settings := h.settings.GetSettings()

	status := map[string]interface{}{
		"revision":    h.current.Revision(),
		"last_parsed": h.current.UpdatedAt(),
		"settings": map[string]interface{}{
			"name":                 settings.Name,
			"sponsorship_position": settings.Sponsorship.Position,
			"headline_posts":       settings.Headlines,
			"timeout":              (time.Duration(settings.Timeout) * time.Second).String(),
		},
	}

	if state := h.current.Get(); state != nil {
		status["status"] = state.Status
		status["posts"] = len(state.Posts)
		status["pinned"] = state.PinnedPost != nil
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) APIReparse(c *gin.Context) {
	task := h.scheduler.NewParseTask(true)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing parse task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue parse task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Parse task enqueued successfully",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func (h *Handler) APIReloadSettings(c *gin.Context) {
	task := h.scheduler.NewReloadSettingsTask()
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing reload task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue reload task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Settings reload enqueued successfully",
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
