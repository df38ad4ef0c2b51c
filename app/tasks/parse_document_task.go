package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/feed"
	"github.com/lysyi3m/liveblog-comb/app/metrics"
)

const maxDocumentSize = 32 << 20

type ParseDocumentTask struct {
	Task
	Force      bool // parse even when the revision is memoised
	httpClient *http.Client
	parser     *feed.Parser
	settings   feed.SettingsProvider
	current    *feed.Current
	memo       *Memo
	userAgent  string
}

func NewParseDocumentTask(source string, force bool, httpClient *http.Client, parser *feed.Parser,
	settings feed.SettingsProvider, current *feed.Current, memo *Memo, userAgent string) *ParseDocumentTask {
	return &ParseDocumentTask{
		Task:       NewTask(TaskTypeParseDocument, source),
		Force:      force,
		httpClient: httpClient,
		parser:     parser,
		settings:   settings,
		current:    current,
		memo:       memo,
		userAgent:  userAgent,
	}
}

func (t *ParseDocumentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.loadDocument(ctx)
	if err != nil {
		metrics.RecordFetchError()
		return fmt.Errorf("failed to load document: %w", err)
	}
	metrics.RecordDocumentSize(len(data))

	revision := Revision(data)
	if !t.Force {
		if state, ok := t.memo.Get(revision); ok {
			if t.current.Revision() != revision {
				t.current.Set(state, revision)
			}
			metrics.RecordParse(metrics.OutcomeMemoized, 0)
			slog.Debug("Document unchanged, skipping parse", "source", t.Source, "revision", revision[:12])
			return nil
		}
	}

	start := time.Now()
	state, err := t.parser.Run(ctx, string(data), nil)
	if err != nil {
		metrics.RecordParse(metrics.OutcomeFatal, time.Since(start).Seconds())
		return fmt.Errorf("failed to parse document: %w", err)
	}

	outcome := metrics.OutcomeSuccess
	if state.Status == feed.StatusError {
		outcome = metrics.OutcomeFallback
	}
	metrics.RecordParse(outcome, time.Since(start).Seconds())

	t.memo.Add(revision, state)
	t.current.Set(state, revision)

	published, drafts := 0, 0
	for _, post := range state.Posts {
		switch {
		case post.Sponsorship:
		case post.Published():
			published++
		default:
			drafts++
		}
	}
	metrics.RecordState(string(state.Status), published, drafts)

	slog.Info("Task completed",
		"type", "ParseDocument",
		"source", t.Source,
		"duration", t.GetDuration(),
		"status", state.Status,
		"posts", len(state.Posts),
		"revision", revision[:12])

	return nil
}

func (t *ParseDocumentTask) loadDocument(ctx context.Context) ([]byte, error) {
	if !isRemote(t.Source) {
		return os.ReadFile(t.Source)
	}
	return t.fetchDocument(ctx, t.Source)
}

func (t *ParseDocumentTask) fetchDocument(ctx context.Context, url string) ([]byte, error) {
	timeout := time.Duration(t.settings.GetSettings().Timeout) * time.Second
	if timeout <= 0 {
		timeout = feed.DefaultTimeout * time.Second
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
