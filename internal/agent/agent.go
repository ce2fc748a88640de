// Package agent drives the summarization pipeline: chunk dispatch against a
// text-generation backend and final-report merging over the summary store.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/netlens/netsummary/internal/backend"
	"github.com/netlens/netsummary/internal/chunker"
	"github.com/netlens/netsummary/internal/errortypes"
	"github.com/netlens/netsummary/internal/summarycache"
	"github.com/netlens/netsummary/internal/telemetry"
)

// mergeInstruction asks the backend to consolidate the accumulated partial
// summaries; the cached entries are joined under it with mergeDelimiter.
const mergeInstruction = "Combine the partial summaries below into a single, concise report " +
	"for a network-engineering audience. Do not omit important details.\n\n"

// mergeDelimiter separates cached summaries inside the merge prompt.
const mergeDelimiter = "\n---\n"

// Agent orchestrates chunked summarization for (tenant, resource) sessions.
// All collaborators are injected at construction and the configuration they
// carry is immutable afterwards.
type Agent struct {
	client  *backend.Client
	chunker chunker.Chunker
	store   summarycache.Store
	logger  *slog.Logger
	metrics *telemetry.MetricsCollector
}

// New creates an Agent. A nil logger falls back to slog.Default; a nil
// metrics collector gets a private one.
func New(client *backend.Client, ch chunker.Chunker, store summarycache.Store, logger *slog.Logger, metrics *telemetry.MetricsCollector) (*Agent, error) {
	if client == nil || ch == nil || store == nil {
		return nil, errortypes.ConfigError(errors.New("missing dependencies"), "agent requires a client, a chunker and a store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &Agent{
		client:  client,
		chunker: ch,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Generate splits rawOutput into chunks and sends each one to the backend in
// index order, appending every per-chunk summary to the session's store
// entry. It returns (true, lastChunkSummary) on full success and
// (false, reason) on the first classified failure; summaries already
// appended before a mid-run failure are retained, so a retried Generate
// re-processes all chunks and appends duplicate entries. Callers that need a
// clean slate use ResetSession first.
func (a *Agent) Generate(ctx context.Context, tenant, resource, rawOutput, instruction string) (bool, string) {
	key, err := summarycache.NewKey(tenant, resource)
	if err != nil {
		errortypes.LogError(a.logger, err)
		return false, err.Error()
	}

	chunks := chunker.Enumerate(a.chunker.Split(rawOutput))
	a.logger.Info("Analysing device output",
		"session", key.String(),
		"chunks", len(chunks),
		"raw_bytes", len(rawOutput))
	a.metrics.IncrementCounter(telemetry.MetricGenerateCalls, 1)
	a.metrics.IncrementCounter(telemetry.MetricGenerateChunks, int64(len(chunks)))

	for _, chunk := range chunks {
		partInstruction := fmt.Sprintf("%s (part %d/%d)", instruction, chunk.Index, chunk.Total)

		req, err := a.client.Adapter().BuildRequest(partInstruction, chunk.Text)
		if err != nil {
			errortypes.LogError(a.logger, err)
			return false, err.Error()
		}

		summary, err := a.client.Send(ctx, req)
		if err != nil {
			// Abort remaining chunks; progress so far stays in the store.
			a.logger.Warn("Aborting generate after chunk failure",
				"session", key.String(),
				"chunk", chunk.Index,
				"total", chunk.Total)
			return false, err.Error()
		}

		if err := a.store.Append(key, summary); err != nil {
			appErr := errortypes.DatabaseError(err, "failed to append chunk summary").
				WithField("session", key.String()).
				WithField("chunk", chunk.Index)
			errortypes.LogError(a.logger, appErr)
			return false, appErr.Error()
		}
		a.metrics.IncrementCounter(telemetry.MetricCacheAppends, 1)
		a.logger.Debug("Chunk summarised",
			"session", key.String(),
			"chunk", chunk.Index,
			"summary_bytes", len(summary))
	}

	summaries, err := a.store.Read(key)
	if err != nil {
		appErr := errortypes.DatabaseError(err, "failed to read session summaries").
			WithField("session", key.String())
		errortypes.LogError(a.logger, appErr)
		return false, appErr.Error()
	}
	if len(summaries) == 0 {
		return true, ""
	}
	return true, summaries[len(summaries)-1]
}

// GetFinalResponse produces the consolidated report for a session. An empty
// session fails without a network call; a single cached summary is returned
// verbatim, also without a network call; two or more summaries trigger
// exactly one merge round trip through the backend.
func (a *Agent) GetFinalResponse(ctx context.Context, tenant, resource string) (bool, string) {
	key, err := summarycache.NewKey(tenant, resource)
	if err != nil {
		errortypes.LogError(a.logger, err)
		return false, err.Error()
	}

	summaries, err := a.store.Read(key)
	if err != nil {
		appErr := errortypes.DatabaseError(err, "failed to read session summaries").
			WithField("session", key.String())
		errortypes.LogError(a.logger, appErr)
		return false, appErr.Error()
	}

	if len(summaries) == 0 {
		a.metrics.IncrementCounter(telemetry.MetricEmptyCacheDenied, 1)
		appErr := errortypes.EmptyCacheError(
			errors.New("session has no entries"),
			"no intermediate summaries found; call generate first",
		).WithField("session", key.String())
		errortypes.LogError(a.logger, appErr)
		return false, appErr.Message
	}

	if len(summaries) == 1 {
		a.metrics.IncrementCounter(telemetry.MetricShortcutReturns, 1)
		a.logger.Info("Returning single chunk summary without merge",
			"session", key.String())
		return true, summaries[0]
	}

	instruction := mergeInstruction + strings.Join(summaries, mergeDelimiter)
	req, err := a.client.Adapter().BuildRequest(instruction, "")
	if err != nil {
		errortypes.LogError(a.logger, err)
		return false, err.Error()
	}

	a.metrics.IncrementCounter(telemetry.MetricMergeCalls, 1)
	a.logger.Info("Merging chunk summaries",
		"session", key.String(),
		"summaries", len(summaries))

	merged, err := a.client.Send(ctx, req)
	if err != nil {
		return false, err.Error()
	}
	return true, merged
}

// ResetSession drops the store entry for a session and returns the number of
// summaries removed. It exists for callers that want a clean slate before
// retrying a failed Generate.
func (a *Agent) ResetSession(tenant, resource string) (int, error) {
	key, err := summarycache.NewKey(tenant, resource)
	if err != nil {
		errortypes.LogError(a.logger, err)
		return 0, err
	}

	removed, err := a.store.Reset(key)
	if err != nil {
		appErr := errortypes.DatabaseError(err, "failed to reset session").
			WithField("session", key.String())
		errortypes.LogError(a.logger, appErr)
		return 0, appErr
	}

	a.logger.Info("Session reset", "session", key.String(), "removed", removed)
	return removed, nil
}

// ChunkCount reports how many chunks the configured policy would split the
// output into, without dispatching anything.
func (a *Agent) ChunkCount(rawOutput string) int {
	return len(a.chunker.Split(rawOutput))
}

// Metrics returns the metrics collector for this agent.
func (a *Agent) Metrics() *telemetry.MetricsCollector {
	return a.metrics
}
