package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pslinks/internal/config"
	"github.com/dgallion1/pslinks/internal/dsc"
	"github.com/dgallion1/pslinks/internal/pathstore"
	"github.com/dgallion1/pslinks/internal/stats"
)

// Orchestrator manages the document parse pipeline.
type Orchestrator struct {
	jobs  *JobStore
	docs  *DocumentStore
	queue chan *Job
	stats *stats.ParseStats
	ps    *pathstore.Client
	log   *slog.Logger
	cfg   config.Config

	cancel   context.CancelFunc
	workers  sync.WaitGroup
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewOrchestrator creates the pipeline. ps may be nil, which disables
// persistence.
func NewOrchestrator(cfg config.Config, ps *pathstore.Client, st *stats.ParseStats, log *slog.Logger) *Orchestrator {
	if st == nil {
		st = stats.NewParseStats(cfg.StatsWindow)
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		docs:  NewDocumentStore(),
		queue: make(chan *Job, cfg.MaxQueueSize),
		stats: st,
		ps:    ps,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := dsc.Options{
		Logger:       o.log,
		Encoding:     o.cfg.InputEncoding,
		MaxLineBytes: o.cfg.MaxLineBytes,
	}
	for range o.cfg.WorkerCount {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o.docs, o.stats, o.ps, o.log, opts, o.cfg.DedupEnabled)
			for job := range o.queue {
				w.Process(workerCtx, job)
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop closes the queue, waits for the workers to finish every queued job,
// then stops the cleanup loop. Submit must not be called after Stop.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.queue)
		o.workers.Wait()
		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
	})
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Documents returns the in-memory document store.
func (o *Orchestrator) Documents() *DocumentStore {
	return o.docs
}

// Stats returns the parse latency tracker.
func (o *Orchestrator) Stats() *stats.ParseStats {
	return o.stats
}

// PersistedDocuments lists the meta nodes of persisted documents. It returns
// nil when persistence is disabled.
func (o *Orchestrator) PersistedDocuments(ctx context.Context, limit int) ([]pathstore.ListChildrenResponse, error) {
	if o.ps == nil {
		return nil, nil
	}
	return o.ps.ListChildren(ctx, documentsPrefix, limit)
}

// DeleteDocument removes a document from memory and, when persistence is
// enabled, from pathstore. It reports whether anything was found.
func (o *Orchestrator) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	stored := o.docs.Get(docID)
	found := o.docs.Delete(docID)
	if o.ps == nil {
		return found, nil
	}

	hash := ""
	if stored != nil {
		hash = stored.ContentHash
	} else if meta, err := o.ps.GetNode(ctx, docPrefix(docID)+"/meta"); err != nil {
		return found, fmt.Errorf("read meta: %w", err)
	} else if meta != nil {
		found = true
		hash = metaContentHash(meta.Value)
	}

	if err := o.ps.DeleteNode(ctx, docPrefix(docID), true); err != nil {
		return found, fmt.Errorf("delete document nodes: %w", err)
	}
	if hash != "" {
		if err := o.ps.DeleteNode(ctx, hashIndexPath(hash, docID), false); err != nil {
			o.log.Warn("hash index delete failed", "doc_id", docID, "error", err)
		}
	}
	return found, nil
}
