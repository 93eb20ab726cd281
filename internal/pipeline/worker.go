package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/pslinks/internal/dsc"
	"github.com/dgallion1/pslinks/internal/parser"
	"github.com/dgallion1/pslinks/internal/pathstore"
	"github.com/dgallion1/pslinks/internal/stats"
)

const (
	documentsPrefix = "pslinks/documents"
	hashPrefix      = "pslinks/by_hash"
	sourceTag       = "pslinks:"
)

func docPrefix(docID string) string { return documentsPrefix + "/" + docID }

func hashIndexPath(hash, docID string) string { return hashPrefix + "/" + hash + "/" + docID }

// Worker processes a single document job.
type Worker struct {
	docs      *DocumentStore
	stats     *stats.ParseStats
	pathstore *pathstore.Client
	log       *slog.Logger
	opts      dsc.Options
	dedup     bool
}

func NewWorker(docs *DocumentStore, st *stats.ParseStats, ps *pathstore.Client, log *slog.Logger, opts dsc.Options, dedup bool) *Worker {
	return &Worker{
		docs:      docs,
		stats:     st,
		pathstore: ps,
		log:       log,
		opts:      opts,
		dedup:     dedup,
	}
}

// Process parses the job's file, publishes the document in memory and, when
// a pathstore client is configured, persists it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	opts := w.opts
	opts.Logger = log
	p, err := parser.ForFile(job.Filename, opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	took := time.Since(start)
	job.SetFileData(nil)
	if err != nil {
		w.stats.RecordFailure(took)
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	pages, links := len(doc.Pages()), countLinks(doc)
	w.stats.Record(took, pages, links)
	job.SetParsed(pages, links, len(doc.Resources()), took)
	log.Info("parsed document", "pages", pages, "links", links, "duration_ms", took.Milliseconds())

	title := job.Title
	if title == "" {
		title, _ = doc.Attrs.Get("Title")
	}
	if title == "" {
		title = job.Filename
	}

	// Phase 2: Publish in memory.
	stored := &StoredDocument{
		ID:          job.DocID,
		Filename:    job.Filename,
		Title:       title,
		ContentHash: job.ContentHash,
		ParsedAt:    time.Now(),
		Pages:       pages,
		Links:       links,
		Doc:         doc,
	}
	w.docs.Put(stored)

	if w.pathstore == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2.5: Dedup check
	if w.dedup {
		exists, existingDocID, err := w.checkDuplicate(ctx, job)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate document, skipping persistence", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 3: Persist.
	job.SetStatus(StatusStoring, "storing")
	if w.persist(ctx, log, job, stored) {
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// persist writes the export, one node per page, one edge per resolved link,
// the meta node and the hash index. It reports whether any write failed.
func (w *Worker) persist(ctx context.Context, log *slog.Logger, job *Job, stored *StoredDocument) bool {
	prefix := docPrefix(stored.ID)
	source := sourceTag + stored.ID
	export := stored.Doc.Export()
	hadErrors := false

	put := func(path string, value any, salience float64) {
		err := withRetry(ctx, log, "put "+path, func() error {
			return w.pathstore.PutNode(ctx, path, pathstore.NodeRequest{
				Value:    value,
				Salience: salience,
				Source:   source,
			})
		})
		if err != nil {
			log.Error("store failed", "path", path, "error", err)
			job.AddError(fmt.Sprintf("store %s: %s", path, err))
			hadErrors = true
			return
		}
		job.AddStored(1, 0)
	}

	put(prefix+"/export", export, 0.3)
	// Export lists pages in declaration order, like Pages.
	pages := stored.Doc.Pages()
	for i, pe := range export.Pages {
		put(pagePath(prefix, pages[i]), pe, 0.2)
	}

	for _, p := range pages {
		for _, id := range p.Links {
			target := stored.Doc.DestinationPage(id)
			if target == nil {
				continue
			}
			req := pathstore.LinkRequest{
				From:    pagePath(prefix, p),
				To:      pagePath(prefix, target),
				Weight:  1,
				Summary: id,
			}
			err := withRetry(ctx, log, "link "+id, func() error {
				return w.pathstore.PutLink(ctx, req)
			})
			if err != nil {
				log.Error("link write failed", "link", id, "error", err)
				job.AddError(fmt.Sprintf("link %s: %s", id, err))
				hadErrors = true
				continue
			}
			job.AddStored(0, 1)
		}
	}

	put(prefix+"/meta", map[string]any{
		"filename":     stored.Filename,
		"title":        stored.Title,
		"content_hash": stored.ContentHash,
		"pages":        stored.Pages,
		"links":        stored.Links,
		"parsed_at":    stored.ParsedAt.Format(time.RFC3339),
	}, 0.5)

	put(hashIndexPath(stored.ContentHash, stored.ID), map[string]any{
		"filename":  stored.Filename,
		"parsed_at": stored.ParsedAt.Format(time.RFC3339),
	}, 0.1)

	snap := job.Snapshot()
	log.Info("storage complete", "nodes", snap.Progress.NodesStored, "links", snap.Progress.LinksStored, "errors", hadErrors)
	return hadErrors
}

// pagePath keys a page node on the page's unique key, so labels that are not
// numbers get their own nodes.
func pagePath(prefix string, p *dsc.Page) string {
	return prefix + "/pages/" + url.PathEscape(p.Key)
}

// checkDuplicate checks if this content hash was already persisted.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	children, err := w.pathstore.ListChildren(ctx, hashPrefix+"/"+job.ContentHash, 1)
	if err != nil {
		return false, "", err
	}
	if len(children) > 0 {
		key := children[0].Key
		if i := strings.LastIndexAny(key, "./"); i >= 0 {
			key = key[i+1:]
		}
		return true, key, nil
	}
	return false, "", nil
}

func metaContentHash(raw json.RawMessage) string {
	var meta struct {
		ContentHash string `json:"content_hash"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ""
	}
	return meta.ContentHash
}
