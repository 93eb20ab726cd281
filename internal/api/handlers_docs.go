package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/pslinks/internal/pipeline"
	"github.com/dgallion1/pslinks/internal/report"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists parsed documents held in memory and, when
// persistence is enabled, the persisted document meta nodes.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.orchestrator.Documents().List()

	resp := map[string]any{"documents": docs}
	persisted, err := s.orchestrator.PersistedDocuments(r.Context(), 200)
	if err != nil {
		jsonError(w, "failed to list persisted documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	if persisted != nil {
		var metas []map[string]any
		for _, child := range persisted {
			if strings.HasSuffix(child.Key, ".meta") || strings.HasSuffix(child.Key, "/meta") {
				metas = append(metas, map[string]any{
					"key":   child.Key,
					"value": json.RawMessage(child.Value),
				})
			}
		}
		resp["persisted"] = metas
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetDocument returns the export of a document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   stored.ID,
		"filename": stored.Filename,
		"title":    stored.Title,
		"export":   stored.Doc.Export(),
	})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.lookup(w, r)
	if !ok {
		return
	}
	page := stored.Doc.PageDataFor(chi.URLParam(r, "page"))
	if page == nil {
		jsonError(w, "page not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res := stored.Doc.ResourceData(chi.URLParam(r, "resourceID"))
	if res == nil {
		jsonError(w, "resource not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImageMap(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.lookup(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "page must be a number", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "page-" + strconv.Itoa(n)
	}
	out, err := report.ImageMap(stored.Doc, n, name)
	if errors.Is(err, report.ErrNoPage) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

// handleReport renders the link report. format=markdown returns the source
// Markdown instead of HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(report.Markdown(stored.Doc, stored.Title))
		return
	}
	out, err := report.HTML(stored.Doc, stored.Title)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

// handleDeleteDocument removes a document from memory and from pathstore.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	found, err := s.orchestrator.DeleteDocument(r.Context(), docID)
	if err != nil {
		s.log.Error("delete failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if !found {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*pipeline.StoredDocument, bool) {
	stored := s.orchestrator.Documents().Get(chi.URLParam(r, "docID"))
	if stored == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	return stored, true
}
