package handlers

import (
	"log/slog"
	"net/http"

	"sitegen/internal/metrics"
	"sitegen/internal/models"
	"sitegen/internal/preview"
	"sitegen/internal/slug"
	"sitegen/internal/storage"
)

// PreviewProject handles GET /api/projects/{id}/preview. The assembled
// page is served from the page cache when possible.
func (a *API) PreviewProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if page, hit := a.pages.Get(r.Context(), id); hit {
		metrics.PreviewCacheTotal.WithLabelValues("hit").Inc()
		writeHTML(w, page, "HIT")
		return
	}
	metrics.PreviewCacheTotal.WithLabelValues("miss").Inc()

	p, ok := a.loadProject(w, r, id)
	if !ok {
		return
	}
	page, err := preview.Assemble(p)
	if err != nil {
		slog.Error("assemble preview", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build preview")
		return
	}

	a.pages.Set(r.Context(), id, page)
	writeHTML(w, page, "MISS")
}

func writeHTML(w http.ResponseWriter, page []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// DownloadProject handles GET /api/projects/{id}/download and returns the
// project as a zip of index.html, styles.css and script.js.
func (a *API) DownloadProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, ok := a.loadProject(w, r, id)
	if !ok {
		return
	}

	data, err := preview.Bundle(p)
	if err != nil {
		slog.Error("bundle project", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+slug.ForProject(p.ID, p.Title)+`.zip"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// PublishProject handles POST /api/projects/{id}/publish: the assembled
// page is uploaded to object storage and its public URL returned.
func (a *API) PublishProject(w http.ResponseWriter, r *http.Request) {
	if a.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "Publishing is not configured")
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, ok := a.loadProject(w, r, id)
	if !ok {
		return
	}

	page, err := preview.Assemble(p)
	if err != nil {
		slog.Error("assemble page for publish", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build page")
		return
	}
	prefix := slug.ForProject(p.ID, p.Title)
	url, err := a.publisher.PublishSite(r.Context(), prefix, page)
	if err != nil {
		slog.Error("publish site", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to publish site")
		return
	}

	meta := readMetadata(p)
	// A renamed project publishes under a new slug; drop the old object.
	if old := meta.PublishedKey; old != "" && old != storage.SiteKey(prefix) {
		a.unpublish(r, id, old)
	}
	meta.PublishedKey = storage.SiteKey(prefix)
	meta.PublishedURL = url
	a.saveMetadata(r, id, meta)

	slog.Info("site published", "id", id, "url", url)
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// saveMetadata stores meta on the project. Failures are logged only: the
// page is already live.
func (a *API) saveMetadata(r *http.Request, id int64, meta projectMetadata) {
	encoded, err := meta.encode()
	if err == nil {
		_, err = a.projects.Update(r.Context(), id, models.ProjectUpdate{Metadata: encoded})
	}
	if err != nil {
		slog.Warn("record published site", "id", id, "error", err)
	}
}

// unpublish removes a published page from object storage.
func (a *API) unpublish(r *http.Request, id int64, key string) {
	if a.publisher == nil || key == "" {
		return
	}
	if err := a.publisher.Delete(r.Context(), key); err != nil {
		slog.Warn("remove published site", "id", id, "key", key, "error", err)
		return
	}
	slog.Info("published site removed", "id", id, "key", key)
}
