// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: an in-memory project
// repository and fakes for the generator, moderator and publisher.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"sitegen/internal/ai"
	"sitegen/internal/cache"
	"sitegen/internal/generator"
	"sitegen/internal/models"
	"sitegen/internal/store"
)

const sampleHTML = `<!DOCTYPE html><html><head><title>Bean There</title></head><body><main class="p-8"><h1>Bean There Coffee</h1></main></body></html>`

// memRepo is an in-memory ProjectRepository.
type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]*models.Project
	err      error // returned by every method when set
	finds    int
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, projects: make(map[int64]*models.Project)}
}

func (m *memRepo) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cp := *p
	cp.ID = m.nextID
	m.nextID++
	cp.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Add(time.Duration(cp.ID) * time.Minute)
	cp.UpdatedAt = cp.CreatedAt
	m.projects[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memRepo) FindByID(_ context.Context, id int64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (m *memRepo) filtered(wt models.WebsiteType) []models.Project {
	var out []models.Project
	for _, p := range m.projects {
		if wt == "" || p.WebsiteType == wt {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memRepo) List(_ context.Context, params store.ListParams) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	all := m.filtered(params.WebsiteType)
	if params.Skip >= len(all) {
		return nil, nil
	}
	all = all[params.Skip:]
	if params.Limit < len(all) {
		all = all[:params.Limit]
	}
	return all, nil
}

func (m *memRepo) Count(_ context.Context, wt models.WebsiteType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.filtered(wt))), nil
}

func (m *memRepo) Update(_ context.Context, id int64, u models.ProjectUpdate) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.WebsiteType != nil {
		p.WebsiteType = *u.WebsiteType
	}
	if u.Prompt != nil {
		p.Prompt = *u.Prompt
	}
	if u.HTML != nil {
		p.HTML = *u.HTML
	}
	if u.CSS != nil {
		p.CSS = *u.CSS
	}
	if u.Script != nil {
		p.Script = *u.Script
	}
	if u.Metadata != nil {
		meta := *u.Metadata
		p.Metadata = &meta
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Hour)
	out := *p
	return &out, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.projects[id]; !ok {
		return false, nil
	}
	delete(m.projects, id)
	return true, nil
}

// seed stores a project and returns it.
func (m *memRepo) seed(t *testing.T, title string, wt models.WebsiteType) *models.Project {
	t.Helper()
	p, err := m.Create(context.Background(), &models.Project{
		Title: title, WebsiteType: wt, Prompt: "a prompt long enough",
		HTML: sampleHTML, CSS: "<style>h1{color:brown}</style>", Script: "<script>init()</script>",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

// fakeGenerator returns a fixed result and records the request.
type fakeGenerator struct {
	result generator.Result
	calls  int
	last   generator.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req generator.Request) generator.Result {
	f.calls++
	f.last = req
	return f.result
}

func primaryResult() generator.Result {
	return generator.Result{
		Site:     generator.Site{HTML: sampleHTML, CSS: "<style>h1{color:brown}</style>", Script: "<script>init()</script>"},
		Stage:    generator.StagePrimary,
		Provider: "gemini",
		Elapsed:  1500 * time.Millisecond,
	}
}

type fakeModerator struct {
	result *ai.ModerationResult
	err    error
}

func (f *fakeModerator) CheckPrompt(context.Context, string) (*ai.ModerationResult, error) {
	return f.result, f.err
}

type fakePublisher struct {
	prefix  string
	page    []byte
	err     error
	deleted []string
}

func (f *fakePublisher) PublishSite(_ context.Context, prefix string, page []byte) (string, error) {
	f.prefix, f.page = prefix, page
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/sites/" + prefix + "/index.html", nil
}

func (f *fakePublisher) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

var errDB = errors.New("connection refused")

// testPageCache returns a page cache backed by miniredis.
func testPageCache(t *testing.T) *cache.PageCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewPageCache(client, time.Minute)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// do runs handler against a request built from method, target and body,
// with an optional {id} URL parameter.
func do(handler http.HandlerFunc, method, target, body, id string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if id != "" {
		req = withChiURLParam(req, "id", id)
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}
