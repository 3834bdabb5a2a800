// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator turns a website description into html, css and js by
// asking a primary LLM provider, then a secondary one, and finally falling
// back to a static page. Generation never fails: the caller always gets a
// Site with non-empty html.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sitegen/internal/ai"
	"sitegen/internal/metrics"
	"sitegen/internal/models"
	"sitegen/internal/telemetry"
)

// Stage names reported in Result.Stage.
const (
	StagePrimary   = "primary"
	StageSecondary = "secondary"
	StageFallback  = "fallback"
)

// Style selects how a Prompt is rendered for a provider.
type Style int

const (
	// StyleSplit sends separate system and user turns.
	StyleSplit Style = iota
	// StyleCombined sends system and user joined into one message.
	StyleCombined
	// StyleInstruction sends a single [INST] block.
	StyleInstruction
)

func (s Style) String() string {
	switch s {
	case StyleSplit:
		return "split"
	case StyleCombined:
		return "combined"
	case StyleInstruction:
		return "instruction"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// Stage is one provider attempt in the chain. A nil Provider counts as a
// failed attempt, so an unconfigured backend simply passes to the next stage.
type Stage struct {
	Name     string
	Provider ai.Provider
	Style    Style
}

// ProviderName returns the stage's provider name, or "none".
func (s Stage) ProviderName() string {
	if s.Provider == nil {
		return "none"
	}
	return s.Provider.Name()
}

func (s Stage) call(ctx context.Context, p Prompt) (string, error) {
	switch s.Style {
	case StyleCombined:
		return s.Provider.Generate(ctx, "", p.Combined())
	case StyleInstruction:
		return s.Provider.Generate(ctx, "", p.Instruction())
	default:
		system, user := p.Split()
		return s.Provider.Generate(ctx, system, user)
	}
}

// Request is one generation request.
type Request struct {
	Description string
	WebsiteType models.WebsiteType
	Title       string // empty selects DefaultTitle
}

// Attempt records the outcome of one stage.
type Attempt struct {
	Stage    string
	Provider string
	Elapsed  time.Duration
	Err      error
}

// Result is the outcome of a generation. Stage is the stage that produced
// Site; Attempts lists every stage tried, failures included.
type Result struct {
	Site     Site
	Stage    string
	Provider string
	Elapsed  time.Duration
	Attempts []Attempt
}

// Fallback reports whether the static fallback page was returned.
func (r Result) Fallback() bool { return r.Stage == StageFallback }

var errNoProvider = errors.New("provider not configured")

// Generator runs the stage chain. It is safe for concurrent use.
type Generator struct {
	stages []Stage
}

// New creates a Generator that tries stages in order.
func New(stages ...Stage) *Generator {
	return &Generator{stages: stages}
}

// Stages returns a copy of the configured stage list.
func (g *Generator) Stages() []Stage {
	return append([]Stage(nil), g.stages...)
}

// Generate builds the prompt and runs the chain. The first stage whose
// output normalizes wins; no stage is retried. When every stage fails the
// static fallback site is returned.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	ctx, span := telemetry.Start(ctx, "generator.Generate",
		trace.WithAttributes(attribute.String("website.type", string(req.WebsiteType))))
	defer span.End()

	title := req.Title
	if title == "" {
		title = DefaultTitle(req.WebsiteType)
	}
	prompt := BuildPrompt(EnhanceDescription(title, req.WebsiteType, req.Description), req.WebsiteType)

	start := time.Now()
	res := Result{}

	for _, st := range g.stages {
		attemptStart := time.Now()
		site, err := g.attempt(ctx, st, prompt)
		a := Attempt{Stage: st.Name, Provider: st.ProviderName(), Elapsed: time.Since(attemptStart), Err: err}
		res.Attempts = append(res.Attempts, a)

		if err != nil {
			slog.Warn("generation stage failed",
				"stage", st.Name, "provider", a.Provider,
				"elapsed", a.Elapsed, "error", err)
			continue
		}

		res.Site = site
		res.Stage = st.Name
		res.Provider = a.Provider
		res.Elapsed = time.Since(start)
		g.finish(span, res)
		return res
	}

	res.Site = FallbackSite()
	res.Stage = StageFallback
	res.Provider = "static"
	res.Elapsed = time.Since(start)
	slog.Error("all generation providers failed, returning fallback page",
		"attempts", len(res.Attempts), "elapsed", res.Elapsed)
	g.finish(span, res)
	return res
}

func (g *Generator) finish(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.String("generation.stage", res.Stage),
		attribute.String("generation.provider", res.Provider),
	)
	metrics.GenerationTotal.WithLabelValues(res.Stage).Inc()
	metrics.GenerationDuration.Observe(res.Elapsed.Seconds())
	slog.Info("website generated",
		"stage", res.Stage, "provider", res.Provider,
		"elapsed", res.Elapsed, "html_chars", len(res.Site.HTML))
}

// attempt calls one provider and normalizes its answer. Transport errors,
// empty answers, unparsable answers and provider panics all come back as
// an error.
func (g *Generator) attempt(ctx context.Context, st Stage, p Prompt) (site Site, err error) {
	name := st.ProviderName()
	ctx, span := telemetry.Start(ctx, "generator.attempt",
		trace.WithAttributes(
			attribute.String("generation.stage", st.Name),
			attribute.String("llm.provider", name),
			attribute.String("llm.prompt_style", st.Style.String()),
		))
	defer span.End()

	if st.Provider == nil {
		return Site{}, errNoProvider
	}

	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			site, err = Site{}, fmt.Errorf("%s panic: %v", name, r)
			status = "error"
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.LLMCallTotal.WithLabelValues(name, status).Inc()
		metrics.LLMCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	raw, err := st.call(ctx, p)
	if err != nil {
		status = "error"
		return Site{}, err
	}

	site, err = Normalize(raw)
	if err != nil {
		status = "unparsable"
		return Site{}, err
	}
	return site, nil
}
