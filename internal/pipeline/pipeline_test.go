// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/pageforge/internal/content"
	"github.com/pdiddy/pageforge/internal/knowledge"
	"github.com/pdiddy/pageforge/pkg/types"
)

// fakeSource serves a fixed excerpt set and records the query it saw.
type fakeSource struct {
	results []knowledge.QueryResult
	err     error
	lastQry knowledge.QueryOptions
}

func (f *fakeSource) Retrieve(_ context.Context, opts knowledge.QueryOptions) ([]knowledge.QueryResult, error) {
	f.lastQry = opts
	return f.results, f.err
}

// echoOracle returns grounded copy built from the excerpt vocabulary so
// grounding confidence stays high.
type echoOracle struct {
	calls int
	err   error
}

func (o *echoOracle) Complete(_ context.Context, req content.OracleRequest) (content.OracleResponse, error) {
	o.calls++
	if o.err != nil {
		return content.OracleResponse{}, o.err
	}
	var words []string
	for _, exc := range req.Excerpts {
		words = append(words, exc.Content)
	}
	text := strings.Join(words, " ")
	if text == "" {
		text = "generated copy"
	}
	fields := map[string]string{"headline": text, "body": text}
	for _, f := range req.RequiredFields {
		fields[f] = text
	}
	return content.OracleResponse{Fields: fields, TokensUsed: 25}, nil
}

// memorySaver captures the persisted structure.
type memorySaver struct {
	saved *types.PageContentStructure
	err   error
}

func (m *memorySaver) Save(_ context.Context, s *types.PageContentStructure) error {
	if m.err != nil {
		return m.err
	}
	m.saved = s
	return nil
}

func testSource() *fakeSource {
	return &fakeSource{results: []knowledge.QueryResult{
		{KnowledgeExcerpt: types.KnowledgeExcerpt{
			ID: "acme-001", EntityType: types.EntityFeature, SourceID: "acme-product",
			Content: "Acme Deploy ships container workloads to production quickly with preview environments",
		}},
		{KnowledgeExcerpt: types.KnowledgeExcerpt{
			ID: "acme-002", EntityType: types.EntityMetric, SourceID: "acme-product",
			Content: "Teams report release effort dropping forty percent after adopting Acme Deploy",
		}},
	}}
}

func testRequest() types.GenerationRequest {
	return types.GenerationRequest{
		PageID:          "acme-product",
		PageType:        types.PageProduct,
		Title:           "Acme Deploy",
		Description:     "Ship faster",
		KnowledgeBaseID: "acme",
		ContentHints:    []string{"deploy", "preview environments"},
		Personas: []types.Persona{
			{ID: "developer", Label: "Developer", Keywords: []string{"api", "deploy"}},
		},
		Brand: types.BrandConfig{PrimaryColor: "#1d4ed8", Tone: "confident"},
	}
}

func testConfig() types.PipelineConfig {
	var cfg types.PipelineConfig
	cfg.Content.Model = "claude-sonnet-4-5"
	cfg.Content.CallTimeout = time.Second
	return cfg
}

func TestRunProducesStructure(t *testing.T) {
	source := testSource()
	oracle := &echoOracle{}
	saver := &memorySaver{}
	runner := NewRunner(testConfig(), source, oracle, saver)

	var out bytes.Buffer
	outcome, err := runner.Run(context.Background(), testRequest(), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := outcome.Structure
	if s.PageID != "acme-product" || s.PageType != types.PageProduct {
		t.Errorf("identity = %s/%s", s.PageID, s.PageType)
	}
	if len(s.Sections) == 0 {
		t.Fatal("no sections assembled")
	}
	if s.Pipeline.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %q", s.Pipeline.Model)
	}
	if s.Pipeline.KnowledgeBaseID != "acme" {
		t.Errorf("knowledge base = %q", s.Pipeline.KnowledgeBaseID)
	}
	if s.Pipeline.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
	if s.PageMetadata.Brand.PrimaryColor != "#1d4ed8" {
		t.Errorf("brand = %+v", s.PageMetadata.Brand)
	}

	// One timing per stage, in execution order.
	stages := make([]string, len(s.Stats.StageTimings))
	for i, st := range s.Stats.StageTimings {
		stages[i] = st.Stage
	}
	want := []string{"layout", "storyline", "content", "assemble"}
	if len(stages) != len(want) {
		t.Fatalf("stage timings = %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage[%d] = %s, want %s", i, stages[i], want[i])
		}
	}

	if s.Stats.OracleCalls != oracle.calls || s.Stats.OracleCalls == 0 {
		t.Errorf("oracle calls = %d, mock saw %d", s.Stats.OracleCalls, oracle.calls)
	}
	if s.Stats.TokensUsed != 25*oracle.calls {
		t.Errorf("tokens = %d, want %d", s.Stats.TokensUsed, 25*oracle.calls)
	}

	if outcome.Validation.Score < 0 || outcome.Validation.Score > 100 {
		t.Errorf("validation score = %d", outcome.Validation.Score)
	}

	// Content hints drive the knowledge query.
	if source.lastQry.Query != "deploy preview environments" {
		t.Errorf("knowledge query = %q", source.lastQry.Query)
	}

	if saver.saved != s {
		t.Error("structure was not persisted through the saver")
	}
	if !strings.Contains(out.String(), "Snapshot saved") {
		t.Errorf("progress output missing snapshot line:\n%s", out.String())
	}
}

func TestRunWithoutSaverOrSource(t *testing.T) {
	runner := NewRunner(testConfig(), nil, &echoOracle{}, nil)

	var out bytes.Buffer
	outcome, err := runner.Run(context.Background(), testRequest(), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Structure == nil {
		t.Fatal("no structure")
	}
	// No excerpts means every section degrades to generic copy, but the
	// run still completes.
	if len(outcome.Structure.Stats.Degradations) == 0 {
		t.Error("expected degradations without grounding excerpts")
	}
	if strings.Contains(out.String(), "Snapshot saved") {
		t.Error("no saver was configured")
	}
}

func TestRunValidatesRequest(t *testing.T) {
	runner := NewRunner(testConfig(), testSource(), &echoOracle{}, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*types.GenerationRequest)
		field  string
	}{
		{"missing page id", func(r *types.GenerationRequest) { r.PageID = "" }, "page_id"},
		{"unknown page type", func(r *types.GenerationRequest) { r.PageType = "brochure" }, "page_type"},
		{"missing title", func(r *types.GenerationRequest) { r.Title = "" }, "title"},
		{"blank persona id", func(r *types.GenerationRequest) {
			r.Personas = append(r.Personas, types.Persona{Label: "Anonymous"})
		}, "personas[1].id"},
		{"inverted bounds", func(r *types.GenerationRequest) {
			r.Constraints.MinSections = 6
			r.Constraints.MaxSections = 4
		}, "constraints"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testRequest()
			tc.mutate(&req)
			_, err := runner.Run(ctx, req, &bytes.Buffer{})
			var vErr *types.InputValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want InputValidationError", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("field = %q, want %q", vErr.Field, tc.field)
			}
		})
	}
}

func TestRunSourceFailureAborts(t *testing.T) {
	source := &fakeSource{err: errors.New("index locked")}
	runner := NewRunner(testConfig(), source, &echoOracle{}, nil)

	_, err := runner.Run(context.Background(), testRequest(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "retrieving knowledge") {
		t.Errorf("err = %v", err)
	}
}

func TestRunInsufficientContentAborts(t *testing.T) {
	runner := NewRunner(testConfig(), testSource(), &echoOracle{}, nil)

	req := testRequest()
	req.Constraints.MinSections = 14
	req.Constraints.MaxSections = 14

	_, err := runner.Run(context.Background(), req, &bytes.Buffer{})
	var icErr *types.InsufficientContentError
	if !errors.As(err, &icErr) {
		t.Fatalf("err = %v, want InsufficientContentError", err)
	}
	if icErr.Needed != 14 {
		t.Errorf("needed = %d", icErr.Needed)
	}
}

func TestRunSaverFailureAborts(t *testing.T) {
	saver := &memorySaver{err: errors.New("disk full")}
	runner := NewRunner(testConfig(), testSource(), &echoOracle{}, saver)

	_, err := runner.Run(context.Background(), testRequest(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "persisting snapshot") {
		t.Errorf("err = %v", err)
	}
}
