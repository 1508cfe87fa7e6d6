package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
)

func restrictionsFor(t *testing.T, text string, dbs ...string) request.Restrictions {
	t.Helper()
	r, err := request.NewRestrictions(text, "", filter.Expression{}, dbs, nil, nil, "", false)
	if err != nil {
		t.Fatalf("NewRestrictions: %v", err)
	}
	return r
}

func TestFindSimilar(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{{data: responseData(4, "", hitXML("s1"), hitXML("s2"))}}}
	svc := newService(b, nil, qmsOn, nil)

	out, _ := request.NewOutput(1, 5, "", 0, "", false)
	req, err := request.NewSimilar("http://x/1", restrictionsFor(t, "", "News"), out)
	if err != nil {
		t.Fatalf("NewSimilar: %v", err)
	}

	docs, err := svc.FindSimilar(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.calls) != 1 || b.calls[0].channel != aci.Content {
		t.Fatalf("expected one content call, got %+v", b.calls)
	}
	p := b.calls[0].params
	if p.Action() != aci.ActionSuggest {
		t.Errorf("action = %q", p.Action())
	}
	if got := param(t, p, aci.ParamReference); got != "http%3A%2F%2Fx%2F1" {
		t.Errorf("Reference = %q", got)
	}
	if got := param(t, p, aci.ParamMaxResults); got != "5" {
		t.Errorf("MaxResults = %q", got)
	}
	if p.Has(aci.ParamExpandQuery) {
		t.Error("similar search must not carry enrichment parameters")
	}
	if docs.TotalResults() != 4 || len(docs.Results()) != 2 {
		t.Errorf("results=%d total=%d", len(docs.Results()), docs.TotalResults())
	}
}

func TestFindSimilar_BackendError(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{err: &domain.BackendError{ErrorString: "boom"}}}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	out, _ := request.NewOutput(1, 5, "", 0, "", false)
	req, _ := request.NewSimilar("ref", restrictionsFor(t, ""), out)
	if _, err := svc.FindSimilar(context.Background(), req); !errors.Is(err, domain.ErrBackend) {
		t.Errorf("expected ErrBackend, got %v", err)
	}
}

func TestGetContent(t *testing.T) {
	b := &scriptedBackend{replies: []reply{
		{data: responseData(2, "", hitXML("a1"), hitXML("a2"))},
		{data: responseData(1, "", hitXML("b1"))},
	}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	g1, _ := request.NewContentGroup("News", []string{"a1", "a2"})
	g2, _ := request.NewContentGroup("", []string{"b1"})
	req, err := request.NewContent([]request.ContentGroup{g1, g2})
	if err != nil {
		t.Fatalf("NewContent: %v", err)
	}

	docs, err := svc.GetContent(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.calls) != 2 {
		t.Fatalf("expected one call per group, got %d", len(b.calls))
	}
	first := b.calls[0].params
	for name, want := range map[string]string{
		aci.ParamMatchReference: "a1+a2",
		aci.ParamDatabaseMatch:  "News",
		aci.ParamMaxResults:     "2",
		aci.ParamText:           aci.AnyText,
		aci.ParamSummary:        aci.SummaryConcept,
		aci.ParamCombine:        aci.CombineSimple,
		aci.ParamPrint:          aci.PrintAll,
		aci.ParamAnyLanguage:    "true",
	} {
		if got := param(t, first, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if b.calls[1].params.Has(aci.ParamDatabaseMatch) {
		t.Error("group without index must not restrict databases")
	}

	var refs []string
	for _, r := range docs.Results() {
		refs = append(refs, r.Reference())
	}
	if len(refs) != 3 || refs[0] != "a1" || refs[1] != "a2" || refs[2] != "b1" {
		t.Errorf("references = %v", refs)
	}
	if docs.TotalResults() != 3 {
		t.Errorf("TotalResults() = %d", docs.TotalResults())
	}
}

func TestGetContent_StopsOnError(t *testing.T) {
	b := &scriptedBackend{replies: []reply{
		{data: responseData(1, "", hitXML("a1"))},
		{err: &domain.BackendError{ErrorString: "gone"}},
	}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	g1, _ := request.NewContentGroup("", []string{"a1"})
	g2, _ := request.NewContentGroup("", []string{"b1"})
	g3, _ := request.NewContentGroup("", []string{"c1"})
	req, _ := request.NewContent([]request.ContentGroup{g1, g2, g3})

	if _, err := svc.GetContent(context.Background(), req); !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if len(b.calls) != 2 {
		t.Errorf("expected to stop after the failing group, got %d calls", len(b.calls))
	}
}

func TestStateToken(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{{data: "<responsedata><autn:state>TOKEN-1</autn:state></responsedata>"}}}
	svc := newService(b, nil, qmsOn, nil)

	token, err := svc.StateToken(context.Background(), restrictionsFor(t, "cats", "News"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "TOKEN-1" {
		t.Errorf("token = %q", token)
	}
	if b.calls[0].channel != aci.Content {
		t.Errorf("state must be stored on the content channel, got %s", b.calls[0].channel)
	}
	p := b.calls[0].params
	for name, want := range map[string]string{
		aci.ParamStoreState:    "true",
		aci.ParamPrint:         aci.PrintNoResults,
		aci.ParamMaxResults:    "30",
		aci.ParamText:          "cats",
		aci.ParamDatabaseMatch: "News",
	} {
		if got := param(t, p, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestStateToken_Errors(t *testing.T) {
	t.Run("text required", func(t *testing.T) {
		b := &scriptedBackend{}
		svc := newService(b, nil, domain.QueryManipulation{}, nil)
		if _, err := svc.StateToken(context.Background(), restrictionsFor(t, " "), 10); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
		if len(b.calls) != 0 {
			t.Error("no backend call expected")
		}
	})
	t.Run("missing token", func(t *testing.T) {
		b := &scriptedBackend{replies: []reply{{data: "<responsedata/>"}}}
		svc := newService(b, nil, domain.QueryManipulation{}, nil)
		if _, err := svc.StateToken(context.Background(), restrictionsFor(t, "cats"), 10); !errors.Is(err, domain.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestRelatedConcepts(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{data: `<responsedata><autn:qs>` +
		`<autn:element cluster="0" docs="9">felines</autn:element></autn:qs></responsedata>`}}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	req, err := request.NewRelatedConcepts(restrictionsFor(t, "cats"), 0, 0)
	if err != nil {
		t.Fatalf("NewRelatedConcepts: %v", err)
	}
	concepts, err := svc.RelatedConcepts(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(concepts) != 1 || concepts[0].Text != "felines" || concepts[0].Docs != 9 {
		t.Errorf("concepts = %+v", concepts)
	}
	p := b.calls[0].params
	for name, want := range map[string]string{
		aci.ParamQuerySummary:       "true",
		aci.ParamQuerySummaryLength: "30",
		aci.ParamMaxResults:         "50",
		aci.ParamPrint:              aci.PrintNoResults,
	} {
		if got := param(t, p, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRelatedConcepts_EmptyWhenNoSummary(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{data: "<responsedata/>"}}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	req, _ := request.NewRelatedConcepts(restrictionsFor(t, "cats"), 10, 10)
	concepts, err := svc.RelatedConcepts(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if concepts == nil || len(concepts) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", concepts)
	}
}
