package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
	"github.com/kailas-cloud/querygate/internal/metrics"
)

var qmsOn = domain.QueryManipulation{Enabled: true, Blacklist: "bl", ExpandQuery: true}

func TestExecute_ChannelSelection(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		qmsWired  bool
		queryType mode.Mode
		want      aci.Channel
	}{
		{"enhanced with enrichment", true, true, mode.Enhanced, aci.QMS},
		{"raw bypasses enrichment", true, true, mode.Raw, aci.Content},
		{"promotions with enrichment", true, true, mode.Promotions, aci.QMS},
		{"enrichment disabled", false, true, mode.Enhanced, aci.Content},
		{"enrichment not wired", true, false, mode.Enhanced, aci.Content},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &scriptedBackend{qms: tt.qmsWired, replies: []reply{{data: responseData(0, "")}}}
			svc := newService(b, nil, domain.QueryManipulation{Enabled: tt.enabled}, nil)

			_, exec, err := svc.Execute(context.Background(), newRequest(t, "cats", false, tt.queryType), tt.queryType == mode.Promotions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(b.calls) != 1 || b.calls[0].channel != tt.want {
				t.Fatalf("calls = %+v, want one call on %s", b.calls, tt.want)
			}
			if exec.Channel != tt.want {
				t.Errorf("exec.Channel = %s", exec.Channel)
			}
			_, hasPromotions := b.calls[0].params.Get(aci.ParamPromotions)
			if hasPromotions != (tt.queryType == mode.Promotions) {
				t.Errorf("Promotions param present = %v", hasPromotions)
			}
		})
	}
}

func TestQueryPromotions_EnrichmentDisabledReturnsEmpty(t *testing.T) {
	for _, qm := range []domain.QueryManipulation{{Enabled: false}, {Enabled: true}} {
		b := &scriptedBackend{qms: false}
		svc := newService(b, nil, qm, nil)

		docs, err := svc.QueryPromotions(context.Background(), newRequest(t, "cats", true, mode.Enhanced))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs.Results()) != 0 || docs.TotalResults() != 0 {
			t.Errorf("expected empty result, got %d/%d", len(docs.Results()), docs.TotalResults())
		}
		if len(b.calls) != 0 {
			t.Errorf("expected no backend call, got %d", len(b.calls))
		}
	}
}

func TestExecute_AutoCorrectRetriesOnce(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{
		{data: spellingData(0, "cats, carts", "cats")},
		{data: responseData(12, "<autn:expandedQuery>cats OR kitties</autn:expandedQuery>", hitXML("doc-1"), hitXML("doc-2"))},
	}}
	svc := newService(b, nil, qmsOn, nil)
	before := testutil.ToFloat64(metrics.AutocorrectRetriesTotal)

	docs, exec, err := svc.Execute(context.Background(), newRequest(t, "catz", true, mode.Enhanced), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertPath(t, exec.Path, StateBuildParams, StateExecute, StateSpellingSuggested, StateRetryExecute, StateDone)
	if len(b.calls) != 2 || exec.Calls != 2 {
		t.Fatalf("expected exactly 2 backend calls, got %d (exec %d)", len(b.calls), exec.Calls)
	}
	retry := b.calls[1]
	if retry.channel != aci.QMS {
		t.Errorf("retry channel = %s, want same channel", retry.channel)
	}
	if got := param(t, retry.params, aci.ParamText); got != "cats" {
		t.Errorf("retry Text = %q", got)
	}
	if got := param(t, retry.params, aci.ParamSpellCheck); got != "false" {
		t.Errorf("retry SpellCheck = %q", got)
	}
	if got := param(t, b.calls[0].params, aci.ParamText); got != "catz" {
		t.Errorf("first Text = %q", got)
	}

	if docs.TotalResults() != 12 || len(docs.Results()) != 2 {
		t.Errorf("expected results from retry, got %d/%d", len(docs.Results()), docs.TotalResults())
	}
	if docs.ExpandedQuery() != "cats OR kitties" {
		t.Errorf("ExpandedQuery() = %q", docs.ExpandedQuery())
	}
	sp := docs.Spelling()
	if sp == nil {
		t.Fatal("expected spelling record")
	}
	if sp.Original != "catz" || sp.Corrected != "cats" {
		t.Errorf("spelling = %+v", sp)
	}
	if len(sp.Alternatives) != 2 || sp.Alternatives[0] != "cats" || sp.Alternatives[1] != "carts" {
		t.Errorf("alternatives = %v", sp.Alternatives)
	}
	if after := testutil.ToFloat64(metrics.AutocorrectRetriesTotal); after-before != 1 {
		t.Errorf("autocorrect counter delta = %f", after-before)
	}
}

func TestExecute_NoRetry(t *testing.T) {
	tests := []struct {
		name        string
		autoCorrect bool
		data        string
	}{
		{"suggestion equals submitted text", true, spellingData(3, "cats", "cats", hitXML("a"))},
		{"no suggestion", true, responseData(3, "", hitXML("a"))},
		{"auto-correct off", false, spellingData(3, "cats", "cats2", hitXML("a"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &scriptedBackend{replies: []reply{{data: tt.data}}}
			svc := newService(b, nil, domain.QueryManipulation{}, nil)

			docs, exec, err := svc.Execute(context.Background(), newRequest(t, "cats", tt.autoCorrect, mode.Enhanced), false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertPath(t, exec.Path, StateBuildParams, StateExecute, StateNoSuggestion, StateDone)
			if len(b.calls) != 1 {
				t.Errorf("expected 1 call, got %d", len(b.calls))
			}
			if docs.Spelling() != nil {
				t.Errorf("unexpected spelling %+v", docs.Spelling())
			}
			if docs.TotalResults() != 3 {
				t.Errorf("TotalResults() = %d", docs.TotalResults())
			}
			if _, ok := b.calls[0].params.Get(aci.ParamSpellCheck); ok != tt.autoCorrect {
				t.Errorf("SpellCheck present = %v, want %v", ok, tt.autoCorrect)
			}
		})
	}
}

func TestExecute_RetryNeverRecurses(t *testing.T) {
	b := &scriptedBackend{replies: []reply{
		{data: spellingData(0, "cats", "cats")},
		{data: spellingData(0, "bats", "bats")},
	}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	docs, exec, err := svc.Execute(context.Background(), newRequest(t, "catz", true, mode.Raw), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(b.calls))
	}
	if exec.Final() != StateDone {
		t.Errorf("Final() = %s", exec.Final())
	}
	if docs.Spelling().Corrected != "cats" {
		t.Errorf("spelling must describe the first correction, got %+v", docs.Spelling())
	}
}

func TestExecute_RetryFailurePropagates(t *testing.T) {
	boom := &domain.BackendError{ErrorString: "index offline"}
	b := &scriptedBackend{replies: []reply{
		{data: spellingData(0, "cats", "cats")},
		{err: boom},
	}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	_, exec, err := svc.Execute(context.Background(), newRequest(t, "catz", true, mode.Enhanced), false)
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	assertPath(t, exec.Path, StateBuildParams, StateExecute, StateSpellingSuggested, StateRetryExecute, StateFailed)
}

func TestExecute_MissingRuleFallsBackToContent(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{
		{err: &domain.BackendError{Code: "QMS-1", ErrorString: "Missing rule"}},
		{data: responseData(7, "", hitXML("fallback-1"))},
	}}
	svc := newService(b, nil, qmsOn, nil)
	before := testutil.ToFloat64(metrics.EnrichmentFallbacksTotal)

	req := newRequest(t, "cats", false, mode.Enhanced, "News", "Archive")
	docs, exec, err := svc.Execute(context.Background(), req, false)
	if err != nil {
		t.Fatalf("missing rule must not surface, got %v", err)
	}

	assertPath(t, exec.Path, StateBuildParams, StateExecute, StateEnrichmentRejected, StateFallbackExecute, StateDone)
	if len(b.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(b.calls))
	}
	first, fallback := b.calls[0], b.calls[1]
	if first.channel != aci.QMS || fallback.channel != aci.Content {
		t.Fatalf("channels = %s, %s", first.channel, fallback.channel)
	}
	for _, name := range []string{aci.ParamText, aci.ParamDatabaseMatch, aci.ParamStart, aci.ParamMaxResults} {
		if param(t, first.params, name) != param(t, fallback.params, name) {
			t.Errorf("%s differs between attempts", name)
		}
	}
	for _, name := range []string{aci.ParamBlacklist, aci.ParamExpandQuery} {
		if !first.params.Has(name) {
			t.Errorf("enrichment call lacks %s", name)
		}
		if fallback.params.Has(name) {
			t.Errorf("fallback call still carries %s", name)
		}
	}
	if docs.TotalResults() != 7 || docs.Results()[0].Reference() != "fallback-1" {
		t.Errorf("expected fallback results, got %+v", docs)
	}
	if after := testutil.ToFloat64(metrics.EnrichmentFallbacksTotal); after-before != 1 {
		t.Errorf("fallback counter delta = %f", after-before)
	}
}

func TestExecute_MissingRuleForPromotionsIsEmpty(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{
		{err: &domain.BackendError{ErrorString: "missing rule"}},
	}}
	svc := newService(b, nil, qmsOn, nil)

	docs, exec, err := svc.Execute(context.Background(), newRequest(t, "cats", false, mode.Promotions), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPath(t, exec.Path, StateBuildParams, StateExecute, StateEnrichmentRejected, StateDone)
	if len(b.calls) != 1 || docs.TotalResults() != 0 || len(docs.Results()) != 0 {
		t.Errorf("expected one call and empty result, got %d calls, %+v", len(b.calls), docs)
	}
}

func TestExecute_OtherEnrichmentErrorsPropagate(t *testing.T) {
	backendErr := &domain.BackendError{Code: "42", ErrorString: "Invalid ruleset"}
	b := &scriptedBackend{qms: true, replies: []reply{{err: backendErr}}}
	svc := newService(b, nil, qmsOn, nil)

	_, exec, err := svc.Execute(context.Background(), newRequest(t, "cats", true, mode.Enhanced), false)
	var be *domain.BackendError
	if !errors.As(err, &be) || be != backendErr {
		t.Fatalf("expected the backend error unchanged, got %v", err)
	}
	assertPath(t, exec.Path, StateBuildParams, StateExecute, StateFailed)
	if len(b.calls) != 1 {
		t.Errorf("expected no fallback call, got %d calls", len(b.calls))
	}
}

func TestExecute_MissingRuleOnContentPropagates(t *testing.T) {
	b := &scriptedBackend{replies: []reply{{err: &domain.BackendError{ErrorString: "Missing rule"}}}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)

	_, exec, err := svc.Execute(context.Background(), newRequest(t, "cats", false, mode.Enhanced), false)
	if !domain.IsMissingRule(err) {
		t.Fatalf("expected missing rule error, got %v", err)
	}
	if exec.Final() != StateFailed {
		t.Errorf("Final() = %s", exec.Final())
	}
}

func TestExecute_InvalidDatabases(t *testing.T) {
	warning := "<autn:warning>" + MissingDatabaseWarning + "</autn:warning>"
	tests := []struct {
		name      string
		requested []string
		extra     string
		lister    *mockLister
		want      []string
	}{
		{"marker reports missing in request order", []string{"A", "B", "C"}, warning,
			&mockLister{dbs: []string{"B"}}, []string{"A", "C"}},
		{"exact match", []string{"news"}, warning, &mockLister{dbs: []string{"News"}}, []string{"news"}},
		{"no marker", []string{"A"}, "", &mockLister{dbs: []string{"B"}}, nil},
		{"all present", []string{"B"}, warning, &mockLister{dbs: []string{"B"}}, nil},
		{"lister failure", []string{"A"}, warning, &mockLister{err: errors.New("down")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &scriptedBackend{replies: []reply{{data: responseData(1, tt.extra, hitXML("a"))}}}
			svc := newService(b, nil, domain.QueryManipulation{}, tt.lister)

			docs, err := svc.Query(context.Background(), newRequest(t, "cats", false, mode.Enhanced, tt.requested...))
			if err != nil {
				t.Fatalf("warnings must never fail the query, got %v", err)
			}
			var got []string
			if docs.Warnings() != nil {
				got = docs.Warnings().InvalidDatabases
			}
			if len(got) != len(tt.want) {
				t.Fatalf("invalid databases = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("invalid databases = %v, want %v", got, tt.want)
				}
			}
			if len(docs.Results()) != 1 {
				t.Errorf("results must survive warnings, got %d", len(docs.Results()))
			}
			if tt.extra == "" && tt.lister.calls != 0 {
				t.Error("lister must only be consulted when the marker is present")
			}
		})
	}
}

func TestExecute_MalformedHitsAreSkipped(t *testing.T) {
	bad := "<autn:hit><autn:reference>bad</autn:reference><autn:weight>heavy</autn:weight></autn:hit>"
	b := &scriptedBackend{replies: []reply{{data: responseData(3, "", hitXML("a"), bad, hitXML("c"))}}}
	svc := newService(b, nil, domain.QueryManipulation{}, nil)
	before := testutil.ToFloat64(metrics.HitParseErrorsTotal)

	docs, err := svc.Query(context.Background(), newRequest(t, "cats", false, mode.Enhanced))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs.Results()) != 2 || docs.ParseErrors() != 1 {
		t.Fatalf("results=%d parseErrors=%d", len(docs.Results()), docs.ParseErrors())
	}
	if docs.Results()[0].Reference() != "a" || docs.Results()[1].Reference() != "c" {
		t.Error("order of remaining hits changed")
	}
	if after := testutil.ToFloat64(metrics.HitParseErrorsTotal); after-before != 1 {
		t.Errorf("parse error counter delta = %f", after-before)
	}
}

func TestExecute_FieldSnapshotReadPerParse(t *testing.T) {
	known := func(display string) *field.Registry {
		return mustRegistry(t, mustField(t, "priority", []string{"PRIORITY"}, field.String,
			field.NewKnownValue("hi", display)))
	}
	fields := &sequenceFields{regs: []*field.Registry{known("High"), known("High"), known("Urgent")}}
	b := &scriptedBackend{replies: []reply{
		{data: spellingData(1, "cats", "cats", hitXML("a", "PRIORITY", "hi"))},
		{data: responseData(1, "", hitXML("b", "PRIORITY", "HI"))},
	}}
	svc := newService(b, fields, domain.QueryManipulation{}, nil)

	docs, err := svc.Query(context.Background(), newRequest(t, "catz", true, mode.Enhanced))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := docs.Results()[0].Field("priority")
	if v.String() != "Urgent" {
		t.Errorf("retry must use the snapshot current at retry time, got %q", v.String())
	}
	if fields.calls != 3 {
		t.Errorf("expected 3 snapshot reads (build, parse, retry parse), got %d", fields.calls)
	}
}

func TestExecute_QueryParameters(t *testing.T) {
	b := &scriptedBackend{qms: true, replies: []reply{{data: responseData(0, "")}}}
	svc := newService(b, nil, qmsOn, nil)

	req := newRequest(t, "cats", true, mode.Enhanced, "News", "Archive")
	if _, err := svc.Query(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := b.calls[0].params
	want := map[string]string{
		aci.ParamText:          "cats",
		aci.ParamDatabaseMatch: "News+Archive",
		aci.ParamStart:         "1",
		aci.ParamMaxResults:    "10",
		aci.ParamSummary:       "context",
		aci.ParamPrint:         aci.PrintAll,
		aci.ParamTotalResults:  "true",
		aci.ParamSpellCheck:    "true",
		aci.ParamBlacklist:     "bl",
		aci.ParamExpandQuery:   "true",
	}
	for name, v := range want {
		if got := param(t, p, name); got != v {
			t.Errorf("%s = %q, want %q", name, got, v)
		}
	}
	if p.Action() != aci.ActionQuery {
		t.Errorf("action = %q", p.Action())
	}
}

func TestExecute_FilterRendering(t *testing.T) {
	m, _ := filter.NewMatch("author", "ann")
	expr, _ := filter.NewExpression([]filter.Condition{m}, nil, nil)
	reg := mustRegistry(t, mustField(t, "author", []string{"DOCUMENT/DRE_AUTHOR"}, field.String))

	b := &scriptedBackend{replies: []reply{{data: responseData(0, "")}}}
	svc := newService(b, &sequenceFields{regs: []*field.Registry{reg}}, domain.QueryManipulation{}, nil)

	if _, err := svc.Query(context.Background(), newFilteredRequest(t, "cats", expr, false, mode.Raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := param(t, b.calls[0].params, aci.ParamFieldText); got != "MATCH{ann}:DRE_AUTHOR" {
		t.Errorf("FieldText = %q", got)
	}
}

func TestExecute_RangeFilterOnStringFieldRejected(t *testing.T) {
	gte := 1.0
	r, _ := filter.NewRangeFilter(nil, &gte, nil, nil)
	c, _ := filter.NewRange("author", r)
	expr, _ := filter.NewExpression([]filter.Condition{c}, nil, nil)
	reg := mustRegistry(t, mustField(t, "author", nil, field.String))

	b := &scriptedBackend{}
	svc := newService(b, &sequenceFields{regs: []*field.Registry{reg}}, domain.QueryManipulation{}, nil)

	_, exec, err := svc.Execute(context.Background(), newFilteredRequest(t, "cats", expr, false, mode.Enhanced), false)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	assertPath(t, exec.Path, StateBuildParams, StateFailed)
	if len(b.calls) != 0 {
		t.Errorf("expected no backend call, got %d", len(b.calls))
	}
}

func TestExecute_PromotionClassification(t *testing.T) {
	promoted := "<autn:hit><autn:reference>p</autn:reference><autn:promotionname>spotlight</autn:promotionname>" +
		"<autn:content><DOCUMENT><INJECTEDPROMOTION>true</INJECTEDPROMOTION></DOCUMENT></autn:content></autn:hit>"
	b := &scriptedBackend{qms: true, replies: []reply{{data: responseData(2, "", promoted, hitXML("i", "INJECTEDPROMOTION", "true"))}}}
	svc := newService(b, nil, qmsOn, nil)

	docs, err := svc.QueryPromotions(context.Background(), newRequest(t, "cats", false, mode.Enhanced))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := docs.Results()[0].Promotion(); got != result.StaticContent {
		t.Errorf("named promotion = %s", got)
	}
	if got := docs.Results()[1].Promotion(); got != result.CardinalPlacement {
		t.Errorf("injected promotion = %s", got)
	}
}

func TestCanTransition(t *testing.T) {
	legal := [][2]State{
		{StateBuildParams, StateExecute},
		{StateExecute, StateSpellingSuggested},
		{StateSpellingSuggested, StateRetryExecute},
		{StateRetryExecute, StateDone},
		{StateExecute, StateEnrichmentRejected},
		{StateEnrichmentRejected, StateFallbackExecute},
		{StateFallbackExecute, StateDone},
	}
	for _, tr := range legal {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be legal", tr[0], tr[1])
		}
	}
	illegal := [][2]State{
		{StateRetryExecute, StateSpellingSuggested},
		{StateFallbackExecute, StateSpellingSuggested},
		{StateDone, StateExecute},
		{StateSpellingSuggested, StateFallbackExecute},
		{StateFallbackExecute, StateEnrichmentRejected},
	}
	for _, tr := range illegal {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be illegal", tr[0], tr[1])
		}
	}
}
