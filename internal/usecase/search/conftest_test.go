package search

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
)

// --- Mocks ---

type call struct {
	channel aci.Channel
	params  *aci.Parameters
}

type reply struct {
	data string
	err  error
}

// scriptedBackend answers calls with replies in order and records every call.
type scriptedBackend struct {
	qms     bool
	replies []reply
	calls   []call
}

func (b *scriptedBackend) Execute(_ context.Context, ch aci.Channel, p *aci.Parameters) (*aci.Node, error) {
	b.calls = append(b.calls, call{channel: ch, params: p.Clone()})
	if len(b.calls) > len(b.replies) {
		return nil, fmt.Errorf("unexpected call %d on %s", len(b.calls), ch)
	}
	r := b.replies[len(b.calls)-1]
	if r.err != nil {
		return nil, r.err
	}
	return aci.Decode(strings.NewReader(r.data))
}

func (b *scriptedBackend) Has(ch aci.Channel) bool {
	return ch == aci.Content || (ch == aci.QMS && b.qms)
}

// sequenceFields hands out registries in order; the last one repeats.
type sequenceFields struct {
	regs  []*field.Registry
	calls int
}

func (f *sequenceFields) Fields() *field.Registry {
	f.calls++
	if len(f.regs) == 0 {
		return nil
	}
	i := f.calls - 1
	if i >= len(f.regs) {
		i = len(f.regs) - 1
	}
	return f.regs[i]
}

type staticSettings struct {
	qm domain.QueryManipulation
}

func (s staticSettings) QueryManipulation() domain.QueryManipulation { return s.qm }

type mockLister struct {
	dbs   []string
	err   error
	calls int
}

func (m *mockLister) List(_ context.Context) ([]string, error) {
	m.calls++
	return m.dbs, m.err
}

// --- Helpers ---

func responseData(total int, extra string, hits ...string) string {
	return fmt.Sprintf("<responsedata><autn:totalhits>%d</autn:totalhits>%s%s</responsedata>",
		total, extra, strings.Join(hits, ""))
}

func hitXML(ref string, tags ...string) string {
	var doc strings.Builder
	for i := 0; i+1 < len(tags); i += 2 {
		fmt.Fprintf(&doc, "<%s>%s</%s>", tags[i], tags[i+1], tags[i])
	}
	return fmt.Sprintf("<autn:hit><autn:reference>%s</autn:reference><autn:database>News</autn:database>"+
		"<autn:weight>50.0</autn:weight><autn:content><DOCUMENT>%s</DOCUMENT></autn:content></autn:hit>",
		ref, doc.String())
}

func spellingData(total int, spelling, query string, hits ...string) string {
	extra := fmt.Sprintf("<autn:spelling>%s</autn:spelling><autn:spellingquery>%s</autn:spellingquery>", spelling, query)
	return responseData(total, extra, hits...)
}

func newService(b *scriptedBackend, f FieldsSource, qm domain.QueryManipulation, dbs DatabaseLister) *Service {
	if f == nil {
		f = &sequenceFields{}
	}
	if dbs == nil {
		dbs = &mockLister{}
	}
	return New(b, f, staticSettings{qm: qm}, dbs, nil)
}

func newRequest(t *testing.T, text string, autoCorrect bool, qt mode.Mode, dbs ...string) request.Request {
	t.Helper()
	return newFilteredRequest(t, text, filter.Expression{}, autoCorrect, qt, dbs...)
}

func newFilteredRequest(
	t *testing.T, text string, expr filter.Expression, autoCorrect bool, qt mode.Mode, dbs ...string,
) request.Request {
	t.Helper()
	restrictions, err := request.NewRestrictions(text, "", expr, dbs, nil, nil, "", false)
	if err != nil {
		t.Fatalf("NewRestrictions: %v", err)
	}
	out, err := request.NewOutput(1, 10, "", 0, "", false)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	req, err := request.New(restrictions, out, autoCorrect, qt)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func param(t *testing.T, p *aci.Parameters, name string) string {
	t.Helper()
	v, ok := p.Get(name)
	if !ok {
		t.Fatalf("parameter %s missing from %s", name, p.Encode())
	}
	return v
}

func assertPath(t *testing.T, got []State, want ...State) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if !CanTransition(got[i-1], got[i]) {
			t.Errorf("illegal transition %s -> %s", got[i-1], got[i])
		}
	}
}

func mustRegistry(t *testing.T, configs ...field.Config) *field.Registry {
	t.Helper()
	reg, err := field.NewRegistry(configs...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func mustField(t *testing.T, id string, names []string, ft field.Type, values ...field.KnownValue) field.Config {
	t.Helper()
	c, err := field.New(id, "", names, ft, values, false)
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return c
}
