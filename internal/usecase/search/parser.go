package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/hit"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
	"github.com/kailas-cloud/querygate/internal/metrics"
	"github.com/kailas-cloud/querygate/internal/usecase/fields"
)

// MissingDatabaseWarning is the warning the backend attaches when a requested database does not exist.
const MissingDatabaseWarning = "At least one of the databases requested was not found"

// spellingSeparator splits the backend's list of spelling alternatives.
const spellingSeparator = ", "

// Suggestion is a spelling correction the backend proposed for the submitted text.
type Suggestion struct {
	Alternatives []string
	Query        string
}

// Parsed is one decoded query response.
type Parsed struct {
	Documents  result.Documents[result.Result]
	Suggestion *Suggestion
}

// Parser converts query responses into result sets.
type Parser struct {
	fields FieldsSource
	dbs    DatabaseLister
	logger *zap.Logger
}

// NewParser creates a response parser.
func NewParser(fields FieldsSource, dbs DatabaseLister, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{fields: fields, dbs: dbs, logger: logger}
}

// Parse decodes a <responsedata> node.
//
// Malformed hits are skipped and counted. When the backend reports the missing
// database warning, requested databases absent from the lister's set are
// reported in request order. A suggestion is returned only when the backend
// proposed text different from submittedText.
func (p *Parser) Parse(ctx context.Context, data *aci.Node, requestedDBs []string, submittedText string) (Parsed, error) {
	if data == nil {
		return Parsed{}, fmt.Errorf("empty response data: %w", domain.ErrMalformedResponse)
	}

	registry := p.fields.Fields()
	hitNodes := data.ChildrenNamed("hit")
	results := make([]result.Result, 0, len(hitNodes))
	malformed := 0
	for i, n := range hitNodes {
		raw, err := DecodeHit(n)
		if err != nil {
			malformed++
			p.logger.Warn("Skipping malformed hit",
				zap.Int("position", i),
				zap.String("reference", n.ChildText("reference")),
				zap.Error(err),
			)
			continue
		}
		results = append(results, fields.Parse(raw, registry))
	}
	if malformed > 0 {
		metrics.HitParseErrorsTotal.Add(float64(malformed))
	}

	total := len(results)
	if s := data.ChildText("totalhits"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Parsed{}, fmt.Errorf("totalhits %q: %w", s, domain.ErrMalformedResponse)
		}
		total = n
	}

	docs := result.NewDocuments(results, total, data.ChildText("expandedQuery"), nil, nil).
		WithParseErrors(malformed)
	if w := p.invalidDatabases(ctx, data, requestedDBs); w != nil {
		docs = docs.WithWarnings(w)
	}

	return Parsed{
		Documents:  docs,
		Suggestion: suggestion(data, submittedText),
	}, nil
}

func (p *Parser) invalidDatabases(ctx context.Context, data *aci.Node, requested []string) *result.Warnings {
	if len(requested) == 0 || !hasWarning(data, MissingDatabaseWarning) {
		return nil
	}
	available, err := p.dbs.List(ctx)
	if err != nil {
		p.logger.Warn("Database list unavailable, skipping invalid database check", zap.Error(err))
		return nil
	}
	known := make(map[string]struct{}, len(available))
	for _, db := range available {
		known[db] = struct{}{}
	}
	var invalid []string
	for _, db := range requested {
		if _, ok := known[db]; !ok {
			invalid = append(invalid, db)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	metrics.InvalidDatabaseWarningsTotal.Inc()
	p.logger.Info("Query named invalid databases", zap.Strings("databases", invalid))
	return &result.Warnings{InvalidDatabases: invalid}
}

func hasWarning(data *aci.Node, marker string) bool {
	for _, w := range data.ChildrenNamed("warning") {
		if strings.Contains(strings.ToLower(w.Text), strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func suggestion(data *aci.Node, submittedText string) *Suggestion {
	query := data.ChildText("spellingquery")
	if query == "" || query == submittedText {
		return nil
	}
	var alternatives []string
	for _, alt := range strings.Split(data.ChildText("spelling"), spellingSeparator) {
		if alt = strings.TrimSpace(alt); alt != "" {
			alternatives = append(alternatives, alt)
		}
	}
	if len(alternatives) == 0 {
		alternatives = []string{query}
	}
	return &Suggestion{Alternatives: alternatives, Query: query}
}

func decodeConcepts(data *aci.Node) []result.Concept {
	elements := data.Path("qs").ChildrenNamed("element")
	concepts := make([]result.Concept, 0, len(elements))
	for _, el := range elements {
		cluster, _ := strconv.Atoi(el.Attr("cluster"))
		docs, _ := strconv.Atoi(el.Attr("docs"))
		concepts = append(concepts, result.Concept{Text: el.Text, Cluster: cluster, Docs: docs})
	}
	return concepts
}

// DecodeHit converts a <hit> node into a raw hit.
// A non-numeric weight or date, or content that carries text but no document
// element, is malformed.
func DecodeHit(n *aci.Node) (hit.Raw, error) {
	meta := result.Meta{
		Reference:     n.ChildText("reference"),
		Index:         n.ChildText("database"),
		Title:         n.ChildText("title"),
		Summary:       n.ChildText("summary"),
		PromotionName: n.ChildText("promotionname"),
	}
	if s := n.ChildText("weight"); s != "" {
		w, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return hit.Raw{}, fmt.Errorf("weight %q: %w", s, domain.ErrMalformedHit)
		}
		meta.Weight = w
	}
	if s := n.ChildText("date"); s != "" {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return hit.Raw{}, fmt.Errorf("date %q: %w", s, domain.ErrMalformedHit)
		}
		meta.Date = time.Unix(secs, 0).UTC()
	}

	raw := hit.Raw{Meta: meta}
	content := n.Child("content")
	if content == nil {
		return raw, nil
	}
	if len(content.Children) == 0 {
		if content.Text != "" {
			return hit.Raw{}, fmt.Errorf("content without document element: %w", domain.ErrMalformedHit)
		}
		return raw, nil
	}
	doc := content.Children[0]
	raw.Tags = make([]hit.Tag, 0, len(doc.Children))
	for _, c := range doc.Children {
		raw.Tags = append(raw.Tags, hit.Tag{Name: c.Name, Value: c.Text})
	}
	return raw, nil
}
