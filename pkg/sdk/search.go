package querygate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
)

// Query runs a text query, routed by its query type.
func (c *Client) Query(ctx context.Context, q QueryRequest) (docs Documents, err error) {
	start := time.Now()
	defer func() { c.obs.observeDocuments("query", effectiveQueryType(q.QueryType), start, docs, err) }()

	req, err := toInternalRequest(q)
	if err != nil {
		return Documents{}, err
	}
	res, err := c.searchSvc.Query(ctx, req)
	if err != nil {
		return Documents{}, fmt.Errorf("query: %w", err)
	}
	return fromDocuments(res), nil
}

// effectiveQueryType is the routing qt resolves to, "invalid" when it names none.
func effectiveQueryType(qt QueryType) QueryType {
	m, ok := mode.Parse(string(qt))
	if !ok {
		return "invalid"
	}
	return QueryType(m)
}

// Promotions returns the promoted documents for q. It is empty when query
// manipulation is disabled or no QMS server is configured.
func (c *Client) Promotions(ctx context.Context, q QueryRequest) (docs Documents, err error) {
	start := time.Now()
	defer func() { c.obs.observeDocuments("promotions", QueryPromotions, start, docs, err) }()

	req, err := toInternalRequest(q)
	if err != nil {
		return Documents{}, err
	}
	res, err := c.searchSvc.QueryPromotions(ctx, req)
	if err != nil {
		return Documents{}, fmt.Errorf("promotions: %w", err)
	}
	return fromDocuments(res), nil
}

// FindSimilar returns documents similar to q.Reference.
func (c *Client) FindSimilar(ctx context.Context, q SimilarRequest) (docs Documents, err error) {
	start := time.Now()
	defer func() { c.obs.observeDocuments("find_similar", "", start, docs, err) }()

	restrictions, output, err := toInternalScope(q.Restrictions, q.Output)
	if err != nil {
		return Documents{}, err
	}
	req, err := request.NewSimilar(q.Reference, restrictions, output)
	if err != nil {
		return Documents{}, err
	}
	res, err := c.searchSvc.FindSimilar(ctx, req)
	if err != nil {
		return Documents{}, fmt.Errorf("find similar: %w", err)
	}
	return fromDocuments(res), nil
}

// GetContent fetches full documents group by group, in request order.
func (c *Client) GetContent(ctx context.Context, groups ...ContentGroup) (docs Documents, err error) {
	start := time.Now()
	defer func() { c.obs.observeDocuments("get_content", "", start, docs, err) }()

	internal := make([]request.ContentGroup, 0, len(groups))
	for _, g := range groups {
		cg, err := request.NewContentGroup(g.Index, g.References)
		if err != nil {
			return Documents{}, err
		}
		internal = append(internal, cg)
	}
	req, err := request.NewContent(internal)
	if err != nil {
		return Documents{}, err
	}
	res, err := c.searchSvc.GetContent(ctx, req)
	if err != nil {
		return Documents{}, fmt.Errorf("get content: %w", err)
	}
	return fromDocuments(res), nil
}

// StateToken stores the result set of r on the content backend and returns its token.
func (c *Client) StateToken(ctx context.Context, r Restrictions, maxResults int) (token string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("state_token", start, err) }()

	restrictions, err := toInternalRestrictions(r)
	if err != nil {
		return "", err
	}
	token, err = c.searchSvc.StateToken(ctx, restrictions, maxResults)
	if err != nil {
		return "", fmt.Errorf("state token: %w", err)
	}
	return token, nil
}

// RelatedConcepts returns up to summaryLength concepts that summarize the
// first maxResults documents matching r. Zero values take the defaults.
func (c *Client) RelatedConcepts(
	ctx context.Context, r Restrictions, maxResults, summaryLength int,
) (concepts []Concept, err error) {
	start := time.Now()
	defer func() { c.obs.observe("related_concepts", start, err) }()

	restrictions, err := toInternalRestrictions(r)
	if err != nil {
		return nil, err
	}
	req, err := request.NewRelatedConcepts(restrictions, maxResults, summaryLength)
	if err != nil {
		return nil, err
	}
	res, err := c.searchSvc.RelatedConcepts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("related concepts: %w", err)
	}
	concepts = make([]Concept, len(res))
	for i, rc := range res {
		concepts[i] = Concept{Text: rc.Text, Cluster: rc.Cluster, Docs: rc.Docs}
	}
	return concepts, nil
}

func toInternalRequest(q QueryRequest) (request.Request, error) {
	restrictions, output, err := toInternalScope(q.Restrictions, q.Output)
	if err != nil {
		return request.Request{}, err
	}
	qt, ok := mode.Parse(string(q.QueryType))
	if !ok {
		return request.Request{}, fmt.Errorf("%w: invalid query type %q", domain.ErrInvalidRequest, q.QueryType)
	}
	return request.New(restrictions, output, q.AutoCorrect, qt)
}

func toInternalScope(r Restrictions, o Output) (request.Restrictions, request.Output, error) {
	restrictions, err := toInternalRestrictions(r)
	if err != nil {
		return request.Restrictions{}, request.Output{}, err
	}
	output, err := request.NewOutput(
		o.Start, o.MaxResults, request.Summary(o.Summary), o.SummaryCharacters, o.Sort, o.Highlight,
	)
	if err != nil {
		return request.Restrictions{}, request.Output{}, err
	}
	return restrictions, output, nil
}

func toInternalRestrictions(r Restrictions) (request.Restrictions, error) {
	var filters filter.Expression
	if r.Filters != nil {
		var err error
		filters, err = toInternalFilters(*r.Filters)
		if err != nil {
			return request.Restrictions{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
	}
	return request.NewRestrictions(
		r.Text, r.FieldText, filters, r.Databases, r.MinDate, r.MaxDate, r.LanguageType, r.AnyLanguage,
	)
}

func toInternalFilters(fe FilterExpression) (filter.Expression, error) {
	must, err := toConditions(fe.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := toConditions(fe.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := toConditions(fe.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter expression: %w", err)
	}
	return expr, nil
}

func toConditions(conds []FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(conds))
	for _, fc := range conds {
		switch {
		case len(fc.Match) > 0 && fc.Range != nil:
			return nil, fmt.Errorf("filter %q: match and range are mutually exclusive", fc.Key)
		case len(fc.Match) > 0:
			c, err := filter.NewMatch(fc.Key, fc.Match...)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", fc.Key, err)
			}
			out = append(out, c)
		case fc.Range != nil:
			r, err := filter.NewRangeFilter(fc.Range.GT, fc.Range.GTE, fc.Range.LT, fc.Range.LTE)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", fc.Key, err)
			}
			c, err := filter.NewRange(fc.Key, r)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", fc.Key, err)
			}
			out = append(out, c)
		default:
			return nil, errors.New("filter condition must have either match or range")
		}
	}
	return out, nil
}

func fromDocuments(d result.Documents[result.Result]) Documents {
	out := Documents{
		Results:       make([]Result, len(d.Results())),
		TotalResults:  d.TotalResults(),
		ExpandedQuery: d.ExpandedQuery(),
		ParseErrors:   d.ParseErrors(),
	}
	for i, r := range d.Results() {
		out.Results[i] = fromResult(r)
	}
	if sp := d.Spelling(); sp != nil {
		out.Spelling = &Spelling{
			Alternatives: append([]string(nil), sp.Alternatives...),
			Corrected:    sp.Corrected,
			Original:     sp.Original,
		}
	}
	if w := d.Warnings(); w != nil {
		out.InvalidDatabases = append([]string(nil), w.InvalidDatabases...)
	}
	return out
}

func fromResult(r result.Result) Result {
	meta := r.Meta()
	fields := make(map[string]any, len(r.Fields()))
	for id, v := range r.Fields() {
		fields[id] = fromValue(v)
	}
	return Result{
		Reference:     meta.Reference,
		Index:         meta.Index,
		Title:         meta.Title,
		Summary:       meta.Summary,
		Date:          meta.Date,
		Weight:        meta.Weight,
		PromotionName: meta.PromotionName,
		Promotion:     string(r.Promotion()),
		Fields:        fields,
	}
}

func fromValue(v field.Value) any {
	switch v.Kind() {
	case field.KindNumber:
		n, _ := v.AsNumber()
		return n
	case field.KindDate:
		t, _ := v.AsDate()
		return t
	case field.KindBoolean:
		b, _ := v.AsBoolean()
		return b
	case field.KindList:
		vs := v.Values()
		out := make([]any, len(vs))
		for i, e := range vs {
			out[i] = fromValue(e)
		}
		return out
	}
	s, _ := v.AsString()
	return s
}
