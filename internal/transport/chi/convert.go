package chi

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
)

func restrictionsFromDTO(r Restrictions) (request.Restrictions, error) {
	filters, err := filtersFromDTO(r.Filters)
	if err != nil {
		return request.Restrictions{}, err
	}
	return request.NewRestrictions(
		r.Text, r.FieldText, filters, r.Databases,
		r.MinDate, r.MaxDate, r.LanguageType, r.AnyLanguage,
	)
}

func outputFromDTO(o Output) (request.Output, error) {
	return request.NewOutput(
		o.Start, o.MaxResults, request.Summary(o.Summary),
		o.SummaryCharacters, o.Sort, o.Highlight,
	)
}

func queryRequestFromDTO(q QueryRequest) (request.Request, error) {
	restrictions, err := restrictionsFromDTO(q.Restrictions)
	if err != nil {
		return request.Request{}, err
	}
	output, err := outputFromDTO(q.Output)
	if err != nil {
		return request.Request{}, err
	}
	qt, ok := mode.Parse(q.QueryType)
	if !ok {
		return request.Request{}, fmt.Errorf("invalid query_type %q", q.QueryType)
	}
	return request.New(restrictions, output, q.AutoCorrect, qt)
}

func similarRequestFromDTO(q SimilarRequest) (request.SimilarRequest, error) {
	restrictions, err := restrictionsFromDTO(q.Restrictions)
	if err != nil {
		return request.SimilarRequest{}, err
	}
	output, err := outputFromDTO(q.Output)
	if err != nil {
		return request.SimilarRequest{}, err
	}
	return request.NewSimilar(q.Reference, restrictions, output)
}

func contentRequestFromDTO(q ContentRequest) (request.ContentRequest, error) {
	groups := make([]request.ContentGroup, 0, len(q.Groups))
	for _, g := range q.Groups {
		group, err := request.NewContentGroup(g.Index, g.References)
		if err != nil {
			return request.ContentRequest{}, err
		}
		groups = append(groups, group)
	}
	return request.NewContent(groups)
}

func relatedConceptsRequestFromDTO(q RelatedConceptsRequest) (request.RelatedConceptsRequest, error) {
	restrictions, err := restrictionsFromDTO(q.Restrictions)
	if err != nil {
		return request.RelatedConceptsRequest{}, err
	}
	return request.NewRelatedConcepts(restrictions, q.MaxResults, q.QuerySummaryLength)
}

func filtersFromDTO(f *FilterExpression) (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}

	must, err := conditionsFromDTO(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromDTO(f.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromDTO(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}

	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("new expression: %w", err)
	}
	return expr, nil
}

func conditionsFromDTO(cs []FilterCondition) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := conditionFromDTO(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromDTO(c FilterCondition) (filter.Condition, error) {
	if len(c.Match) > 0 && c.Range != nil {
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have match or range, not both", c.Key)
	}
	if len(c.Match) > 0 {
		cond, err := filter.NewMatch(c.Key, c.Match...)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("match filter: %w", err)
		}
		return cond, nil
	}
	if c.Range != nil {
		rng, err := filter.NewRangeFilter(c.Range.Gt, c.Range.Gte, c.Range.Lt, c.Range.Lte)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter for %q: %w", c.Key, err)
		}
		cond, err := filter.NewRange(c.Key, rng)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		return cond, nil
	}
	return filter.Condition{}, errors.New("filter condition must have either match or range")
}

func documentsToDTO(docs result.Documents[result.Result]) DocumentsResponse {
	items := make([]ResultItem, len(docs.Results()))
	for i, r := range docs.Results() {
		items[i] = resultToDTO(r)
	}

	resp := DocumentsResponse{
		Results:       items,
		TotalResults:  docs.TotalResults(),
		ExpandedQuery: docs.ExpandedQuery(),
		ParseErrors:   docs.ParseErrors(),
	}
	if sp := docs.Spelling(); sp != nil {
		resp.Spelling = &Spelling{
			Alternatives: sp.Alternatives,
			Corrected:    sp.Corrected,
			Original:     sp.Original,
		}
	}
	if w := docs.Warnings(); w != nil && len(w.InvalidDatabases) > 0 {
		resp.Warnings = &Warnings{InvalidDatabases: w.InvalidDatabases}
	}
	return resp
}

func resultToDTO(r result.Result) ResultItem {
	meta := r.Meta()
	item := ResultItem{
		Reference:     meta.Reference,
		Index:         meta.Index,
		Title:         meta.Title,
		Summary:       meta.Summary,
		Weight:        meta.Weight,
		PromotionName: meta.PromotionName,
		Promotion:     string(r.Promotion()),
		Fields:        r.Fields(),
	}
	if !meta.Date.IsZero() {
		d := meta.Date.UTC()
		item.Date = &d
	}
	return item
}

func conceptsToDTO(cs []result.Concept) []Concept {
	out := make([]Concept, len(cs))
	for i, c := range cs {
		out[i] = Concept{Text: c.Text, Cluster: c.Cluster, Docs: c.Docs}
	}
	return out
}
