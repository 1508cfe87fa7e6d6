package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
)

// FindSimilar returns documents similar to the referenced one, from the content channel.
func (s *Service) FindSimilar(ctx context.Context, req request.SimilarRequest) (result.Documents[result.Result], error) {
	reg := s.fields.Fields()
	if err := validateFilters(req.Restrictions().Filters(), reg); err != nil {
		return result.Documents[result.Result]{}, err
	}

	p := aci.NewParameters(aci.ActionSuggest).
		Add(aci.ParamReference, aci.References{req.Reference()})
	addRestrictions(p, req.Restrictions(), reg)
	addOutput(p, req.Output())

	data, err := s.backend.Execute(ctx, aci.Content, p)
	if err != nil {
		return result.Documents[result.Result]{}, fmt.Errorf("suggest: %w", err)
	}
	parsed, err := s.parser.Parse(ctx, data, req.Restrictions().Databases(), req.Restrictions().QueryText())
	if err != nil {
		return result.Documents[result.Result]{}, fmt.Errorf("parse suggest response: %w", err)
	}
	return parsed.Documents, nil
}

// GetContent fetches full documents, one backend call per group, results in request order.
func (s *Service) GetContent(ctx context.Context, req request.ContentRequest) (result.Documents[result.Result], error) {
	var (
		results   []result.Result
		malformed int
	)
	for i, g := range req.Groups() {
		p := aci.NewParameters(aci.ActionQuery).
			Add(aci.ParamMatchReference, aci.References(g.References())).
			Add(aci.ParamSummary, aci.SummaryConcept).
			Add(aci.ParamCombine, aci.CombineSimple).
			Add(aci.ParamText, aci.AnyText).
			Add(aci.ParamMaxResults, len(g.References())).
			Add(aci.ParamPrint, aci.PrintAll).
			Add(aci.ParamAnyLanguage, true)
		var dbs []string
		if g.Index() != "" {
			dbs = []string{g.Index()}
			p.Add(aci.ParamDatabaseMatch, aci.Databases(dbs))
		}

		data, err := s.backend.Execute(ctx, aci.Content, p)
		if err != nil {
			return result.Documents[result.Result]{}, fmt.Errorf("get content group %d: %w", i, err)
		}
		parsed, err := s.parser.Parse(ctx, data, dbs, aci.AnyText)
		if err != nil {
			return result.Documents[result.Result]{}, fmt.Errorf("parse content group %d: %w", i, err)
		}
		results = append(results, parsed.Documents.Results()...)
		malformed += parsed.Documents.ParseErrors()
	}
	if results == nil {
		results = []result.Result{}
	}
	return result.NewDocuments(results, len(results), "", nil, nil).WithParseErrors(malformed), nil
}

// StateToken stores the result set of restrictions on the content channel and
// returns the token naming it. The enrichment channel cannot store state.
func (s *Service) StateToken(ctx context.Context, restrictions request.Restrictions, maxResults int) (string, error) {
	if strings.TrimSpace(restrictions.QueryText()) == "" {
		return "", fmt.Errorf("%w: query text is required", domain.ErrInvalidRequest)
	}
	if maxResults <= 0 {
		maxResults = request.DefaultMaxResults
	}
	reg := s.fields.Fields()
	if err := validateFilters(restrictions.Filters(), reg); err != nil {
		return "", err
	}

	p := aci.NewParameters(aci.ActionQuery).Add(aci.ParamStoreState, true)
	addRestrictions(p, restrictions, reg)
	p.Add(aci.ParamPrint, aci.PrintNoResults).
		Add(aci.ParamMaxResults, maxResults)

	data, err := s.backend.Execute(ctx, aci.Content, p)
	if err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	token := data.ChildText("state")
	if token == "" {
		return "", fmt.Errorf("store state: no token in response: %w", domain.ErrMalformedResponse)
	}
	return token, nil
}

// RelatedConcepts returns the query summary concepts of a result set, empty when the backend has none.
func (s *Service) RelatedConcepts(ctx context.Context, req request.RelatedConceptsRequest) ([]result.Concept, error) {
	reg := s.fields.Fields()
	if err := validateFilters(req.Restrictions().Filters(), reg); err != nil {
		return nil, err
	}

	p := aci.NewParameters(aci.ActionQuery)
	addRestrictions(p, req.Restrictions(), reg)
	p.Add(aci.ParamMaxResults, req.MaxResults()).
		Add(aci.ParamPrint, aci.PrintNoResults).
		Add(aci.ParamQuerySummary, true).
		Add(aci.ParamQuerySummaryLength, req.QuerySummaryLength())

	data, err := s.backend.Execute(ctx, aci.Content, p)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return decodeConcepts(data), nil
}
