// Package search executes queries against the backend: channel selection,
// the auto-correct retry, enrichment fallback and response parsing.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/search/mode"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
	"github.com/kailas-cloud/querygate/internal/domain/search/result"
	"github.com/kailas-cloud/querygate/internal/metrics"
)

// Service runs search operations. It holds no per-request state.
type Service struct {
	backend  Backend
	fields   FieldsSource
	settings Settings
	parser   *Parser
	logger   *zap.Logger
}

// New creates a search service.
func New(backend Backend, fields FieldsSource, settings Settings, dbs DatabaseLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:  backend,
		fields:   fields,
		settings: settings,
		parser:   NewParser(fields, dbs, logger),
		logger:   logger,
	}
}

// Query runs a search, routing by query type and the enrichment setting.
func (s *Service) Query(ctx context.Context, req request.Request) (result.Documents[result.Result], error) {
	docs, _, err := s.Execute(ctx, req, req.QueryType() == mode.Promotions)
	return docs, err
}

// QueryPromotions runs req for promotions only.
func (s *Service) QueryPromotions(ctx context.Context, req request.Request) (result.Documents[result.Result], error) {
	docs, _, err := s.Execute(ctx, req, true)
	return docs, err
}

// enrichmentEnabled reads the current setting; QMS must also be wired.
func (s *Service) enrichmentEnabled() (domain.QueryManipulation, bool) {
	qm := s.settings.QueryManipulation()
	return qm, qm.Enabled && s.backend.Has(aci.QMS)
}

// Execute runs one query through the execution state machine and reports the path taken.
//
// Promotions exist on the enrichment channel only: without it the result is
// empty. A missing-rule rejection from the enrichment channel is retried once
// on the content channel, except for promotions, which come back empty.
// With auto-correct on, a spelling suggestion triggers exactly one re-run with
// the suggested text on the same channel.
func (s *Service) Execute(
	ctx context.Context, req request.Request, promotions bool,
) (result.Documents[result.Result], Execution, error) {
	qm, enrichment := s.enrichmentEnabled()
	if promotions && !enrichment {
		s.logger.Debug("Promotions requested without enrichment channel, returning empty result")
		metrics.QueryExecutionsTotal.WithLabelValues(string(mode.Promotions), "none", "empty").Inc()
		return result.Empty[result.Result](), Execution{Path: []State{StateDone}}, nil
	}

	ch := aci.Content
	if enrichment && req.QueryType() != mode.Raw {
		ch = aci.QMS
	}
	if promotions {
		ch = aci.QMS
	}

	r := &run{
		svc:        s,
		req:        req,
		qm:         qm,
		promotions: promotions,
		channel:    ch,
		exec:       Execution{Channel: ch},
		logger:     s.logger.With(zap.String("channel", string(ch)), zap.String("query_type", string(req.QueryType()))),
	}
	r.logger.Debug("Selected backend channel", zap.Bool("promotions", promotions))

	docs, err := r.drive(ctx)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case containsState(r.exec.Path, StateFallbackExecute):
		outcome = "fallback"
	case containsState(r.exec.Path, StateRetryExecute):
		outcome = "corrected"
	case containsState(r.exec.Path, StateEnrichmentRejected):
		outcome = "empty"
	}
	metrics.QueryExecutionsTotal.WithLabelValues(string(req.QueryType()), string(ch), outcome).Inc()

	return docs, r.exec, err
}

// run is the mutable state of one Execute call.
type run struct {
	svc        *Service
	req        request.Request
	qm         domain.QueryManipulation
	promotions bool
	channel    aci.Channel
	exec       Execution
	logger     *zap.Logger

	params   *aci.Parameters
	parsed   Parsed
	err      error
	docs     result.Documents[result.Result]
	retryReq *aci.Parameters
}

func (r *run) drive(ctx context.Context) (result.Documents[result.Result], error) {
	state := StateBuildParams
	for {
		r.exec.Path = append(r.exec.Path, state)
		if state.Terminal() {
			break
		}
		next := r.step(ctx, state)
		if !CanTransition(state, next) {
			panic(fmt.Sprintf("search: illegal transition %s -> %s", state, next))
		}
		state = next
	}
	if state == StateFailed {
		return result.Documents[result.Result]{}, r.err
	}
	return r.docs, nil
}

func (r *run) step(ctx context.Context, state State) State {
	switch state {
	case StateBuildParams:
		r.params, r.err = r.svc.buildQuery(r.req, r.channel, r.qm, r.promotions)
		if r.err != nil {
			return StateFailed
		}
		return StateExecute

	case StateExecute:
		r.exec.Calls++
		r.parsed, r.err = r.svc.execute(ctx, r.channel, r.params, r.req)
		if r.err != nil {
			if r.channel == aci.QMS && domain.IsMissingRule(r.err) {
				return StateEnrichmentRejected
			}
			r.err = fmt.Errorf("query %s: %w", r.channel, r.err)
			return StateFailed
		}
		if r.req.AutoCorrect() && r.parsed.Suggestion != nil {
			return StateSpellingSuggested
		}
		return StateNoSuggestion

	case StateSpellingSuggested:
		r.retryReq = r.params.Clone().
			Set(aci.ParamText, r.parsed.Suggestion.Query).
			Set(aci.ParamSpellCheck, false)
		metrics.AutocorrectRetriesTotal.Inc()
		r.logger.Info("Retrying query with suggested spelling",
			zap.String("original", r.req.Restrictions().QueryText()),
			zap.String("corrected", r.parsed.Suggestion.Query),
		)
		return StateRetryExecute

	case StateRetryExecute:
		r.exec.Calls++
		retried, err := r.svc.execute(ctx, r.channel, r.retryReq, r.req)
		if err != nil {
			r.err = fmt.Errorf("corrected query %s: %w", r.channel, err)
			return StateFailed
		}
		r.docs = retried.Documents.WithSpelling(&result.Spelling{
			Alternatives: r.parsed.Suggestion.Alternatives,
			Corrected:    r.parsed.Suggestion.Query,
			Original:     r.req.Restrictions().QueryText(),
		})
		return StateDone

	case StateNoSuggestion:
		r.docs = r.parsed.Documents
		return StateDone

	case StateEnrichmentRejected:
		if r.promotions {
			r.logger.Warn("Enrichment channel has no rule for promotions, returning empty result", zap.Error(r.err))
			r.err = nil
			r.docs = result.Empty[result.Result]()
			return StateDone
		}
		r.logger.Warn("Enrichment channel rejected query, falling back to content channel", zap.Error(r.err))
		r.err = nil
		r.params = stripQueryManipulation(r.params)
		metrics.EnrichmentFallbacksTotal.Inc()
		return StateFallbackExecute

	case StateFallbackExecute:
		r.exec.Calls++
		parsed, err := r.svc.execute(ctx, aci.Content, r.params, r.req)
		if err != nil {
			r.err = fmt.Errorf("fallback query %s: %w", aci.Content, err)
			return StateFailed
		}
		r.docs = parsed.Documents
		return StateDone
	}
	r.err = fmt.Errorf("search: no step for state %s", state)
	return StateFailed
}

// buildQuery builds the parameters of a Query action for ch.
func (s *Service) buildQuery(
	req request.Request, ch aci.Channel, qm domain.QueryManipulation, promotions bool,
) (*aci.Parameters, error) {
	reg := s.fields.Fields()
	if err := validateFilters(req.Restrictions().Filters(), reg); err != nil {
		return nil, err
	}
	p := aci.NewParameters(aci.ActionQuery)
	addRestrictions(p, req.Restrictions(), reg)
	addOutput(p, req.Output())
	if ch == aci.QMS {
		addQueryManipulation(p, qm)
	}
	if req.AutoCorrect() {
		p.Add(aci.ParamSpellCheck, true)
	}
	if promotions {
		p.Add(aci.ParamPromotions, true)
	}
	return p, nil
}

// execute runs one backend call and parses its response against the current snapshots.
func (s *Service) execute(ctx context.Context, ch aci.Channel, p *aci.Parameters, req request.Request) (Parsed, error) {
	data, err := s.backend.Execute(ctx, ch, p)
	if err != nil {
		return Parsed{}, err
	}
	text, _ := p.Get(aci.ParamText)
	parsed, err := s.parser.Parse(ctx, data, req.Restrictions().Databases(), text)
	if err != nil {
		return Parsed{}, fmt.Errorf("parse %s response: %w", p.Action(), err)
	}
	return parsed, nil
}

func containsState(path []State, s State) bool {
	for _, p := range path {
		if p == s {
			return true
		}
	}
	return false
}
