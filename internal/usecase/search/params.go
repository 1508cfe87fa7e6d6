package search

import (
	"fmt"

	"github.com/kailas-cloud/querygate/internal/aci"
	"github.com/kailas-cloud/querygate/internal/domain"
	"github.com/kailas-cloud/querygate/internal/domain/field"
	"github.com/kailas-cloud/querygate/internal/domain/search/filter"
	"github.com/kailas-cloud/querygate/internal/domain/search/request"
)

// qmsOnlyParams are understood by the enrichment channel only.
var qmsOnlyParams = []string{aci.ParamPromotions, aci.ParamBlacklist, aci.ParamExpandQuery}

// addRestrictions adds what to search. Filter keys naming a configured field
// are sent as that field's first backend name.
func addRestrictions(p *aci.Parameters, r request.Restrictions, reg *field.Registry) {
	if r.QueryText() != "" {
		p.Add(aci.ParamText, r.QueryText())
	}
	if ft := fieldText(r, reg); ft != "" {
		p.Add(aci.ParamFieldText, ft)
	}
	if len(r.Databases()) > 0 {
		p.Add(aci.ParamDatabaseMatch, aci.Databases(r.Databases()))
	}
	if r.MinDate() != nil {
		p.Add(aci.ParamMinDate, *r.MinDate())
	}
	if r.MaxDate() != nil {
		p.Add(aci.ParamMaxDate, *r.MaxDate())
	}
	if r.LanguageType() != "" {
		p.Add(aci.ParamLanguageType, r.LanguageType())
	}
	if r.AnyLanguage() {
		p.Add(aci.ParamAnyLanguage, true)
	}
}

func fieldText(r request.Restrictions, reg *field.Registry) string {
	structured := r.Filters().Render(func(key string) string {
		if cfg, ok := reg.LookupByID(key); ok {
			return field.NormalizePath(cfg.Names()[0])
		}
		return key
	})
	switch {
	case structured == "":
		return r.FieldText()
	case r.FieldText() == "":
		return structured
	}
	return "(" + r.FieldText() + ") AND (" + structured + ")"
}

// addOutput adds pagination and presentation. MaxResults is the 1-based end index.
func addOutput(p *aci.Parameters, o request.Output) {
	p.Add(aci.ParamStart, o.Start())
	p.Add(aci.ParamMaxResults, o.End())
	p.Add(aci.ParamSummary, string(o.Summary()))
	p.Add(aci.ParamCharacters, o.Characters())
	if o.Sort() != "" {
		p.Add(aci.ParamSort, o.Sort())
	}
	p.Add(aci.ParamPrint, aci.PrintAll)
	p.Add(aci.ParamTotalResults, true)
	p.Add(aci.ParamPredict, false)
	p.Add(aci.ParamXMLMeta, true)
	if o.Highlight() {
		p.Add(aci.ParamHighlight, aci.HighlightTerms)
	}
}

// addQueryManipulation adds the enrichment channel's own parameters.
func addQueryManipulation(p *aci.Parameters, qm domain.QueryManipulation) {
	if qm.Blacklist != "" {
		p.Add(aci.ParamBlacklist, qm.Blacklist)
	}
	p.Add(aci.ParamExpandQuery, qm.ExpandQuery)
}

// stripQueryManipulation returns a copy safe to send to the content channel.
func stripQueryManipulation(p *aci.Parameters) *aci.Parameters {
	out := p.Clone()
	for _, name := range qmsOnlyParams {
		out.Del(name)
	}
	return out
}

// validateFilters rejects range conditions on configured fields that are not numeric or dates.
func validateFilters(expr filter.Expression, reg *field.Registry) error {
	if expr.IsEmpty() {
		return nil
	}
	groups := [][]filter.Condition{expr.Must(), expr.Should(), expr.MustNot()}
	for _, conditions := range groups {
		for _, c := range conditions {
			cfg, ok := reg.LookupByID(c.Key())
			if !ok || !c.IsRange() {
				continue
			}
			if cfg.Type() != field.Number && cfg.Type() != field.Date {
				return fmt.Errorf("%w: range filter on %s field %q", domain.ErrInvalidRequest, cfg.Type(), c.Key())
			}
		}
	}
	return nil
}
