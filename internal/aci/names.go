// Package aci speaks the backend's action/parameter protocol: ordered request
// parameters, XML response trees, error envelopes and per-channel HTTP clients.
package aci

// Channel identifies a backend endpoint.
type Channel string

// Backend channels.
const (
	// Content is the direct search engine.
	Content Channel = "content"
	// QMS is the query manipulation server that fronts Content with rules and promotions.
	QMS Channel = "qms"
)

// Actions.
const (
	ActionQuery      = "Query"
	ActionSuggest    = "Suggest"
	ActionGetStatus  = "GetStatus"
	ActionGetVersion = "GetVersion"
)

// Parameter names.
const (
	ParamAction             = "action"
	ParamText               = "Text"
	ParamFieldText          = "FieldText"
	ParamDatabaseMatch      = "DatabaseMatch"
	ParamMinDate            = "MinDate"
	ParamMaxDate            = "MaxDate"
	ParamLanguageType       = "LanguageType"
	ParamAnyLanguage        = "AnyLanguage"
	ParamStart              = "Start"
	ParamMaxResults         = "MaxResults"
	ParamSummary            = "Summary"
	ParamCharacters         = "Characters"
	ParamSort               = "Sort"
	ParamPrint              = "Print"
	ParamHighlight          = "Highlight"
	ParamTotalResults       = "TotalResults"
	ParamSpellCheck         = "SpellCheck"
	ParamPromotions         = "Promotions"
	ParamBlacklist          = "Blacklist"
	ParamExpandQuery        = "ExpandQuery"
	ParamReference          = "Reference"
	ParamMatchReference     = "MatchReference"
	ParamCombine            = "Combine"
	ParamStoreState         = "StoreState"
	ParamQuerySummary       = "QuerySummary"
	ParamQuerySummaryLength = "QuerySummaryLength"
	ParamPredict            = "Predict"
	ParamXMLMeta            = "XMLMeta"
)

// Well-known parameter values.
const (
	PrintAll        = "All"
	PrintNoResults  = "NoResults"
	CombineSimple   = "Simple"
	SummaryConcept  = "Concept"
	HighlightTerms  = "Terms"
	AnyText         = "*"
	ResponseSuccess = "SUCCESS"
	ResponseError   = "ERROR"
)
