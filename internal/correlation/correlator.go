package correlation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logger"
	"github.com/yildizm/PortTriage/internal/logs"
)

// ErrNilIncident is returned when Gather is called without an incident
var ErrNilIncident = errors.New("incident cannot be nil")

// Sources are the collections an engine searches. A nil source behaves as an
// empty one.
type Sources struct {
	Logs      *logs.Correlator
	Cases     *cases.Store
	Knowledge *docstore.KnowledgeBase
	Contacts  *contacts.Directory
}

// Limits bound the size of each part of a Context
type Limits struct {
	SimilarCases     int
	ModuleCases      int
	Articles         int
	Procedures       int
	Timeline         int
	ErrorsPerService int
	MessageLength    int
}

// DefaultLimits returns the standard context limits
func DefaultLimits() Limits {
	return Limits{
		SimilarCases:     5,
		ModuleCases:      5,
		Articles:         5,
		Procedures:       3,
		Timeline:         20,
		ErrorsPerService: 3,
		MessageLength:    200,
	}
}

// Engine correlates parsed incidents against loaded sources. It holds no
// mutable state, so Gather may be called concurrently.
type Engine struct {
	sources Sources
	limits  Limits
	log     *logger.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLimits overrides the default context limits
func WithLimits(limits Limits) Option {
	return func(e *Engine) { e.limits = limits }
}

// WithLogger sets the engine logger
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over sources
func NewEngine(sources Sources, opts ...Option) *Engine {
	if sources.Logs == nil {
		sources.Logs = logs.NewCorrelator(nil)
	}
	if sources.Cases == nil {
		sources.Cases = cases.NewStore(nil)
	}
	if sources.Knowledge == nil {
		sources.Knowledge = docstore.NewKnowledgeBase(nil, "")
	}
	if sources.Contacts == nil {
		sources.Contacts = contacts.NewDirectory(nil)
	}

	e := &Engine{
		sources: sources,
		limits:  DefaultLimits(),
		log:     logger.New("correlation", nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sources returns the collections the engine searches
func (e *Engine) Sources() Sources {
	return e.sources
}

// Gather builds the context for one incident
func (e *Engine) Gather(p *incident.ParsedIncident) (*Context, error) {
	if p == nil {
		return nil, ErrNilIncident
	}

	terms := SearchTerms(p)
	ctx := &Context{
		SearchTerms:        terms,
		Logs:               e.searchLogs(terms),
		HistoricalCases:    e.searchCases(p.Keywords, string(p.Module)),
		KnowledgeBase:      e.searchKnowledge(p.Keywords),
		EscalationContacts: e.routeContacts(p.Module, p.Severity),
	}

	if !ctx.Logs.Results.Empty() {
		ctx.LogAnalysis = e.analyzeLogs(&ctx.Logs)
	}

	e.log.InfoWithFields("context gathered: %s", []logger.Field{
		logger.F("type", p.Type),
		logger.F("module", p.Module),
		logger.F("severity", p.Severity),
	}, ctx.Summary())

	return ctx, nil
}

// SearchTerms returns the incident's entity values without duplicates
func SearchTerms(p *incident.ParsedIncident) []string {
	return p.Entities.Values()
}

func (e *Engine) searchLogs(terms []string) LogContext {
	if len(terms) == 0 {
		return LogContext{Results: &logs.SearchResult{}, Summary: "No search terms"}
	}

	e.log.DebugWithFields("searching logs", []logger.Field{logger.Count(len(terms))})

	// one scan feeds every view
	results := e.sources.Logs.Search(terms)
	timeline := results.Timeline()
	if e.limits.Timeline >= 0 && len(timeline) > e.limits.Timeline {
		timeline = timeline[:e.limits.Timeline]
	}

	lc := LogContext{
		Results:          results,
		Errors:           results.Errors(),
		Warnings:         results.Warnings(),
		Timeline:         timeline,
		AffectedServices: results.AffectedServices(),
		Stats:            results.Analyze(),
		Summary:          fmt.Sprintf("%d entries in %d services", results.Total(), len(results.Services)),
	}

	e.log.DebugWithFields("log search complete", []logger.Field{
		logger.Count(results.Total()),
		logger.F("services", len(results.Services)),
	})

	return lc
}

func (e *Engine) analyzeLogs(lc *LogContext) *LogAnalysis {
	analysis := &LogAnalysis{
		ErrorCount:       lc.Stats.ErrorCount,
		WarningCount:     lc.Stats.WarningCount,
		AffectedServices: lc.AffectedServices,
	}

	for _, s := range lc.Errors.Services {
		for i, entry := range s.Entries {
			if i == e.limits.ErrorsPerService {
				break
			}
			analysis.ErrorMessages = append(analysis.ErrorMessages, ErrorMessage{
				Service:   s.Service,
				Timestamp: entry.Timestamp,
				Message:   common.Truncate(entry.Message, e.limits.MessageLength),
			})
		}
	}

	if lc.Stats.ErrorCount > 5 {
		analysis.Patterns = append(analysis.Patterns, PatternMultipleErrors)
	}
	if len(lc.AffectedServices) > 2 {
		analysis.Patterns = append(analysis.Patterns, PatternMultipleServices)
	}
	if len(lc.Timeline) > 3 {
		analysis.Patterns = append(analysis.Patterns, PatternSequence)
	}

	return analysis
}

func (e *Engine) searchCases(keywords []string, module string) CaseContext {
	similar := e.sources.Cases.SearchSimilar(keywords, e.limits.SimilarCases)
	moduleCases := e.sources.Cases.SearchByModule(module)
	if e.limits.ModuleCases >= 0 && len(moduleCases) > e.limits.ModuleCases {
		moduleCases = moduleCases[:e.limits.ModuleCases]
	}

	e.log.DebugWithFields("case search complete", []logger.Field{logger.Count(len(similar))})

	return CaseContext{
		Similar:      similar,
		ModuleCases:  moduleCases,
		TotalSimilar: len(similar),
		Summary:      fmt.Sprintf("%d similar cases found", len(similar)),
	}
}

func (e *Engine) searchKnowledge(keywords []string) KnowledgeContext {
	articles := e.sources.Knowledge.SearchByKeywords(keywords)
	procedures := e.sources.Knowledge.SearchProcedures(keywords)
	total := len(articles)

	if e.limits.Articles >= 0 && len(articles) > e.limits.Articles {
		articles = articles[:e.limits.Articles]
	}
	if e.limits.Procedures >= 0 && len(procedures) > e.limits.Procedures {
		procedures = procedures[:e.limits.Procedures]
	}

	e.log.DebugWithFields("knowledge search complete", []logger.Field{logger.Count(total)})

	return KnowledgeContext{
		Articles:      articles,
		Procedures:    procedures,
		TotalArticles: total,
		Summary:       fmt.Sprintf("%d articles found", total),
	}
}

func (e *Engine) routeContacts(module incident.Module, severity incident.Severity) ContactContext {
	routed := e.sources.Contacts.RouteIncident(string(module), severity)

	e.log.DebugWithFields("contacts routed", []logger.Field{
		logger.F("module", module),
		logger.F("severity", severity),
		logger.Count(len(routed)),
	})

	return ContactContext{
		Contacts: routed,
		Total:    len(routed),
		Summary:  fmt.Sprintf("%d contacts for %s", len(routed), module),
	}
}

// Summary joins the summaries of every source that produced results
func (c *Context) Summary() string {
	var parts []string
	if !c.Logs.Results.Empty() {
		parts = append(parts, c.Logs.Summary)
	}
	if len(c.HistoricalCases.Similar) > 0 {
		parts = append(parts, c.HistoricalCases.Summary)
	}
	if len(c.KnowledgeBase.Articles) > 0 {
		parts = append(parts, c.KnowledgeBase.Summary)
	}
	if len(c.EscalationContacts.Contacts) > 0 {
		parts = append(parts, c.EscalationContacts.Summary)
	}
	if len(parts) == 0 {
		return "No context found"
	}
	return strings.Join(parts, ", ")
}
