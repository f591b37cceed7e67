package sources

import (
	"fmt"
	"time"

	"github.com/yildizm/PortTriage/internal/cases"
	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/config"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/logger"
	"github.com/yildizm/PortTriage/internal/logs"
)

// Source names used in statuses and log fields
const (
	SourceLogs      = "logs"
	SourceCases     = "cases"
	SourceKnowledge = "knowledge_base"
	SourceContacts  = "contacts"
)

// Status describes the outcome of loading one source
type Status struct {
	Source string        `json:"source"`
	Path   string        `json:"path"`
	Items  int           `json:"items"`
	Detail string        `json:"detail,omitempty"`
	Took   time.Duration `json:"took"`
	Err    error         `json:"-"`
}

// Loaded reports whether the source loaded without error
func (s Status) Loaded() bool {
	return s.Err == nil
}

// Loader reads every configured source into correlation.Sources
type Loader struct {
	log *logger.Logger
}

// NewLoader creates a source loader. A nil logger disables warnings.
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads all sources. A source that fails to load is replaced by an
// empty collection and reported in its status; Load itself never fails.
func (l *Loader) Load(data config.DataConfig) (correlation.Sources, []Status) {
	var src correlation.Sources
	statuses := make([]Status, 0, 4)

	services, st := l.loadLogs(data)
	src.Logs = logs.NewCorrelator(services)
	statuses = append(statuses, st)

	caseList, st := l.loadCases(data.CaseLog)
	src.Cases = cases.NewStore(caseList)
	statuses = append(statuses, st)

	kb, st := l.loadKnowledge(data.KnowledgeBase)
	src.Knowledge = kb
	statuses = append(statuses, st)

	groups, st := l.loadContacts(data.Contacts)
	src.Contacts = contacts.NewDirectory(groups)
	statuses = append(statuses, st)

	return src, statuses
}

// Logs reads every requested service from dir, normalising structured lines
// with the given format. Missing services are skipped with a warning.
func (l *Loader) Logs(dir string, services []string, format string) ([]logs.Service, error) {
	dir = common.ExpandPath(dir)
	files, order, missing, err := serviceFiles(dir, services)
	if err != nil {
		return nil, &LoadError{Source: SourceLogs, Path: dir, Err: err}
	}
	for _, service := range missing {
		l.warn("Service log not found", logger.Service(service), logger.Path(dir))
	}

	result := make([]logs.Service, 0, len(order))
	for _, service := range order {
		path := files[service]
		lines, err := ReadLines(path)
		if err != nil {
			l.warn("Failed to read service log", logger.Service(service), logger.Error(err))
			continue
		}
		lines, err = NormalizeLines(lines, format)
		if err != nil {
			return nil, &LoadError{Source: SourceLogs, Path: path, Err: err}
		}
		result = append(result, logs.Service{Name: service, Lines: lines})
	}
	return result, nil
}

func (l *Loader) loadLogs(data config.DataConfig) ([]logs.Service, Status) {
	start := time.Now()
	st := Status{Source: SourceLogs, Path: data.LogsDir}

	services, err := l.Logs(data.LogsDir, data.LogServices, data.LogFormat)
	st.Took = time.Since(start)
	if err != nil {
		return nil, l.failed(st, err)
	}

	lines := 0
	for _, s := range services {
		lines += len(s.Lines)
	}
	st.Items = len(services)
	st.Detail = fmt.Sprintf("%d lines", lines)
	l.debug("Loaded service logs", st)
	return services, st
}

func (l *Loader) loadCases(path string) ([]cases.Case, Status) {
	start := time.Now()
	st := Status{Source: SourceCases, Path: path}

	list, err := LoadCases(common.ExpandPath(path))
	st.Took = time.Since(start)
	if err != nil {
		return nil, l.failed(st, &LoadError{Source: SourceCases, Path: path, Err: err})
	}

	st.Items = len(list)
	st.Detail = fmt.Sprintf("%d modules", len(cases.NewStore(list).Statistics().Modules))
	l.debug("Loaded case log", st)
	return list, st
}

func (l *Loader) loadKnowledge(path string) (*docstore.KnowledgeBase, Status) {
	start := time.Now()
	st := Status{Source: SourceKnowledge, Path: path}

	kb, err := LoadKnowledge(common.ExpandPath(path), l.log)
	st.Took = time.Since(start)
	if err != nil {
		return docstore.NewKnowledgeBase(nil, ""), l.failed(st, &LoadError{Source: SourceKnowledge, Path: path, Err: err})
	}

	st.Items = len(kb.Sections())
	if kb.IsFullDocument() {
		st.Detail = "no section headings, searching full document"
	}
	l.debug("Loaded knowledge base", st)
	return kb, st
}

func (l *Loader) loadContacts(path string) ([]contacts.Group, Status) {
	start := time.Now()
	st := Status{Source: SourceContacts, Path: path}

	groups, err := LoadContacts(common.ExpandPath(path))
	st.Took = time.Since(start)
	if err != nil {
		return nil, l.failed(st, &LoadError{Source: SourceContacts, Path: path, Err: err})
	}

	dir := contacts.NewDirectory(groups)
	st.Items = len(dir.All())
	st.Detail = fmt.Sprintf("%d modules", len(dir.Modules()))
	l.debug("Loaded contacts", st)
	return groups, st
}

func (l *Loader) failed(st Status, err error) Status {
	st.Err = err
	l.warn("Source unavailable, continuing with an empty collection",
		logger.Source(st.Source), logger.Error(err))
	return st
}

func (l *Loader) warn(msg string, fields ...logger.Field) {
	if l.log != nil {
		l.log.WarnWithFields(msg, fields)
	}
}

func (l *Loader) debug(msg string, st Status) {
	if l.log != nil {
		l.log.DebugWithFields(msg, []logger.Field{
			logger.Source(st.Source), logger.Count(st.Items), logger.Duration(st.Took),
		})
	}
}
