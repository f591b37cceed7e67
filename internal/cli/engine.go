package cli

import (
	"github.com/yildizm/PortTriage/internal/config"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/sources"
)

// engineLimits maps the search section of the configuration onto engine limits
func engineLimits(sc config.SearchConfig) correlation.Limits {
	return correlation.Limits{
		SimilarCases:     sc.SimilarCases,
		ModuleCases:      sc.ModuleCases,
		Articles:         sc.Articles,
		Procedures:       sc.Procedures,
		Timeline:         sc.Timeline,
		ErrorsPerService: sc.ErrorsPerService,
		MessageLength:    sc.MessageLength,
	}
}

// loadSources reads every configured source. Sources that fail are empty.
func loadSources(cfg *config.Config) (correlation.Sources, []sources.Status) {
	return sources.NewLoader(newLogger("sources")).Load(cfg.Data)
}

// buildEngine loads the configured sources and wraps them in an engine
func buildEngine(cfg *config.Config) (*correlation.Engine, []sources.Status) {
	src, statuses := loadSources(cfg)
	engine := correlation.NewEngine(src,
		correlation.WithLimits(engineLimits(cfg.Search)),
		correlation.WithLogger(newLogger("correlation")),
	)
	return engine, statuses
}
