package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool
	DBSystem   string // postgresql, sqlite
	LogFullSQL bool   // include query variables in spans (development only)
}

// DBTracingPlugins returns the GORM plugins that trace queries, or none when
// tracing is disabled.
func DBTracingPlugins(cfg DBTracingConfig) []gorm.Plugin {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return []gorm.Plugin{otelgorm.NewPlugin(opts...)}
}
