package qualitygate

import (
	"fmt"
	"strings"
)

// GateConfig defines the configuration for quality gates. A negative max
// or a non-positive min score disables that gate.
type GateConfig struct {
	MaxRemoved       int    `mapstructure:"max_removed" json:"max_removed"`
	RemovedSeverity  string `mapstructure:"removed_severity" json:"removed_severity"`
	MaxBreaking      int    `mapstructure:"max_breaking" json:"max_breaking"`
	BreakingSeverity string `mapstructure:"breaking_severity" json:"breaking_severity"`

	MinScore      float64 `mapstructure:"min_score" json:"min_score"`
	ScoreSeverity string  `mapstructure:"score_severity" json:"score_severity"`
}

// DefaultConfig returns the default gates: no removed methods and no breaking
// changes, both failing the run; no score gate.
func DefaultConfig() *GateConfig {
	return &GateConfig{
		MaxRemoved:       0,
		RemovedSeverity:  "error",
		MaxBreaking:      0,
		BreakingSeverity: "error",
		MinScore:         0,
		ScoreSeverity:    "warning",
	}
}

// parseSeverity converts a string to GateSeverity.
func parseSeverity(s string) GateSeverity {
	switch strings.ToLower(s) {
	case "warning", "warn", "advisory":
		return SeverityWarning
	default:
		return SeverityError
	}
}

// BuildPipeline constructs a gate pipeline from configuration.
func BuildPipeline(cfg *GateConfig) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := NewPipeline()

	if cfg.MaxRemoved >= 0 {
		p.AddGate(NewRemovedGate(cfg.MaxRemoved, parseSeverity(cfg.RemovedSeverity)))
	}

	if cfg.MaxBreaking >= 0 {
		p.AddGate(NewBreakingGate(cfg.MaxBreaking, parseSeverity(cfg.BreakingSeverity)))
	}

	if cfg.MinScore > 0 {
		p.AddGate(NewScoreGate(cfg.MinScore, parseSeverity(cfg.ScoreSeverity)))
	}

	return p
}

// FormatReport returns a human-readable quality gate report.
func FormatReport(result *PipelineResult) string {
	var b strings.Builder
	b.WriteString("╔══════════════════════════════════════════╗\n")
	b.WriteString("║        Drift Gate Report                 ║\n")
	b.WriteString("╠══════════════════════════════════════════╣\n")

	for _, gr := range result.Gates {
		icon := "✓"
		switch gr.Status {
		case GateFailed:
			icon = "✗"
		case GateSkipped:
			icon = "○"
		case GateWarning:
			icon = "⚠"
		}

		fmt.Fprintf(&b, "║ %s %-10s %-9s %s\n", icon, gr.Name, "["+strings.ToUpper(string(gr.Severity))+"]", gr.Message)
		for _, d := range gr.Details {
			fmt.Fprintf(&b, "║   → %s\n", d)
		}
	}

	b.WriteString("╠══════════════════════════════════════════╣\n")
	status := "PASSED"
	if result.Status == GateFailed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "║ Result: %s (%s)\n", status, result.Summary)
	b.WriteString("╚══════════════════════════════════════════╝\n")

	return b.String()
}
