package qualitygate

import (
	"fmt"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/snapshot"
)

// RemovedGate limits how many methods may disappear.
type RemovedGate struct {
	MaxRemoved int
	severity   GateSeverity
}

func NewRemovedGate(maxRemoved int, severity GateSeverity) *RemovedGate {
	return &RemovedGate{MaxRemoved: maxRemoved, severity: severity}
}

func (g *RemovedGate) Name() string           { return "removed" }
func (g *RemovedGate) Severity() GateSeverity { return g.severity }
func (g *RemovedGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	removed := ctx.Diff.Summary.MethodsRemoved
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Value:     float64(removed),
		Threshold: float64(g.MaxRemoved),
	}
	if removed <= g.MaxRemoved {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("%d removed methods (max %d)", removed, g.MaxRemoved)
		return r, nil
	}
	r.Status = GateFailed
	r.Message = fmt.Sprintf("%d removed methods exceeds max %d", removed, g.MaxRemoved)
	r.Details = findingIDs(ctx.Diff, snapshot.KindRemovedMethod)
	return r, nil
}

// BreakingGate limits the number of high severity findings.
type BreakingGate struct {
	MaxBreaking int
	severity    GateSeverity
}

func NewBreakingGate(maxBreaking int, severity GateSeverity) *BreakingGate {
	return &BreakingGate{MaxBreaking: maxBreaking, severity: severity}
}

func (g *BreakingGate) Name() string           { return "breaking" }
func (g *BreakingGate) Severity() GateSeverity { return g.severity }
func (g *BreakingGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	breaking := ctx.Diff.BreakingCount()
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Value:     float64(breaking),
		Threshold: float64(g.MaxBreaking),
	}
	if breaking <= g.MaxBreaking {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("%d breaking changes (max %d)", breaking, g.MaxBreaking)
		return r, nil
	}
	r.Status = GateFailed
	r.Message = fmt.Sprintf("%d breaking changes exceeds max %d", breaking, g.MaxBreaking)
	for _, f := range ctx.Diff.Findings {
		if f.Severity == snapshot.SeverityHigh {
			r.Details = append(r.Details, f.Message)
		}
	}
	return r, nil
}

// ScoreGate checks that the drift score meets a threshold.
type ScoreGate struct {
	MinScore float64
	severity GateSeverity
}

func NewScoreGate(minScore float64, severity GateSeverity) *ScoreGate {
	return &ScoreGate{MinScore: minScore, severity: severity}
}

func (g *ScoreGate) Name() string           { return "score" }
func (g *ScoreGate) Severity() GateSeverity { return g.severity }
func (g *ScoreGate) Evaluate(ctx *EvalContext) (*GateResult, error) {
	score := ctx.Diff.Score
	r := &GateResult{
		Name:      g.Name(),
		Severity:  g.severity,
		Value:     score,
		Threshold: g.MinScore,
	}
	if score >= g.MinScore {
		r.Status = GatePassed
		r.Message = fmt.Sprintf("Score %.1f meets threshold %.1f", score, g.MinScore)
	} else {
		r.Status = GateFailed
		r.Message = fmt.Sprintf("Score %.1f below threshold %.1f", score, g.MinScore)
	}
	return r, nil
}

func findingIDs(d *snapshot.ManifestDiff, kind snapshot.FindingKind) []string {
	var out []string
	for _, f := range d.Findings {
		if f.Kind == kind {
			out = append(out, f.MethodID)
		}
	}
	return out
}
