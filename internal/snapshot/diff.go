package snapshot

import (
	"fmt"
	"math"
	"sort"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/typeexpr"
)

// FindingKind indicates the kind of change.
type FindingKind string

const (
	KindRemovedMethod      FindingKind = "removed_method"
	KindAddedMethod        FindingKind = "added_method"
	KindRemovedParam       FindingKind = "removed_param"
	KindAddedParam         FindingKind = "added_param"
	KindRequiredParamAdded FindingKind = "required_param_added"
	KindRequiredChanged    FindingKind = "required_changed"
	KindTypeChanged        FindingKind = "type_changed"
)

// Severity ranks how likely a change is to break callers.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Weight is the score deduction for one finding of this severity.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 3
	default:
		return 1
	}
}

// Finding is one difference between two manifests.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Severity Severity    `json:"severity"`
	MethodID string      `json:"method_id"`
	Param    string      `json:"param,omitempty"`
	Old      string      `json:"old,omitempty"`
	New      string      `json:"new,omitempty"`
	Message  string      `json:"message"`
}

// ManifestDiff is the complete comparison of two manifests.
type ManifestDiff struct {
	OldRef   string      `json:"old_ref,omitempty"`
	NewRef   string      `json:"new_ref,omitempty"`
	OldCount int         `json:"old_count"`
	NewCount int         `json:"new_count"`
	Findings []Finding   `json:"findings"`
	Summary  DiffSummary `json:"summary"`
	Score    float64     `json:"score"`
}

// DiffSummary provides aggregate stats about the diff.
type DiffSummary struct {
	MethodsAdded   int `json:"methods_added"`
	MethodsRemoved int `json:"methods_removed"`
	MethodsChanged int `json:"methods_changed"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
}

// Breaking reports whether any finding is high severity.
func (d *ManifestDiff) Breaking() bool { return d.Summary.High > 0 }

// BreakingCount returns the number of high severity findings.
func (d *ManifestDiff) BreakingCount() int { return d.Summary.High }

// Diff compares two manifests keyed by record id.
func Diff(old, new []*ir.MethodRecord) *ManifestDiff {
	oldIdx := ir.Index(old)
	newIdx := ir.Index(new)

	d := &ManifestDiff{
		OldCount: len(oldIdx),
		NewCount: len(newIdx),
		Findings: []Finding{},
	}

	for id, o := range oldIdx {
		n, ok := newIdx[id]
		if !ok {
			d.add(Finding{
				Kind:     KindRemovedMethod,
				Severity: SeverityHigh,
				MethodID: id,
				Message:  fmt.Sprintf("method %s was removed", id),
			})
			d.Summary.MethodsRemoved++
			continue
		}
		before := len(d.Findings)
		d.diffParams(id, o, n)
		if len(d.Findings) > before {
			d.Summary.MethodsChanged++
		}
	}

	for id := range newIdx {
		if _, ok := oldIdx[id]; !ok {
			d.add(Finding{
				Kind:     KindAddedMethod,
				Severity: SeverityLow,
				MethodID: id,
				Message:  fmt.Sprintf("method %s was added", id),
			})
			d.Summary.MethodsAdded++
		}
	}

	sort.Slice(d.Findings, func(i, j int) bool {
		a, b := d.Findings[i], d.Findings[j]
		if a.MethodID != b.MethodID {
			return a.MethodID < b.MethodID
		}
		if a.Param != b.Param {
			return a.Param < b.Param
		}
		return a.Kind < b.Kind
	})

	d.Score = computeScore(d.Findings, d.OldCount)
	return d
}

func (d *ManifestDiff) diffParams(id string, o, n *ir.MethodRecord) {
	for _, op := range o.Params {
		np := n.Param(op.Name)
		if np == nil {
			d.add(Finding{
				Kind:     KindRemovedParam,
				Severity: SeverityHigh,
				MethodID: id,
				Param:    op.Name,
				Message:  fmt.Sprintf("parameter %s was removed from %s", op.Name, id),
			})
			continue
		}

		if op.Required != np.Required {
			sev := SeverityMedium
			if np.Required {
				sev = SeverityHigh
			}
			d.add(Finding{
				Kind:     KindRequiredChanged,
				Severity: sev,
				MethodID: id,
				Param:    op.Name,
				Old:      requiredText(op.Required),
				New:      requiredText(np.Required),
				Message:  fmt.Sprintf("parameter %s of %s changed from %s to %s", op.Name, id, requiredText(op.Required), requiredText(np.Required)),
			})
		}

		if !typeexpr.Equivalent(op.Type.Name, np.Type.Name) {
			d.add(Finding{
				Kind:     KindTypeChanged,
				Severity: SeverityMedium,
				MethodID: id,
				Param:    op.Name,
				Old:      op.Type.Name,
				New:      np.Type.Name,
				Message:  fmt.Sprintf("parameter %s of %s changed type from %s to %s", op.Name, id, op.Type.Name, np.Type.Name),
			})
		}
	}

	for _, np := range n.Params {
		if o.Param(np.Name) != nil {
			continue
		}
		f := Finding{
			Kind:     KindAddedParam,
			Severity: SeverityLow,
			MethodID: id,
			Param:    np.Name,
			Message:  fmt.Sprintf("optional parameter %s was added to %s", np.Name, id),
		}
		if np.Required {
			f.Kind = KindRequiredParamAdded
			f.Severity = SeverityHigh
			f.Message = fmt.Sprintf("required parameter %s was added to %s", np.Name, id)
		}
		d.add(f)
	}
}

func (d *ManifestDiff) add(f Finding) {
	d.Findings = append(d.Findings, f)
	switch f.Severity {
	case SeverityHigh:
		d.Summary.High++
	case SeverityMedium:
		d.Summary.Medium++
	default:
		d.Summary.Low++
	}
}

// computeScore deducts weighted findings from 100, scaled by one tenth of the
// old method count. The result is rounded to one decimal and floored at 0.
func computeScore(findings []Finding, oldCount int) float64 {
	var total float64
	for _, f := range findings {
		total += f.Severity.Weight()
	}
	scale := math.Max(1, float64(oldCount)/10)
	score := 100 - total/scale
	if score < 0 {
		return 0
	}
	return math.Round(score*10) / 10
}

func requiredText(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}
