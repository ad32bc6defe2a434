package recommend

import (
	"fmt"
	"strings"

	"github.com/zulandar/sprintdeck/internal/impact"
)

// Display colors for the verdict banner.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
)

// Explanation is the human-facing rendering of a recommendation.
type Explanation struct {
	ShortTitle          string `json:"short_title"`
	DetailedExplanation string `json:"detailed_explanation"`
	RiskSummary         string `json:"risk_summary"`
	ActionVerb          string `json:"action_verb"`
	Color               string `json:"color"`
}

// Explain builds the narrative for a recommendation. The color reflects the
// worst metric status, not the action type: a safe ADD on a sprint running
// hot still shows yellow.
func Explain(rec Recommendation, scores impact.ScoreSet, cand impact.Candidate) Explanation {
	ex := Explanation{
		RiskSummary: riskSummary(scores),
		Color:       riskColor(scores),
	}

	switch rec.Type {
	case ActionSwap:
		ex.ShortTitle = "Swap it in"
		ex.ActionVerb = "Swap"
		ex.DetailedExplanation = fmt.Sprintf(
			"%q cannot fit in the current sprint without displacing something. Removing %q frees enough capacity to take it on without endangering the sprint goal.",
			cand.Title, rec.Target.Title)
	case ActionDefer:
		ex.ShortTitle = "Hold it back"
		ex.ActionVerb = "Defer"
		ex.DetailedExplanation = fmt.Sprintf(
			"Adding %q now is more likely to sink the sprint than to deliver value. Keep it at the top of the backlog and bring it into the next planning session.",
			cand.Title)
	case ActionSplit:
		ex.ShortTitle = "Break it down"
		ex.ActionVerb = "Split"
		ex.DetailedExplanation = fmt.Sprintf(
			"%q is too large to plan as a single item. Carve off an analysis slice of roughly 30%% of the points and plan the remaining implementation slice separately.",
			cand.Title)
	default:
		ex.ShortTitle = "Safe to add"
		ex.ActionVerb = "Add"
		ex.DetailedExplanation = fmt.Sprintf(
			"%q fits the sprint's remaining capacity and none of the risk metrics object. Add it and keep an eye on the burndown.",
			cand.Title)
	}
	return ex
}

func riskColor(scores impact.ScoreSet) string {
	anyWarning := false
	for _, r := range scores.All() {
		if !r.Available() {
			continue
		}
		switch r.Metric.Status {
		case impact.StatusCritical:
			return ColorRed
		case impact.StatusWarning:
			anyWarning = true
		}
	}
	if anyWarning {
		return ColorYellow
	}
	return ColorGreen
}

func riskSummary(scores impact.ScoreSet) string {
	var critical, warning []string
	for _, r := range scores.All() {
		if !r.Available() {
			continue
		}
		switch r.Metric.Status {
		case impact.StatusCritical:
			critical = append(critical, r.Metric.Label)
		case impact.StatusWarning:
			warning = append(warning, r.Metric.Label)
		}
	}
	switch {
	case len(critical) > 0:
		return "Critical: " + strings.Join(critical, ", ")
	case len(warning) > 0:
		return "Watch: " + strings.Join(warning, ", ")
	default:
		return "All metrics within limits"
	}
}
