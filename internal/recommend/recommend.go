// Package recommend decides what to do with a candidate requirement given
// its risk metrics and the sprint's state. It is a pure decision function;
// identical inputs always produce the identical recommendation.
package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/zulandar/sprintdeck/internal/impact"
	"github.com/zulandar/sprintdeck/internal/models"
)

// Action types, in the order the policy prefers them when risk forces a
// change of plan.
type ActionType string

const (
	ActionAdd   ActionType = "ADD"
	ActionSwap  ActionType = "SWAP"
	ActionDefer ActionType = "DEFER"
	ActionSplit ActionType = "SPLIT"
)

// DefaultMaxItemPoints is the split threshold used when no team limit is
// configured.
const DefaultMaxItemPoints = 8

// Share of a split item that goes to the analysis slice; the rest is
// implementation.
const splitAnalysisShare = 0.3

// TargetTicket is a snapshot of the sprint item proposed for removal in a
// SWAP. Snapshotting decouples the recommendation from later item edits.
type TargetTicket struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StoryPoints int    `json:"story_points"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// Recommendation is the engine's verdict. Target is populated only for SWAP;
// the constructors below enforce that a non-SWAP recommendation cannot carry
// one.
type Recommendation struct {
	Type          ActionType    `json:"recommendation_type"`
	Reasoning     string        `json:"reasoning"`
	Target        *TargetTicket `json:"target_ticket,omitempty"`
	Plan          []string      `json:"action_plan"`
	SplitRequired bool          `json:"split_required,omitempty"`
}

func newAdd(reasoning string, plan []string) Recommendation {
	return Recommendation{Type: ActionAdd, Reasoning: reasoning, Plan: plan}
}

func newSwap(reasoning string, target TargetTicket, plan []string) Recommendation {
	return Recommendation{Type: ActionSwap, Reasoning: reasoning, Target: &target, Plan: plan}
}

func newDefer(reasoning string, plan []string) Recommendation {
	return Recommendation{Type: ActionDefer, Reasoning: reasoning, Plan: plan}
}

func newSplit(reasoning string, plan []string) Recommendation {
	return Recommendation{Type: ActionSplit, Reasoning: reasoning, Plan: plan, SplitRequired: true}
}

// Engine applies the fixed-priority decision policy. The zero value uses
// DefaultMaxItemPoints as the split threshold.
type Engine struct {
	MaxItemPoints int
}

// Recommend evaluates the policy rules in fixed order; the first matching
// rule wins.
//
//  1. Critical schedule risk with a qualifying swap target: SWAP.
//  2. Critical schedule risk without a target, or critical quality risk: DEFER.
//  3. Critical effort risk on an item above the team's size limit: SPLIT.
//  4. Otherwise: ADD.
func (e Engine) Recommend(scores impact.ScoreSet, ctx impact.SprintContext, cand impact.Candidate, sprintItems []models.BacklogItem) Recommendation {
	scheduleCritical := scores.Schedule.Critical()
	qualityCritical := scores.Quality.Critical()
	effortCritical := scores.Effort.Critical()

	if scheduleCritical {
		if target, ok := findSwapTarget(ctx, cand, sprintItems); ok {
			reasoning := fmt.Sprintf(
				"Schedule risk is critical: projected load %d SP exceeds the team velocity of %d SP with %d day(s) remaining. Swapping out %q (%d SP, %s priority, %s) keeps the sprint load neutral while the higher-priority work proceeds.",
				ctx.CurrentLoad+cand.StoryPoints, ctx.TeamVelocity, ctx.DaysRemaining,
				target.Title, target.StoryPoints, target.Priority, target.Status)
			plan := []string{
				fmt.Sprintf("Move %q back to the unassigned backlog", target.Title),
				fmt.Sprintf("Add %q (%d SP) to the sprint", cand.Title, cand.StoryPoints),
				fmt.Sprintf("Renegotiate the delivery date for %q", target.Title),
			}
			return newSwap(reasoning, target, plan)
		}
	}

	if scheduleCritical || qualityCritical {
		var reasoning string
		switch {
		case scheduleCritical && qualityCritical:
			reasoning = fmt.Sprintf(
				"Both schedule and quality risk are critical (%s; %s) and no sprint item qualifies for a swap. Deferring protects the sprint goal.",
				scores.Schedule.Metric.Value, scores.Quality.Metric.Value)
		case scheduleCritical:
			reasoning = fmt.Sprintf(
				"Schedule risk is critical (%s) and no sprint item qualifies for a swap. Adding %d SP now would push the sprint past its goal.",
				scores.Schedule.Metric.Value, cand.StoryPoints)
		default:
			reasoning = fmt.Sprintf(
				"Quality risk is critical (%s). Delivering this under current sprint pressure invites defects.",
				scores.Quality.Metric.Value)
		}
		plan := []string{
			fmt.Sprintf("Keep %q in the unassigned backlog", cand.Title),
			"Prioritize it at the next sprint planning session",
		}
		return newDefer(reasoning, plan)
	}

	maxPoints := e.MaxItemPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxItemPoints
	}
	if effortCritical && cand.StoryPoints > maxPoints {
		analysisSP := int(math.Max(1, math.Round(float64(cand.StoryPoints)*splitAnalysisShare)))
		implSP := cand.StoryPoints - analysisSP
		reasoning := fmt.Sprintf(
			"Effort risk is critical (%s) and %d SP is above the team's %d SP single-item limit. The item must be decomposed before it can be planned.",
			scores.Effort.Metric.Value, cand.StoryPoints, maxPoints)
		plan := []string{
			fmt.Sprintf("Split %q into an analysis slice (~%d SP) and an implementation slice (~%d SP)", cand.Title, analysisSP, implSP),
			"Keep the combined item out of the active sprint until decomposed",
			"Schedule the slices at the next planning session",
		}
		return newSplit(reasoning, plan)
	}

	reasoning := fmt.Sprintf(
		"All metrics are within limits: projected load %d SP fits the team velocity of %d SP. Safe to add.",
		ctx.CurrentLoad+cand.StoryPoints, ctx.TeamVelocity)
	plan := []string{
		fmt.Sprintf("Add %q (%d SP) to the sprint", cand.Title, cand.StoryPoints),
		"Re-check capacity at the next standup",
	}
	return newAdd(reasoning, plan)
}

// findSwapTarget picks the sprint item to displace. Eligible items are not
// Done, not higher priority than the candidate, and large enough that
// removing them frees the points the candidate cannot fit. When the sprint
// is already loaded past velocity the shortfall is negative, so the target
// must be bigger than the candidate itself or the swap leaves the sprint
// overcommitted. Selection order: lowest priority, then earliest workflow
// stage (least invested work), then oldest creation time, then id.
func findSwapTarget(ctx impact.SprintContext, cand impact.Candidate, items []models.BacklogItem) (TargetTicket, bool) {
	needed := cand.StoryPoints - (ctx.TeamVelocity - ctx.CurrentLoad)

	candRank := models.PriorityRank(cand.Priority)
	var eligible []models.BacklogItem
	for _, it := range items {
		if it.Status == models.StatusDone {
			continue
		}
		if models.PriorityRank(it.Priority) > candRank {
			continue
		}
		if it.StoryPoints < needed {
			continue
		}
		eligible = append(eligible, it)
	}
	if len(eligible) == 0 {
		return TargetTicket{}, false
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		if sa, sb := models.StatusStage(a.Status), models.StatusStage(b.Status); sa != sb {
			return sa < sb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	best := eligible[0]
	return TargetTicket{
		ID:          best.ID,
		Title:       best.Title,
		StoryPoints: best.StoryPoints,
		Priority:    best.Priority,
		Status:      best.Status,
	}, true
}
