package impact

import (
	"fmt"
	"math"

	"github.com/zulandar/sprintdeck/internal/models"
)

// Threshold constants for the four scorers. Status tiers derive only from
// these numbers, never from labels.
const (
	// Effort escalates as the candidate outgrows the space's average item.
	EffortWarnRatio = 1.5
	EffortCritRatio = 2.0

	// Schedule runs hot above this share of team velocity.
	ScheduleWarnUtilization = 0.8

	// Productivity drag tiers, in velocity percent.
	DragWarnPct = 10.0
	DragCritPct = 30.0

	// Quality defect-likelihood tiers, in percent.
	DefectWarnPct = 30.0
	DefectCritPct = 60.0

	// A sprint loaded beyond this fraction of velocity amplifies the
	// productivity and quality risk of new work.
	HighUtilization = 0.8
)

// Priority drag bases: the context-switch cost percentage a new item of the
// given priority imposes on a mid-flight sprint.
var priorityDrag = map[string]float64{
	models.PriorityLow:      5,
	models.PriorityMedium:   10,
	models.PriorityHigh:     15,
	models.PriorityCritical: 20,
}

const (
	conflictDragPct    = 10 // in-progress work of equal-or-higher priority
	utilizationDragPct = 10
	utilizationDefect  = 15
)

// Scorer computes the four risk metrics for a candidate against a sprint
// context. Each metric is computed independently; a failed sub-computation
// surfaces as an unavailable Result and never blocks the others.
type Scorer struct{}

// Score runs all four sub-scorers. Purely a function of its inputs.
func (Scorer) Score(ctx SprintContext, cand Candidate) ScoreSet {
	var set ScoreSet
	set.Effort.Metric, set.Effort.Err = scoreEffort(ctx, cand)
	set.Schedule.Metric, set.Schedule.Err = scoreSchedule(ctx, cand)
	set.Productivity.Metric, set.Productivity.Err = scoreProductivity(ctx, cand)
	set.Quality.Metric, set.Quality.Err = scoreQuality(ctx, cand)
	return set
}

// scoreEffort compares the candidate's size to the historical average item
// size in the space.
func scoreEffort(ctx SprintContext, cand Candidate) (Metric, error) {
	avg := ctx.SpaceAvgPoints
	if avg <= 0 {
		return Metric{}, fmt.Errorf("no sizing baseline for space %s", ctx.SpaceID)
	}

	ratio := float64(cand.StoryPoints) / avg
	m := Metric{
		Value: fmt.Sprintf("%d SP vs %.1f SP average", cand.StoryPoints, avg),
	}
	switch {
	case ratio >= EffortCritRatio:
		m.Status = StatusCritical
		m.Label = "Oversized Item"
		m.SubText = fmt.Sprintf("At %.1fx the space's average item size, this is too large to estimate reliably. Consider decomposing it.", ratio)
	case ratio >= EffortWarnRatio:
		m.Status = StatusWarning
		m.Label = "Above Average"
		m.SubText = fmt.Sprintf("At %.1fx the space's average item size, the estimate carries extra uncertainty.", ratio)
	default:
		m.Status = StatusSafe
		m.Label = "Typical Size"
		m.SubText = "The item is within the space's usual sizing range."
	}
	return m, nil
}

// scoreSchedule projects the sprint load with the candidate included and
// compares it to team velocity and what the remaining sprint window can
// still absorb.
func scoreSchedule(ctx SprintContext, cand Candidate) (Metric, error) {
	if ctx.TeamVelocity <= 0 {
		return Metric{}, fmt.Errorf("team velocity unknown for sprint %s", ctx.SprintID)
	}

	projected := ctx.CurrentLoad + cand.StoryPoints
	velocity := ctx.TeamVelocity
	utilization := float64(projected) / float64(velocity)
	overcommit := projected - velocity
	remainingCapacity := float64(velocity) * ctx.RemainingFraction()

	m := Metric{
		Value: fmt.Sprintf("%d/%d SP projected", projected, velocity),
	}
	switch {
	case overcommit > 0 && float64(overcommit) > remainingCapacity:
		m.Status = StatusCritical
		m.Label = "Delay Imminent"
		m.SubText = fmt.Sprintf("Projected load %d SP exceeds velocity %d SP and only %.1f SP of capacity remains in the final %d day(s). The sprint goal is in danger.",
			projected, velocity, remainingCapacity, ctx.DaysRemaining)
	case utilization > ScheduleWarnUtilization:
		m.Status = StatusWarning
		m.Label = "Running Hot"
		m.SubText = fmt.Sprintf("Projected load %d SP is %.0f%% of velocity. Monitor closely and flag blockers early.",
			projected, utilization*100)
	default:
		m.Status = StatusSafe
		m.Label = "On Track"
		m.SubText = fmt.Sprintf("Projected load %d SP fits within velocity %d SP.", projected, velocity)
	}
	return m, nil
}

// scoreProductivity models the context-switch cost of pulling new work into
// a running sprint.
func scoreProductivity(ctx SprintContext, cand Candidate) (Metric, error) {
	if ctx.TeamVelocity <= 0 {
		return Metric{}, fmt.Errorf("team velocity unknown for sprint %s", ctx.SprintID)
	}

	drag, ok := priorityDrag[cand.Priority]
	if !ok {
		drag = priorityDrag[models.PriorityMedium]
	}

	candRank := models.PriorityRank(cand.Priority)
	for _, it := range ctx.Items {
		if it.Status == models.StatusInProgress && models.PriorityRank(it.Priority) >= candRank {
			drag += conflictDragPct
			break
		}
	}
	if ctx.Utilization() > HighUtilization {
		drag += utilizationDragPct
	}

	daysLost := drag / 100 * float64(ctx.DaysRemaining)

	m := Metric{
		Value: fmt.Sprintf("-%d%% velocity", capPct(drag)),
	}
	switch {
	case drag > DragCritPct:
		m.Status = StatusCritical
		m.Label = "High Drag"
		m.SubText = fmt.Sprintf("About %.1f day(s) lost to context switching. The team's workflow would be seriously disrupted mid-sprint.", daysLost)
	case drag > DragWarnPct:
		m.Status = StatusWarning
		m.Label = "Noticeable Slowdown"
		m.SubText = fmt.Sprintf("About %.1f day(s) lost to context switching. Expect a noticeable slowdown.", daysLost)
	default:
		m.Status = StatusSafe
		m.Label = "Minimal Distraction"
		m.SubText = fmt.Sprintf("About %.1f day(s) lost to context switching. Minimal distraction to velocity.", daysLost)
	}
	return m, nil
}

// scoreQuality estimates defect likelihood from description completeness,
// item type and priority, and how tight the sprint already is.
func scoreQuality(ctx SprintContext, cand Candidate) (Metric, error) {
	defect := 15.0

	switch descLen := len(cand.Description); {
	case descLen < 80:
		defect += 25
	case descLen < 200:
		defect += 10
	}
	if cand.Type == models.TypeBug {
		defect += 15
	}
	switch cand.Priority {
	case models.PriorityCritical:
		defect += 15
	case models.PriorityHigh:
		defect += 10
	}
	if ctx.Utilization() > HighUtilization {
		defect += utilizationDefect
	}

	pct := capPct(defect)
	m := Metric{
		Value: fmt.Sprintf("%d%% defect risk", pct),
	}
	switch {
	case defect > DefectCritPct:
		m.Status = StatusCritical
		m.Label = "High Bug Risk"
		m.SubText = fmt.Sprintf("%d%% defect likelihood. Rushed or under-specified work needs double QA time.", pct)
	case defect > DefectWarnPct:
		m.Status = StatusWarning
		m.Label = "Elevated Risk"
		m.SubText = fmt.Sprintf("%d%% defect likelihood. An additional review cycle is advised.", pct)
	default:
		m.Status = StatusSafe
		m.Label = "Standard Risk"
		m.SubText = fmt.Sprintf("%d%% defect likelihood. Standard testing applies.", pct)
	}
	return m, nil
}

// capPct clamps a display percentage to 1..99. An estimate should never read
// as a certainty or an impossibility.
func capPct(v float64) int {
	p := int(math.Round(v))
	if p < 1 {
		p = 1
	}
	if p > 99 {
		p = 99
	}
	return p
}
