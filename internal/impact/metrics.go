package impact

// Metric keys.
const (
	KeyEffort       = "effort"
	KeySchedule     = "schedule"
	KeyProductivity = "productivity"
	KeyQuality      = "quality"
)

// Metric status tiers, escalating.
const (
	StatusSafe        = "safe"
	StatusWarning     = "warning"
	StatusCritical    = "critical"
	StatusUnavailable = "unavailable"
)

// Metric is one scored risk dimension, immutable once produced.
type Metric struct {
	Value   string `json:"value"`
	Status  string `json:"status"`
	Label   string `json:"label"`
	SubText string `json:"sub_text"`
}

// Result holds either a populated metric or an explicit unavailable marker.
// A failed sub-computation must surface as unavailable to the caller, never
// as a metric-shaped placeholder.
type Result struct {
	Metric Metric
	Err    error
}

// Available reports whether the metric was actually computed.
func (r Result) Available() bool {
	return r.Err == nil
}

// Critical reports whether the metric is available and critical.
func (r Result) Critical() bool {
	return r.Err == nil && r.Metric.Status == StatusCritical
}

// Display returns the renderable card for this result. Unavailable results
// render with an explicit unavailable status.
func (r Result) Display() Metric {
	if r.Err != nil {
		return Metric{
			Value:   "N/A",
			Status:  StatusUnavailable,
			Label:   "Unavailable",
			SubText: "This metric could not be computed: " + r.Err.Error(),
		}
	}
	return r.Metric
}

// ScoreSet holds the four independently computed metrics for one analysis.
type ScoreSet struct {
	Effort       Result
	Schedule     Result
	Productivity Result
	Quality      Result
}

// DisplayMap returns the per-key display cards keyed as the API exposes them.
func (s ScoreSet) DisplayMap() map[string]Metric {
	return map[string]Metric{
		KeyEffort:       s.Effort.Display(),
		KeySchedule:     s.Schedule.Display(),
		KeyProductivity: s.Productivity.Display(),
		KeyQuality:      s.Quality.Display(),
	}
}

// All returns the four results in display order.
func (s ScoreSet) All() []Result {
	return []Result{s.Effort, s.Schedule, s.Productivity, s.Quality}
}

// AnyCritical reports whether any available metric is critical.
func (s ScoreSet) AnyCritical() bool {
	return s.Effort.Critical() || s.Schedule.Critical() ||
		s.Productivity.Critical() || s.Quality.Critical()
}

// OverallRisk collapses the set to a single tier for history rows: critical
// beats warning beats safe. Unavailable metrics do not raise the tier.
func (s ScoreSet) OverallRisk() string {
	if s.AnyCritical() {
		return StatusCritical
	}
	for _, r := range s.All() {
		if r.Available() && r.Metric.Status == StatusWarning {
			return StatusWarning
		}
	}
	return StatusSafe
}
