package analytics

// Range is one reporting window, measured backwards from the evaluation
// time.
type Range struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// ranges is the fixed set of reporting windows. Every analytics response
// carries all five; there is no way to request a subset.
var ranges = []Range{
	{Key: "7d", Label: "Last 7 days", Days: 7},
	{Key: "30d", Label: "Last 30 days", Days: 30},
	{Key: "90d", Label: "Last 90 days", Days: 90},
	{Key: "180d", Label: "Last 180 days", Days: 180},
	{Key: "365d", Label: "Last 365 days", Days: 365},
}

// Ranges returns the fixed reporting windows in ascending order.
func Ranges() []Range {
	out := make([]Range, len(ranges))
	copy(out, ranges)
	return out
}
