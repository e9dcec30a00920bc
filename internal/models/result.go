package models

// TimingResult is one entry of the timing tool's exported "results" array.
// The statistics are produced by the tool and carried through untouched.
type TimingResult struct {
	Command   string    `json:"command"`
	Mean      float64   `json:"mean"`
	Stddev    *float64  `json:"stddev"`
	Median    float64   `json:"median"`
	User      float64   `json:"user,omitempty"`
	System    float64   `json:"system,omitempty"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Times     []float64 `json:"times,omitempty"`
	ExitCodes []*int    `json:"exit_codes,omitempty"`
}

// TimingExport is the JSON document written by the timing tool.
type TimingExport struct {
	Results []TimingResult `json:"results"`
}

// ExecutionOutcome is what the executor reports for a single revision.
type ExecutionOutcome struct {
	Success        bool
	ResultFilePath string // empty when nothing was measured
	Err            *RevisionError
}

// BenchmarkResult is one measurement viewed through one group membership.
type BenchmarkResult struct {
	Index       int           `json:"index"`
	Command     string        `json:"command"`
	DisplayName string        `json:"display_name"`
	GroupKey    string        `json:"group_key"`
	Result      *TimingResult `json:"result"`
}

// RevisionResult is the per-revision view of a run.
type RevisionResult struct {
	RevisionKey string            `json:"revision_key"`
	Name        string            `json:"name"`
	CommitHash  string            `json:"commit_hash"`
	Success     bool              `json:"success"`
	Error       *RevisionError    `json:"error"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// GroupRevisionEntry is one cell of a group's benchmark x revision matrix.
type GroupRevisionEntry struct {
	RevisionName string        `json:"revision_name"`
	CommitHash   string        `json:"commit_hash"`
	Success      bool          `json:"success"`
	Result       *TimingResult `json:"result"`
}

// GroupBenchmarkResult is a row of a group's matrix. A revision missing from
// Revisions did not run this benchmark.
type GroupBenchmarkResult struct {
	DisplayName string                        `json:"display_name"`
	Revisions   map[string]GroupRevisionEntry `json:"revisions"`
}

// GroupResult is the per-group view of a run.
type GroupResult struct {
	GroupKey   string                 `json:"group_key"`
	GroupName  string                 `json:"group_name"`
	Benchmarks []GroupBenchmarkResult `json:"benchmarks"`
}

// FailureInfo records a revision that produced no results.
type FailureInfo struct {
	RevisionKey  string         `json:"revision_key"`
	RevisionName string         `json:"revision_name"`
	CommitHash   string         `json:"commit_hash"`
	Error        *RevisionError `json:"error"`
}

// AggregatedResults is the terminal artifact handed to reporters.
type AggregatedResults struct {
	RevisionOrder []string                   `json:"revision_order"`
	Revisions     map[string]*RevisionResult `json:"revisions"`
	GroupOrder    []string                   `json:"group_order"`
	Groups        map[string]*GroupResult    `json:"groups"`
	Failures      []FailureInfo              `json:"failures"`
}
