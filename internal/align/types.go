// Package align is the transcript-to-reference alignment engine. It diffs
// the normalized transcript against the normalized reference script,
// projects word-level audio timestamps onto every character of the merged
// alignment space, and resolves per-paragraph subtitle cues. The whole
// pipeline is pure in-memory computation; callers own all I/O.
package align

import "errors"

// OpKind classifies one run of the computed edit script.
type OpKind int

const (
	// OpEqual covers text present in both transcript and reference.
	OpEqual OpKind = iota
	// OpInsert covers text only the reference has; its timing must be
	// interpolated from surrounding context.
	OpInsert
	// OpDelete covers stray transcript text the reference lacks; it is
	// skipped but its audio window informs neighboring inserts.
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// EditOp is one element of the edit script. Text is the literal normalized
// substring the run covers.
type EditOp struct {
	Kind OpKind
	Text string
}

// IntervalFlag records which policy branch assigned a character's interval.
// Diagnostics only; correctness never depends on these.
type IntervalFlag uint8

const (
	FlagWordTiming IntervalFlag = 1 << iota // timed directly from a transcript word
	FlagSeparator                           // zero-width leading word separator
	FlagNoTiming                            // provider supplied no timing for the word
	FlagSlowWord                            // per-char duration above the sanity threshold
	FlagInterpolated                        // reference-only text, timing interpolated
	FlagFromDocStart                        // interpolated from the document start
	FlagFromEqualRun                        // interpolated off the preceding equal run
	FlagFromDeleteRun                       // shares the preceding stray-text window
)

// charInterval is the resolved [start,end) of one character of the merged
// alignment space.
type charInterval struct {
	Start    float64
	End      float64
	Flags    IntervalFlag
	Assigned bool
}

// AnomalyKind labels a non-fatal word-timing irregularity.
type AnomalyKind string

const (
	AnomalySlowWord AnomalyKind = "slow word"
	AnomalyNoTiming AnomalyKind = "no timing"
)

// Anomaly annotates a word whose timing looked wrong but was still used.
type Anomaly struct {
	Kind  AnomalyKind
	Word  string
	Start float64
	End   float64
}

// Cue is one resolved subtitle entry. Text is the raw (un-normalized)
// paragraph content, interior lines joined with newlines.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Lane is one translation track: one text per cue, same timing as the source.
type Lane struct {
	Tag   string
	Texts []string
}

// Status is the alignment outcome, returned as data so the caller decides
// how to present it.
type Status string

const (
	StatusAligned     Status = "aligned"
	StatusEmptyScript Status = "empty script"
)

// Result is the full outcome of one alignment invocation.
type Result struct {
	Status       Status
	Cues         []Cue
	Lanes        []Lane
	SkippedLanes []string // translation lanes whose cue count diverged
	Anomalies    []Anomaly
}

// Hard-failure sentinels. Each is returned wrapped with diagnostic detail.
var (
	// ErrReconstruction: a reconstructed text's length does not match its
	// source (edit-script round trip or pass-1 character count).
	ErrReconstruction = errors.New("reconstruction length mismatch")
	// ErrUnassignedIndex: a reference character never received an interval.
	ErrUnassignedIndex = errors.New("unassigned character timestamp")
	// ErrParagraphDrift: paragraph segmentation no longer matches the
	// normalized character stream.
	ErrParagraphDrift = errors.New("paragraph segmentation drift")
)

// Stage names the pipeline checkpoints reported to an Observer.
type Stage string

const (
	StageNormalized Stage = "normalized"
	StageDiffed     Stage = "diffed"
	StageProjected  Stage = "projected"
	StageResolved   Stage = "resolved"
)

// Observer receives checkpoint notifications from the engine. A nil
// observer is valid; the engine performs no other side effects.
type Observer interface {
	OnStage(stage Stage)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Stage)

func (f ObserverFunc) OnStage(s Stage) { f(s) }
