package placesearch

// PresentationKind enumerates the results panel states.
type PresentationKind int

const (
	Collapsed PresentationKind = iota
	ExpandedWithResults
	ExpandedEmpty
)

func (k PresentationKind) String() string {
	switch k {
	case Collapsed:
		return "collapsed"
	case ExpandedWithResults:
		return "expanded_with_results"
	case ExpandedEmpty:
		return "expanded_empty"
	default:
		return "unknown"
	}
}

// PresentationState is the results panel state. The zero value is Collapsed.
// An ExpandedWithResults state always holds at least one suggestion; the
// constructors are the only way to build one.
type PresentationState struct {
	kind        PresentationKind
	suggestions []Suggestion
}

// CollapsedState returns the hidden panel state.
func CollapsedState() PresentationState {
	return PresentationState{kind: Collapsed}
}

// EmptyState returns the expanded "no result" state.
func EmptyState() PresentationState {
	return PresentationState{kind: ExpandedEmpty}
}

// ResultsState returns ExpandedWithResults for a non-empty list and
// ExpandedEmpty otherwise.
func ResultsState(list []Suggestion) PresentationState {
	if len(list) == 0 {
		return EmptyState()
	}
	return PresentationState{kind: ExpandedWithResults, suggestions: append([]Suggestion(nil), list...)}
}

// Kind returns the state tag.
func (s PresentationState) Kind() PresentationKind { return s.kind }

// Suggestions returns a copy of the displayed suggestions.
func (s PresentationState) Suggestions() []Suggestion {
	return append([]Suggestion(nil), s.suggestions...)
}

// RowCount is the number of rows the list shows: one placeholder row when
// empty, one per suggestion with results, none when collapsed.
func (s PresentationState) RowCount() int {
	switch s.kind {
	case ExpandedWithResults:
		return len(s.suggestions)
	case ExpandedEmpty:
		return 1
	default:
		return 0
	}
}

// suggestionAt returns the suggestion behind a row. The placeholder row of
// ExpandedEmpty is not selectable.
func (s PresentationState) suggestionAt(index int) (Suggestion, bool) {
	if s.kind != ExpandedWithResults || index < 0 || index >= len(s.suggestions) {
		return Suggestion{}, false
	}
	return s.suggestions[index], true
}

func (s PresentationState) valid() bool {
	switch s.kind {
	case ExpandedWithResults:
		return len(s.suggestions) > 0
	case Collapsed, ExpandedEmpty:
		return len(s.suggestions) == 0
	default:
		return false
	}
}
