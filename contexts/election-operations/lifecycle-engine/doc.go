// Package lifecycleengine implements the election lifecycle engine inside
// the election-operations context.
//
// The module owns the election status state machine (draft, scheduled, open,
// closed), race and ballot administration while an election is still
// editable, and the due-election sweep that opens and closes elections at
// their scheduled times. It keeps business rules in application/domain layers
// and isolates infrastructure concerns behind ports and adapters.
package lifecycleengine
