package models

// Stage is the workflow position of a session.
type Stage string

const (
	StageChannelPending  Stage = "channel_pending"
	StageDocumentPending Stage = "document_pending"
	StageLivenessPending Stage = "liveness_pending"
	StageDeciding        Stage = "deciding"
	StageTerminal        Stage = "terminal"
)

func (s Stage) IsTerminal() bool {
	return s == StageTerminal
}

// next is the only forward transition allowed from each stage.
var next = map[Stage]Stage{
	StageChannelPending:  StageDocumentPending,
	StageDocumentPending: StageLivenessPending,
	StageLivenessPending: StageDeciding,
	StageDeciding:        StageTerminal,
}

// Next returns the stage that follows s, or false for the terminal stage.
func (s Stage) Next() (Stage, bool) {
	n, ok := next[s]
	return n, ok
}

// Slot names one artifact holder inside a session. Results are routed by slot.
type Slot string

const (
	SlotDocumentFront Slot = "document_front"
	SlotDocumentBack  Slot = "document_back"
	SlotLiveness      Slot = "liveness"
	SlotComparison    Slot = "comparison"
)

func (s Slot) IsValid() bool {
	_, ok := slotStage[s]
	return ok
}

// DocumentSlot maps a document side to its slot.
func DocumentSlot(side Side) Slot {
	if side == SideBack {
		return SlotDocumentBack
	}
	return SlotDocumentFront
}

// slotStage is the stage during which a slot accepts results.
var slotStage = map[Slot]Stage{
	SlotDocumentFront: StageDocumentPending,
	SlotDocumentBack:  StageDocumentPending,
	SlotLiveness:      StageLivenessPending,
	SlotComparison:    StageLivenessPending,
}

// Ticket identifies one in-flight submission. A result is applied only while the
// session is still in the ticket's stage and the slot has not started a newer attempt.
type Ticket struct {
	Stage   Stage
	Slot    Slot
	Attempt uint64
}
