package usecases

import (
	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/valueobjects"
)

type SlotOutput struct {
	Slot    valueobjects.Slot
	Payload *valueobjects.ImagePayload
	Error   string
}

// SessionOutput は画面に渡すセッションのスナップショット
type SessionOutput struct {
	SessionID entities.SessionID
	Slots     [2]SlotOutput
	Action    valueobjects.ActionChoice
	Outcome   valueobjects.Outcome
}

func newSessionOutput(session entities.Session) *SessionOutput {
	output := &SessionOutput{
		SessionID: session.ID(),
		Action:    session.Action(),
		Outcome:   session.Outcome(),
	}
	for _, slot := range []valueobjects.Slot{valueobjects.Slot1, valueobjects.Slot2} {
		output.Slots[slot.Index()] = SlotOutput{
			Slot:    slot,
			Payload: session.Image(slot),
			Error:   session.SlotError(slot),
		}
	}
	return output
}

// CanDispatch reports whether the fuse trigger is enabled.
func (o *SessionOutput) CanDispatch() bool {
	return !o.Outcome.IsLoading()
}
