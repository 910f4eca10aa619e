package entities

import (
	"time"

	"fusion-demo/internal/domain/valueobjects"
)

type SessionID string

// Session は1ブラウザ分の画面状態。スロット2つ・選択中の動作・直近の結果を持つ。
// 値コピーしてもペイロードは不変なので共有して問題ない。
type Session struct {
	id         SessionID
	images     [2]*valueobjects.ImagePayload
	slotErrors [2]string
	action     valueobjects.ActionChoice
	outcome    valueobjects.Outcome
	updatedAt  time.Time
}

func NewSession(id SessionID) *Session {
	return &Session{
		id:        id,
		action:    valueobjects.DefaultAction(),
		outcome:   valueobjects.IdleOutcome(),
		updatedAt: time.Now(),
	}
}

func (s *Session) ID() SessionID {
	return s.id
}

func (s *Session) Image(slot valueobjects.Slot) *valueobjects.ImagePayload {
	if !slot.Valid() {
		return nil
	}
	return s.images[slot.Index()]
}

// SetImage はスロットを上書きする。もう一方のスロットには触れない。
func (s *Session) SetImage(slot valueobjects.Slot, payload *valueobjects.ImagePayload) {
	if !slot.Valid() {
		return
	}
	s.images[slot.Index()] = payload
	s.slotErrors[slot.Index()] = ""
	s.touch()
}

func (s *Session) SlotError(slot valueobjects.Slot) string {
	if !slot.Valid() {
		return ""
	}
	return s.slotErrors[slot.Index()]
}

func (s *Session) SetSlotError(slot valueobjects.Slot, message string) {
	if !slot.Valid() {
		return
	}
	s.slotErrors[slot.Index()] = message
	s.touch()
}

func (s *Session) HasBothImages() bool {
	return s.images[0] != nil && s.images[1] != nil
}

func (s *Session) Action() valueobjects.ActionChoice {
	return s.action
}

func (s *Session) SelectAction(action valueobjects.ActionChoice) {
	s.action = action
	s.touch()
}

func (s *Session) Outcome() valueobjects.Outcome {
	return s.outcome
}

func (s *Session) SetOutcome(outcome valueobjects.Outcome) {
	s.outcome = outcome
	s.touch()
}

// Reset はフォームクリア相当。IDは維持する。
func (s *Session) Reset() {
	s.images = [2]*valueobjects.ImagePayload{}
	s.slotErrors = [2]string{}
	s.action = valueobjects.DefaultAction()
	s.outcome = valueobjects.IdleOutcome()
	s.touch()
}

func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
