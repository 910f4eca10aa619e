package valueobjects

import (
	"fmt"
)

// ActionChoice は2人の人物にさせる動作。固定の選択肢からのみ選ぶ。
type ActionChoice string

const (
	ShakingHands      ActionChoice = "shaking hands"
	HuggingEachOther  ActionChoice = "hugging each other"
	SalutingEachOther ActionChoice = "saluting each other"
)

// 表示順。先頭がデフォルト。
var supportedActions = []ActionChoice{
	ShakingHands,
	HuggingEachOther,
	SalutingEachOther,
}

func SupportedActions() []ActionChoice {
	actions := make([]ActionChoice, len(supportedActions))
	copy(actions, supportedActions)
	return actions
}

func DefaultAction() ActionChoice {
	return supportedActions[0]
}

func ParseActionChoice(value string) (ActionChoice, error) {
	for _, action := range supportedActions {
		if string(action) == value {
			return action, nil
		}
	}
	return "", fmt.Errorf("unsupported action: %q", value)
}

func (a ActionChoice) String() string {
	return string(a)
}

func (a ActionChoice) IsZero() bool {
	return a == ""
}
