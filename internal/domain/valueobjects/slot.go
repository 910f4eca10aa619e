package valueobjects

import (
	"fmt"
	"strconv"
)

// Slot は画像の入力位置（人物1・人物2）
type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

func ParseSlot(value string) (Slot, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q: %w", value, err)
	}
	slot := Slot(n)
	if !slot.Valid() {
		return 0, fmt.Errorf("slot out of range: %d", n)
	}
	return slot, nil
}

func (s Slot) Valid() bool {
	return s == Slot1 || s == Slot2
}

// Index は配列添字（0始まり）
func (s Slot) Index() int {
	return int(s) - 1
}

func (s Slot) String() string {
	return strconv.Itoa(int(s))
}
