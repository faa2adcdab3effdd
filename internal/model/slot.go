package model

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a canonical, zero-padded 24-hour label ("14:00") naming one interval of
// the daily template.
type Slot string

// SlotDuration is the fixed length of every slot.
const SlotDuration = time.Hour

var dailyTemplate = []Slot{
	"10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00",
}

var slotLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

// DailyTemplate returns a copy of the ordered daily slot template.
func DailyTemplate() []Slot {
	out := make([]Slot, len(dailyTemplate))
	copy(out, dailyTemplate)
	return out
}

// ParseSlot normalizes a label to its canonical form. Both "14:00" and the legacy
// "2:00 PM" spelling are accepted; labels outside the template are rejected.
func ParseSlot(s string) (Slot, error) {
	raw := strings.TrimSpace(s)
	for _, layout := range slotLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		slot := Slot(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
		if !slot.InTemplate() {
			return "", fmt.Errorf("slot %q is not offered", s)
		}
		return slot, nil
	}
	return "", fmt.Errorf("malformed slot label %q", s)
}

// InTemplate reports whether s is one of the template labels.
func (s Slot) InTemplate() bool {
	for _, t := range dailyTemplate {
		if t == s {
			return true
		}
	}
	return false
}

// Minutes returns the slot start as minutes after midnight, or -1 if malformed.
func (s Slot) Minutes() int {
	t, err := time.Parse("15:04", string(s))
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

func (s Slot) String() string {
	return string(s)
}

// On returns the instant the slot starts on the given day in loc.
func (s Slot) On(d Date, loc *time.Location) time.Time {
	return d.In(loc).Add(time.Duration(s.Minutes()) * time.Minute)
}

// SlotLess orders labels by elapsed time from midnight, never lexically.
func SlotLess(a, b Slot) bool {
	return a.Minutes() < b.Minutes()
}
