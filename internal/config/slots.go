package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"meal-scheduler/internal/schedule"

	"gopkg.in/yaml.v3"
)

const defaultSlotPolicyYAML = `# meal slots per weekday
days:
  monday: [dinner]
  tuesday: [dinner]
  wednesday: [dinner]
  thursday: [dinner]
  friday: [dinner]
  saturday: [lunch, dinner]
  sunday: [lunch, dinner]
`

// SlotPolicy decides which meals to schedule on each weekday.
type SlotPolicy struct {
	Days map[time.Weekday][]schedule.MealType
}

type slotPolicyFile struct {
	Days map[string][]string `yaml:"days"`
}

// DefaultSlotPolicy schedules dinner on weekdays and lunch plus dinner on weekends.
func DefaultSlotPolicy() *SlotPolicy {
	p, err := ParseSlotPolicy([]byte(defaultSlotPolicyYAML))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in slot policy: %v", err))
	}
	return p
}

// LoadSlotPolicy reads a YAML policy file. An empty path yields the default policy.
func LoadSlotPolicy(path string) (*SlotPolicy, error) {
	if path == "" {
		return DefaultSlotPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot policy: %w", err)
	}
	return ParseSlotPolicy(data)
}

// ParseSlotPolicy decodes a YAML policy. Weekdays left out get no meals.
// Each day's meals come back lunch before dinner whatever order the file
// lists them in, matching the order saved schedules are read back in.
func ParseSlotPolicy(data []byte) (*SlotPolicy, error) {
	var raw slotPolicyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse slot policy: %w", err)
	}

	p := &SlotPolicy{Days: make(map[time.Weekday][]schedule.MealType, len(raw.Days))}
	for name, meals := range raw.Days {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		seen := make(map[schedule.MealType]bool, len(meals))
		for _, m := range meals {
			mt, err := schedule.ParseMealType(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if seen[mt] {
				return nil, fmt.Errorf("%s: %s listed twice", name, mt)
			}
			seen[mt] = true
		}
		var slots []schedule.MealType
		for _, mt := range []schedule.MealType{schedule.Lunch, schedule.Dinner} {
			if seen[mt] {
				slots = append(slots, mt)
			}
		}
		p.Days[day] = slots
	}
	return p, nil
}

// Slots returns the meals to fill for each date, keyed by schedule.DateLayout.
func (p *SlotPolicy) Slots(dates []time.Time) map[string][]schedule.MealType {
	out := make(map[string][]schedule.MealType, len(dates))
	for _, d := range dates {
		out[schedule.FormatDate(d)] = p.Days[d.Weekday()]
	}
	return out
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q in slot policy", name)
}
