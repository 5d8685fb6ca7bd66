package scheduler

import (
	"log"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/schedule"
)

// UnknownTitle is the title given to items a saved schedule references but
// the catalog no longer holds.
const UnknownTitle = "Unknown"

// Rehydrate joins saved slot rows against the current catalog.
// Unresolvable ids become placeholder items; the rest of the schedule is unaffected.
func Rehydrate(saved []schedule.Day, items []catalog.Item) []Day {
	idx := catalog.Index(items)
	days := make([]Day, 0, len(saved))
	for _, sd := range saved {
		day := Day{Date: sd.Date, Meals: make([]Assignment, 0, len(sd.Meals))}
		for _, m := range sd.Meals {
			day.Meals = append(day.Meals, Assignment{
				Date:     sd.Date,
				MealType: m.MealType,
				Main:     resolve(idx, m.MainItemID, catalog.RoleMain, sd, m),
				Side:     resolve(idx, m.SideItemID, catalog.RoleSide, sd, m),
			})
		}
		days = append(days, day)
	}
	return days
}

func resolve(idx map[string]catalog.Item, id string, role catalog.Role, sd schedule.Day, m schedule.Meal) catalog.Item {
	if item, ok := idx[id]; ok {
		return item
	}
	log.Printf("Item %s referenced by %s %s no longer exists, using placeholder", id, schedule.FormatDate(sd.Date), m.MealType)
	return Placeholder(id, role)
}

// Placeholder stands in for a deleted item.
func Placeholder(id string, role catalog.Role) catalog.Item {
	return catalog.Item{
		ID:     id,
		Title:  UnknownTitle,
		Role:   role,
		Tags:   []string{},
		Effort: catalog.DefaultEffort,
	}
}
