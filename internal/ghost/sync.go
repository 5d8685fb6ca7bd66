package ghost

import (
	"fmt"
	"html"
	"strings"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
)

// ItemIDPrefix marks catalog items that mirror a Ghost post.
const ItemIDPrefix = "ghost-"

// ItemID is the catalog id of a post mirrored into userID's catalog.
func ItemID(userID, postID string) string {
	return ItemIDPrefix + userID + "-" + postID
}

// ItemsFromPosts converts posts into userID's catalog items of role. Role tags are
// dropped; every other tag name is kept. Ids are stable so a re-sync updates in place.
func ItemsFromPosts(posts []Post, userID string, role catalog.Role) []catalog.NewItem {
	items := make([]catalog.NewItem, 0, len(posts))
	for _, p := range posts {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		var tags []string
		for _, t := range p.Tags {
			if strings.EqualFold(t.Slug, string(catalog.RoleMain)) || strings.EqualFold(t.Slug, string(catalog.RoleSide)) {
				continue
			}
			if strings.HasPrefix(t.Name, "#") {
				continue // internal tag
			}
			tags = append(tags, t.Name)
		}
		items = append(items, catalog.NewItem{
			ID:     ItemID(userID, p.ID),
			Title:  p.Title,
			Notes:  p.Excerpt,
			Role:   role,
			Effort: catalog.DefaultEffort,
			Tags:   tags,
		})
	}
	return items
}

// ScheduleTitle is the post title for a schedule.
func ScheduleTitle(s schedule.Schedule) string {
	return fmt.Sprintf("Meal Schedule %s to %s", schedule.FormatDate(s.StartDate), schedule.FormatDate(s.EndDate))
}

// ScheduleHTML renders a schedule as a post body.
func ScheduleHTML(days []scheduler.Day) string {
	var sb strings.Builder
	for _, d := range days {
		fmt.Fprintf(&sb, "<h2>%s</h2>", d.Date.Format("Monday, Jan 2"))
		if len(d.Meals) == 0 {
			sb.WriteString("<p><i>Nothing planned</i></p>")
			continue
		}
		sb.WriteString("<ul>")
		for _, m := range d.Meals {
			fmt.Fprintf(&sb, "<li><strong>%s:</strong> %s with %s</li>",
				m.MealType.Label(), html.EscapeString(m.Main.Title), html.EscapeString(m.Side.Title))
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}
