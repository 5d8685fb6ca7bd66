package app

import (
	"fmt"
	"strings"

	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

func panel(lines []string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// RenderDays formats a schedule for the terminal.
func RenderDays(days []scheduler.Day) string {
	var lines []string
	for _, d := range days {
		lines = append(lines, titleStyle.Render(d.Date.Format("Mon Jan 2")))
		if len(d.Meals) == 0 {
			lines = append(lines, mutedStyle.Render("  nothing planned"))
			continue
		}
		for _, m := range d.Meals {
			main := m.Main.Title
			if main == scheduler.UnknownTitle {
				main = warnStyle.Render(main)
			}
			side := m.Side.Title
			if side == scheduler.UnknownTitle {
				side = warnStyle.Render(side)
			}
			lines = append(lines, fmt.Sprintf("  %-7s %s %s %s", accentStyle.Render(m.MealType.Label()), main, mutedStyle.Render("+"), side))
		}
	}
	return panel(lines)
}

// RenderScheduleList formats saved schedules, one per line.
func RenderScheduleList(list []schedule.Schedule) string {
	if len(list) == 0 {
		return mutedStyle.Render("No saved schedules.")
	}
	var lines []string
	for _, s := range list {
		lines = append(lines, fmt.Sprintf("%s  %s → %s  %s",
			accentStyle.Render(s.ID),
			schedule.FormatDate(s.StartDate),
			schedule.FormatDate(s.EndDate),
			mutedStyle.Render("saved "+s.CreatedAt.Format("2006-01-02 15:04"))))
	}
	return strings.Join(lines, "\n")
}

// RenderUsage formats the daily metrics report.
func RenderUsage(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	lines := []string{titleStyle.Render("Daily usage")}
	if len(usage) == 0 {
		lines = append(lines, mutedStyle.Render("  no activity"))
	}
	for _, u := range usage {
		lines = append(lines, fmt.Sprintf("  %s  runs %d  slots %d/%d  llm calls %d  tokens %d",
			u.Date, u.Runs, u.SlotsFilled, u.SlotsRequested, u.Executions, u.Tokens))
	}
	lines = append(lines, "", titleStyle.Render("System"),
		fmt.Sprintf("  mem %d MB  sys %d MB  gc %d  goroutines %d  data %s  db conns %d",
			health.AllocMB, health.SysMB, health.NumGC, health.Goroutines, health.DataDiskSize, health.OpenConnections))
	return panel(lines)
}

func ok(msg string) string {
	return successStyle.Render("✔ " + msg)
}
