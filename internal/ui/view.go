package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nosh-app/nosh/internal/nutrition"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	s := m.view.Summary

	title := styles.Title.Render("nosh") + "  " + styles.Accent.Render(friendlyDate(m.date))

	status := ""
	if m.syncing {
		status = "  " + m.spin.View() + styles.Muted.Render(" syncing")
	}
	if m.offline {
		status += "  " + styles.Danger.Render("offline")
	}

	summary := fmt.Sprintf("%s eaten   %s left   %s goal",
		styles.Good.Render(fmt.Sprintf("%.0f", s.Eaten)),
		styles.Accent.Render(fmt.Sprintf("%.0f", s.KcalLeft)),
		styles.Muted.Render(fmt.Sprintf("%.0f", s.Goal)),
	)

	macros := make([]string, 0, len(m.view.Macros))
	for _, macro := range m.view.Macros {
		macros = append(macros, fmt.Sprintf("%s %.0f/%.0fg", macro.Key, macro.Current, macro.Goal))
	}

	bar := styles.Header.Width(m.width).Render(" " + title + status)
	return bar + "\n " + summary + "\n " + styles.Muted.Render(strings.Join(macros, "   "))
}

func (m Model) renderLog() string {
	styles := m.theme.Styles()

	if len(m.view.Sections) == 0 {
		return " " + styles.Muted.Render("No food logged — press 'a' to log something, 'c' to copy yesterday")
	}

	var b strings.Builder
	row := 0
	for _, sec := range m.view.Sections {
		b.WriteString(" " + styles.Title.Render(sec.Meal))
		if sec.Time != "" {
			b.WriteString(" " + styles.Muted.Render(sec.Time))
		}
		b.WriteString("\n")
		for _, item := range sec.Items {
			line := renderItem(item)
			if row == m.selected {
				line = styles.Selected.Render(line)
			}
			if item.ID.Pending {
				line += " " + styles.Muted.Render("…")
			}
			b.WriteString("   " + line + "\n")
			row++
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderItem(item nutrition.LogItem) string {
	qty := ""
	if item.Quantity != 1 {
		qty = fmt.Sprintf(" ×%s", trimFloat(item.Quantity))
	}
	emoji := item.Emoji
	if emoji != "" {
		emoji += " "
	}
	return fmt.Sprintf("%s%s%s  %.0f kcal", emoji, item.Name, qty, item.Kcal*nutrition.Quantity(item.Quantity))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.mode != inputNone {
		label := "goal"
		if m.mode == inputFood {
			label = "log"
		}
		return " " + styles.Accent.Render(label+"> ") + m.input.View()
	}

	footer := " " + m.help.View(m.keys)
	if m.notice != "" {
		footer = " " + styles.Danger.Render(m.notice) + "\n" + footer
	}
	return footer
}

func friendlyDate(date string) string {
	t, err := time.Parse(nutrition.DateLayout, date)
	if err != nil {
		return date
	}
	switch date {
	case nutrition.Today():
		return "Today"
	case time.Now().AddDate(0, 0, -1).Format(nutrition.DateLayout):
		return "Yesterday"
	}
	return t.Format("Mon Jan 2")
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// currentMealLabel buckets the wall clock into the conventional meals.
func currentMealLabel() string {
	switch hour := time.Now().Hour(); {
	case hour < 11:
		return "Breakfast"
	case hour < 15:
		return "Lunch"
	case hour < 21:
		return "Dinner"
	default:
		return "Snack"
	}
}
