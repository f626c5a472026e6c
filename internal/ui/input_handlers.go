package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nosh-app/nosh/internal/engine"
	"github.com/nosh-app/nosh/internal/nutrition"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PrevDay):
		return m, m.setDate(shiftDate(m.date, -1))

	case key.Matches(msg, m.keys.NextDay):
		return m, m.setDate(shiftDate(m.date, 1))

	case key.Matches(msg, m.keys.Today):
		return m, m.setDate(nutrition.Today())

	case key.Matches(msg, m.keys.Refresh):
		return m, m.setDate(m.date)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.AddFood):
		m.mode = inputFood
		m.input.Placeholder = "name, kcal [, quantity]  e.g. Oatmeal, 250, 2"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keys.EditGoal):
		m.mode = inputGoal
		m.input.Placeholder = fmt.Sprintf("calorie goal (now %.0f)", m.view.Summary.Goal)
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		date := m.date
		eng := m.opts.Engine
		return m, m.mutate(func() (string, error) {
			return "", eng.RemoveItem(m.ctx, date, item.ID)
		})

	case key.Matches(msg, m.keys.MoreQty):
		return m.adjustQuantity(1)

	case key.Matches(msg, m.keys.LessQty):
		return m.adjustQuantity(-1)

	case key.Matches(msg, m.keys.Undo):
		eng := m.opts.Engine
		return m, m.mutate(func() (string, error) {
			err := eng.UndoLastLog(m.ctx)
			if errors.Is(err, engine.ErrNothingToUndo) {
				return "Nothing to undo", nil
			}
			return "", err
		})

	case key.Matches(msg, m.keys.CopyPrev):
		date := m.date
		eng := m.opts.Engine
		return m, m.mutate(func() (string, error) {
			copied, err := eng.CopyPriorDay(m.ctx, shiftDate(date, -1), date)
			if errors.Is(err, engine.ErrNothingToCopy) {
				return "Yesterday has nothing to copy", nil
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Copied %d items from yesterday", copied), nil
		})
	}
	return m, nil
}

func (m Model) adjustQuantity(delta float64) (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	qty := item.Quantity + delta
	if qty < 1 {
		return m, nil
	}
	date := m.date
	eng := m.opts.Engine
	return m, m.mutate(func() (string, error) {
		return "", eng.UpdateQuantity(m.ctx, date, item.ID, qty)
	})
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = inputNone
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		if mode == inputGoal {
			return m.submitGoal(value)
		}
		return m.submitFood(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitGoal(value string) (tea.Model, tea.Cmd) {
	goal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		m.notice = fmt.Sprintf("Not a number: %s", value)
		return m, nil
	}
	date := m.date
	eng := m.opts.Engine
	return m, m.mutate(func() (string, error) {
		return "", eng.SetCalorieGoal(m.ctx, date, goal)
	})
}

func (m Model) submitFood(value string) (tea.Model, tea.Cmd) {
	food, err := parseFoodInput(value)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	date := m.date
	eng := m.opts.Engine
	return m, m.mutate(func() (string, error) {
		return "", eng.LogFood(m.ctx, date, food)
	})
}

// parseFoodInput turns "name, kcal [, quantity]" into a FoodInput logged
// under the meal label for the current time of day.
func parseFoodInput(value string) (engine.FoodInput, error) {
	parts := strings.Split(value, ",")
	if len(parts) < 2 {
		return engine.FoodInput{}, fmt.Errorf("expected: name, kcal [, quantity]")
	}
	name := strings.TrimSpace(parts[0])
	kcal, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || kcal < 0 {
		return engine.FoodInput{}, fmt.Errorf("bad kcal value %q", strings.TrimSpace(parts[1]))
	}
	qty := 1.0
	if len(parts) > 2 {
		qty, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil || qty <= 0 {
			return engine.FoodInput{}, fmt.Errorf("bad quantity %q", strings.TrimSpace(parts[2]))
		}
	}
	return engine.FoodInput{
		Name:      name,
		Kcal:      kcal,
		Quantity:  qty,
		MealLabel: currentMealLabel(),
	}, nil
}
