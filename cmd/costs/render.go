package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"costmanager/internal/core"
	"costmanager/internal/settings"
)

var (
	colorAccent = lipgloss.Color("#86bada")
	colorBorder = lipgloss.Color("#3a3b52")
	colorMuted  = lipgloss.Color("#6b6d8a")
	colorTotal  = lipgloss.Color("#ffe3b3")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTotal)
)

// barWidth is the width of the longest bar in the month chart.
const barWidth = 30

func newTable(headers []string, amountCols ...int) *table.Table {
	right := map[int]bool{}
	for _, c := range amountCols {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return amountStyle
			default:
				return cellStyle
			}
		})
}

func periodLabel(year int, month *int) string {
	if month == nil {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d-%02d", year, *month)
}

func renderSaved(d core.CostDraft) string {
	line := fmt.Sprintf("Saved %s %s", core.FormatAmount(d.Sum), d.Currency)
	if d.Category != "" {
		line += " in " + d.Category
	}
	if d.Description != "" {
		line += mutedStyle.Render(" (" + d.Description + ")")
	}
	return line
}

func renderReport(rep core.Report) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Costs " + periodLabel(rep.Year, rep.Month)))
	sb.WriteString("\n")

	if len(rep.LineItems) == 0 {
		sb.WriteString(mutedStyle.Render("No costs recorded"))
		sb.WriteString("\n")
	} else {
		t := newTable([]string{"Day", "Category", "Description", "Sum", "Currency", string(rep.Total.Currency)}, 3, 5)
		for _, it := range rep.LineItems {
			day := fmt.Sprintf("%02d", it.Day)
			if rep.Month == nil {
				day = fmt.Sprintf("%02d-%02d", it.Month, it.Day)
			}
			t.Row(day, it.Category, it.Description, core.FormatAmount(it.Sum), string(it.Currency), core.FormatAmount(it.Converted))
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	sb.WriteString(totalStyle.Render(fmt.Sprintf("Total: %s %s", core.FormatAmount(rep.Total.Amount), rep.Total.Currency)))
	return sb.String()
}

func renderCharts(c core.Charts) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("By category %d-%02d (%s)", c.Year, c.Month, c.Currency)))
	sb.WriteString("\n")
	if len(c.ByCategory) == 0 {
		sb.WriteString(mutedStyle.Render("No costs recorded"))
		sb.WriteString("\n")
	} else {
		t := newTable([]string{"Category", "Amount"}, 1)
		for _, ca := range c.ByCategory {
			name := ca.Name
			if name == "" {
				name = mutedStyle.Render("(none)")
			}
			t.Row(name, core.FormatAmount(ca.Value))
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	sb.WriteString(titleStyle.Render(fmt.Sprintf("By month %d (%s)", c.Year, c.Currency)))
	sb.WriteString("\n")
	var peak float64
	for _, m := range c.ByMonth {
		if m.Total > peak {
			peak = m.Total
		}
	}
	bar := lipgloss.NewStyle().Foreground(colorAccent)
	for _, m := range c.ByMonth {
		n := 0
		if peak > 0 {
			n = int(m.Total / peak * barWidth)
		}
		fmt.Fprintf(&sb, "%02d %s %s\n", m.Month, bar.Render(strings.Repeat("█", n)), core.FormatAmount(m.Total))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderRates(st settings.State) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Exchange rates"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Source:  %s\n", st.URL)
	if st.URL != st.DefaultURL {
		fmt.Fprintf(&sb, "Default: %s\n", mutedStyle.Render(st.DefaultURL))
	}
	if !st.Initialized {
		sb.WriteString(mutedStyle.Render("Using built-in rates"))
		sb.WriteString("\n")
	}

	codes := make([]string, 0, len(st.Rates))
	for c := range st.Rates {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)

	t := newTable([]string{"Currency", "Per USD"}, 1)
	for _, c := range codes {
		t.Row(c, fmt.Sprintf("%g", st.Rates[core.Currency(c)]))
	}
	sb.WriteString(t.Render())
	return sb.String()
}
