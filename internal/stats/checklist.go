package stats

import (
	"sort"

	"trade-journal/internal/models"
)

type checklistPartition struct {
	checked   tally
	unchecked tally
}

// sortTemplates returns the templates in display order without touching the input.
func sortTemplates(templates []models.ChecklistTemplate) []models.ChecklistTemplate {
	sorted := make([]models.ChecklistTemplate, len(templates))
	copy(sorted, templates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// partitionChecklist splits, per template, the trades that evaluated it into
// checked and unchecked. Trades that never evaluated a template are in neither
// partition, and statuses for unknown templates are ignored.
func partitionChecklist(entries []models.Entry, templates []models.ChecklistTemplate) []checklistPartition {
	index := make(map[int64]int, len(templates))
	for i, t := range templates {
		index[t.ID] = i
	}
	parts := make([]checklistPartition, len(templates))
	for i := range entries {
		e := &entries[i]
		for id, checked := range e.ChecklistStatuses {
			ti, ok := index[id]
			if !ok {
				continue
			}
			if checked {
				parts[ti].checked.add(e)
			} else {
				parts[ti].unchecked.add(e)
			}
		}
	}
	return parts
}

// checklistWinRates emits one row per evaluated template, highest influence first.
func checklistWinRates(templates []models.ChecklistTemplate, parts []checklistPartition) []ChecklistWinRate {
	rows := make([]ChecklistWinRate, 0, len(templates))
	for i, t := range templates {
		p := &parts[i]
		if p.checked.count+p.unchecked.count == 0 {
			continue
		}
		checkedRate := p.checked.winRate()
		uncheckedRate := p.unchecked.winRate()
		rows = append(rows, ChecklistWinRate{
			TemplateID:       t.ID,
			Text:             t.Text,
			CheckedTotal:     p.checked.count,
			CheckedWinRate:   checkedRate,
			UncheckedTotal:   p.unchecked.count,
			UncheckedWinRate: uncheckedRate,
			WinRateDiff:      checkedRate - uncheckedRate,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].WinRateDiff > rows[j].WinRateDiff
	})
	return rows
}

// checklistUsage emits one row per template, including never-evaluated ones.
func checklistUsage(templates []models.ChecklistTemplate, parts []checklistPartition) []ChecklistUsage {
	rows := make([]ChecklistUsage, 0, len(templates))
	for i, t := range templates {
		checked := parts[i].checked.count
		total := checked + parts[i].unchecked.count
		rows = append(rows, ChecklistUsage{
			TemplateID:           t.ID,
			Text:                 t.Text,
			CheckedCount:         checked,
			TotalEntriesWithItem: total,
			CheckedPercentage:    Percentage(checked, total),
		})
	}
	return rows
}
