// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"trade-journal/internal/models"
)

// JournalStore defines the interface for journal persistence.
type JournalStore interface {
	// Journals
	ListJournals(ctx context.Context) ([]models.Journal, error)
	GetJournal(ctx context.Context, journalID int64) (*models.Journal, error)
	CreateJournal(ctx context.Context, journal *models.Journal) error

	// Checklist templates, in display order
	GetChecklistTemplates(ctx context.Context, journalID int64) ([]models.ChecklistTemplate, error)
	AddChecklistTemplate(ctx context.Context, template *models.ChecklistTemplate) error

	// Entries, with their checklist statuses
	GetEntries(ctx context.Context, journalID int64) ([]models.RawEntry, error)
	AddEntry(ctx context.Context, entry *models.RawEntry) error

	// Snapshot reads a journal, its templates and its entries consistently.
	Snapshot(ctx context.Context, journalID int64) (*Snapshot, error)

	// InTx runs fn in one transaction. Nothing fn wrote is kept when it
	// returns an error.
	InTx(ctx context.Context, fn func(w Writer) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Writer is the part of a JournalStore that imports write through.
type Writer interface {
	GetJournal(ctx context.Context, journalID int64) (*models.Journal, error)
	CreateJournal(ctx context.Context, journal *models.Journal) error
	AddChecklistTemplate(ctx context.Context, template *models.ChecklistTemplate) error
	AddEntry(ctx context.Context, entry *models.RawEntry) error
}

// Snapshot is everything a statistics report is computed from.
type Snapshot struct {
	Journal   models.Journal
	Templates []models.ChecklistTemplate
	Entries   []models.RawEntry
}
