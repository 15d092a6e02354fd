// Package warnings contains the non-fatal problems found while loading a feed.
//
// None of these stop a run: the affected table, field or reference is treated as
// empty and the warning is handed back to the caller for logging.
package warnings

import (
	"fmt"

	"github.com/gtfsjson/gtfsjson/constants"
)

type StaticWarning interface {
	File() constants.StaticFile
	Kind() string
	Error() string
}

// MissingFile is reported when a table is absent or cannot be opened.
type MissingFile struct {
	FileName constants.StaticFile
	Err      error
}

func (w MissingFile) File() constants.StaticFile {
	return w.FileName
}

func (w MissingFile) Kind() string {
	return "missing_file"
}

func (w MissingFile) Error() string {
	if w.Err == nil {
		return fmt.Sprintf("%s not found, treating it as empty", w.FileName)
	}
	return fmt.Sprintf("%s could not be read, treating it as empty: %s", w.FileName, w.Err)
}

type MissingColumns struct {
	FileName constants.StaticFile
	Columns  []string
}

func (w MissingColumns) File() constants.StaticFile {
	return w.FileName
}

func (w MissingColumns) Kind() string {
	return "missing_columns"
}

func (w MissingColumns) Error() string {
	return fmt.Sprintf("%s has no %s column(s), values default to empty", w.FileName, w.Columns)
}

// MalformedField is reported when a numeric or date cell could not be parsed
// and was coerced to its zero value.
type MalformedField struct {
	FileName constants.StaticFile
	Row      int
	Column   string
	Value    string
}

func (w MalformedField) File() constants.StaticFile {
	return w.FileName
}

func (w MalformedField) Kind() string {
	return "malformed_field"
}

func (w MalformedField) Error() string {
	return fmt.Sprintf("row %d: malformed %s %q, using zero value", w.Row, w.Column, w.Value)
}

// MissingValues is reported for a row whose required cells are empty. The row
// is still loaded with empty values.
type MissingValues struct {
	FileName constants.StaticFile
	Row      int
	Columns  []string
	Content  []string
}

func (w MissingValues) File() constants.StaticFile {
	return w.FileName
}

func (w MissingValues) Kind() string {
	return "missing_values"
}

func (w MissingValues) Error() string {
	return fmt.Sprintf("row %d has no value for %s: %q", w.Row, w.Columns, w.Content)
}

type DanglingReference struct {
	FileName constants.StaticFile
	Entity   constants.ScheduleEnity
	ID       string
	Target   constants.ScheduleEnity
	TargetID string
}

func (w DanglingReference) File() constants.StaticFile {
	return w.FileName
}

func (w DanglingReference) Kind() string {
	return "dangling_reference"
}

func (w DanglingReference) Error() string {
	return fmt.Sprintf("%s %q references unknown %s %q", w.Entity, w.ID, w.Target, w.TargetID)
}

type DuplicateCalendar struct {
	ServiceID string
}

func (w DuplicateCalendar) File() constants.StaticFile {
	return constants.CalendarFile
}

func (w DuplicateCalendar) Kind() string {
	return "duplicate_calendar"
}

func (w DuplicateCalendar) Error() string {
	return fmt.Sprintf("service %q appears more than once, keeping the first row", w.ServiceID)
}
