package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportRow is one parsed line of an item spreadsheet:
// name, role, notes, effort, tag1, tag2, tag3.
type ImportRow struct {
	Name   string
	Role   Role
	Notes  string
	Effort int
	Tags   []string
}

// ToNewItem converts the row into item fields.
func (r ImportRow) ToNewItem() NewItem {
	return NewItem{
		Title:  r.Name,
		Notes:  r.Notes,
		Role:   r.Role,
		Effort: r.Effort,
		Tags:   r.Tags,
	}
}

// ParseCSV reads item rows, skipping the header line and blank lines.
// The first malformed row aborts the whole parse.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []ImportRow
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (ImportRow, error) {
	fields := make([]string, 7)
	for i := range fields {
		if i < len(record) {
			fields[i] = strings.TrimSpace(record[i])
		}
	}
	name, role, notes, effort := fields[0], fields[1], fields[2], fields[3]

	if name == "" {
		return ImportRow{}, fmt.Errorf("missing item name")
	}
	if role != string(RoleMain) && role != string(RoleSide) {
		return ImportRow{}, fmt.Errorf("invalid meal type %q for item %q: must be \"main\" or \"side\"", role, name)
	}
	effortNum, err := strconv.Atoi(effort)
	if err != nil || effortNum < 1 || effortNum > 3 {
		return ImportRow{}, fmt.Errorf("invalid effort value %q for item %q: must be 1, 2, or 3", effort, name)
	}

	var tags []string
	for _, t := range fields[4:] {
		if t != "" {
			tags = append(tags, t)
		}
	}

	return ImportRow{
		Name:   name,
		Role:   Role(role),
		Notes:  notes,
		Effort: effortNum,
		Tags:   tags,
	}, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
