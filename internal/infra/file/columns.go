// Package file reads and writes the compound catalog as JSON, CSV or XLSX.
package file

import (
	"fmt"
	"slices"
	"strings"

	"chemguess-service/internal/domain"
)

// Column order used for exports; the Chinese headers match the question bank spreadsheets.
var exportHeader = []string{"化学式", "名称", "酸碱性", "水解/电解", "状态", "反应", "其他性质"}

const (
	colFormula = iota
	colName
	colAcidBase
	colHydrolysis
	colState
	colReactions
	colOther
	numColumns
)

var headerAliases = [numColumns][]string{
	colFormula:    {"formula", "化学式"},
	colName:       {"name", "名称"},
	colAcidBase:   {"acidbase", "酸碱性"},
	colHydrolysis: {"hydrolysiselectrolysis", "水解/电解"},
	colState:      {"state", "状态"},
	colReactions:  {"reactions", "反应"},
	colOther:      {"other", "其他性质"},
}

// examplePrefix marks the sample row spreadsheet templates start with.
const examplePrefix = "示例"

// rowsToCompounds maps a header row plus data rows to compounds. Rows without
// a formula are skipped; field validation is left to the catalog.
func rowsToCompounds(rows [][]string) ([]domain.Compound, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]domain.Compound, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(col int) string {
			i := index[col]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		formula := cell(colFormula)
		if formula == "" || strings.HasPrefix(formula, examplePrefix) {
			continue
		}
		out = append(out, domain.Compound{
			Formula: formula,
			Name:    cell(colName),
			Labels: domain.Labels{
				AcidBase:               cell(colAcidBase),
				HydrolysisElectrolysis: cell(colHydrolysis),
				State:                  cell(colState),
				Reactions:              splitReactions(cell(colReactions)),
				Other:                  cell(colOther),
			},
		})
	}
	return out, nil
}

func headerIndex(header []string) ([numColumns]int, error) {
	var index [numColumns]int
	for i := range index {
		index[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for col, aliases := range headerAliases {
			if index[col] < 0 && slices.Contains(aliases, key) {
				index[col] = i
			}
		}
	}
	if index[colFormula] < 0 {
		return index, fmt.Errorf("header has no formula column")
	}
	return index, nil
}

// splitReactions accepts "/", ";", "|" or newlines between reactions.
func splitReactions(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case '/', ';', '|', '\n', '\r':
			return true
		}
		return false
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func compoundRow(c domain.Compound) []string {
	row := make([]string, numColumns)
	row[colFormula] = c.Formula
	row[colName] = c.Name
	row[colAcidBase] = c.Labels.AcidBase
	row[colHydrolysis] = c.Labels.HydrolysisElectrolysis
	row[colState] = c.Labels.State
	row[colReactions] = strings.Join(c.Labels.Reactions, "/")
	row[colOther] = c.Labels.Other
	for i, v := range row {
		row[i] = strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ").Replace(v))
	}
	return row
}
