// Package form holds the analysis input fields and applies edits through a pure reducer.
package form

import (
	"fmt"
	"strings"
)

// Quarter selects which part of the game the analysis focuses on.
type Quarter string

const (
	QuarterFullGame Quarter = "Full Game"
	QuarterQ1       Quarter = "Q1"
	QuarterQ2       Quarter = "Q2"
	QuarterQ3       Quarter = "Q3"
	QuarterQ4       Quarter = "Q4"
)

// Quarters lists every quarter filter in display order.
var Quarters = []Quarter{QuarterFullGame, QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4}

// Valid reports whether q is one of the known quarter filters.
func (q Quarter) Valid() bool {
	for _, known := range Quarters {
		if q == known {
			return true
		}
	}
	return false
}

func (q Quarter) String() string { return string(q) }

// Next returns the quarter that follows q, or "" for Q4 and the full game.
func (q Quarter) Next() Quarter {
	switch q {
	case QuarterQ1:
		return QuarterQ2
	case QuarterQ2:
		return QuarterQ3
	case QuarterQ3:
		return QuarterQ4
	default:
		return ""
	}
}

// ParseQuarter accepts wire labels and common shorthands ("full", "2", "q3").
func ParseQuarter(raw string) (Quarter, error) {
	key := normalizeKey(raw)
	switch key {
	case "fullgame", "full", "all", "game":
		return QuarterFullGame, nil
	case "q1", "1":
		return QuarterQ1, nil
	case "q2", "2":
		return QuarterQ2, nil
	case "q3", "3":
		return QuarterQ3, nil
	case "q4", "4":
		return QuarterQ4, nil
	}
	return "", fmt.Errorf("unknown quarter %q (want one of: %s)", raw, joinLabels(Quarters))
}

// Category is the court level the game was played at.
type Category string

const (
	CategoryHighSchool   Category = "High School"
	CategoryCollege      Category = "College"
	CategoryProfessional Category = "Professional"
)

// Categories lists every court category in display order.
var Categories = []Category{CategoryHighSchool, CategoryCollege, CategoryProfessional}

// Valid reports whether c is one of the known court categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory accepts wire labels, snake/kebab variants, and the legacy "High School Court" label.
func ParseCategory(raw string) (Category, error) {
	switch normalizeKey(raw) {
	case "highschool", "highschoolcourt", "hs":
		return CategoryHighSchool, nil
	case "college", "collegecourt", "ncaa":
		return CategoryCollege, nil
	case "professional", "professionalcourt", "pro":
		return CategoryProfessional, nil
	}
	return "", fmt.Errorf("unknown category %q (want one of: %s)", raw, joinLabels(Categories))
}

func normalizeKey(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func joinLabels[T ~string](values []T) string {
	labels := make([]string, 0, len(values))
	for _, v := range values {
		labels = append(labels, string(v))
	}
	return strings.Join(labels, ", ")
}
