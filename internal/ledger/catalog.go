// Package ledger holds the vocabulary shared by the reports: dictionary
// categories, calendar months and money rounding.
package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the plan category a dictionary entry stands for.
type Category string

const (
	CategoryIssuance   Category = "issuance"
	CategoryCollection Category = "collection"
)

// Categories lists every plan category in report order.
var Categories = []Category{CategoryIssuance, CategoryCollection}

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryIssuance:
		return CategoryIssuance, nil
	case CategoryCollection:
		return CategoryCollection, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// PaymentType discriminates what a payment repays.
type PaymentType string

const (
	PaymentTypeBody    PaymentType = "body"
	PaymentTypePercent PaymentType = "percent"
)

var PaymentTypes = []PaymentType{PaymentTypeBody, PaymentTypePercent}

// Entry is one row of the dictionary table.
type Entry struct {
	ID   uint
	Name string
}

// Catalog resolves the closed enumerations against dictionary ids. It is
// built once at startup and read-only afterwards.
type Catalog struct {
	categories   map[Category]Entry
	paymentTypes map[PaymentType]Entry
	byID         map[uint]Category
}

func NewCatalog(categories map[Category]Entry, paymentTypes map[PaymentType]Entry) (*Catalog, error) {
	c := &Catalog{
		categories:   make(map[Category]Entry, len(categories)),
		paymentTypes: make(map[PaymentType]Entry, len(paymentTypes)),
		byID:         make(map[uint]Category, len(categories)),
	}
	for _, cat := range Categories {
		e, ok := categories[cat]
		if !ok {
			return nil, fmt.Errorf("dictionary entry for category %q is missing", cat)
		}
		c.categories[cat] = e
		c.byID[e.ID] = cat
	}
	for _, pt := range PaymentTypes {
		e, ok := paymentTypes[pt]
		if !ok {
			return nil, fmt.Errorf("dictionary entry for payment type %q is missing", pt)
		}
		c.paymentTypes[pt] = e
	}
	return c, nil
}

func (c *Catalog) CategoryID(cat Category) uint {
	return c.categories[cat].ID
}

func (c *Catalog) CategoryName(cat Category) string {
	return c.categories[cat].Name
}

// CategoryByID maps a dictionary id back to its category.
func (c *Catalog) CategoryByID(id uint) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

func (c *Catalog) PaymentTypeID(pt PaymentType) uint {
	return c.paymentTypes[pt].ID
}

// LabelMap maps free-text plan labels from uploaded sheets onto categories.
type LabelMap map[string]Category

// ParseLabelMap reads "label=category,label=category".
func ParseLabelMap(s string) (LabelMap, error) {
	m := make(LabelMap)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		label, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("label mapping %q must look like label=category", pair)
		}
		cat, err := ParseCategory(value)
		if err != nil {
			return nil, err
		}
		key := normalizeLabel(label)
		if key == "" {
			return nil, fmt.Errorf("label mapping %q has an empty label", pair)
		}
		m[key] = cat
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("label mapping is empty")
	}
	return m, nil
}

// Resolve looks a label up ignoring case and surrounding spaces.
func (m LabelMap) Resolve(label string) (Category, bool) {
	cat, ok := m[normalizeLabel(label)]
	return cat, ok
}

// Labels returns the known labels, sorted.
func (m LabelMap) Labels() []string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
