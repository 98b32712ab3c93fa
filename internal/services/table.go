package services

import (
	"strings"

	"builddesk-estimates/internal/models"
)

// generalCategory is the group uncategorized items fall into when other
// items carry a category.
const generalCategory = "General"

// TableRow is one display row of the line-item table. Category header
// rows span the full table width and carry only the Name field.
type TableRow struct {
	IsCategoryHeader bool
	Name             string
	Description      string
	Quantity         string
	Unit             string
	UnitCost         string
	Total            string
}

// BuildLineItemRows converts line items into ordered display rows.
// When any item carries a category, items are grouped under upper-cased
// category header rows in first-seen order of the distinct category
// values; uncategorized items join the "General" group. With no
// categories at all the table stays flat.
func BuildLineItemRows(items []models.EstimateLineItem) []TableRow {
	if !hasCategories(items) {
		rows := make([]TableRow, 0, len(items))
		for i := range items {
			rows = append(rows, itemRow(&items[i]))
		}
		return rows
	}

	// Ordered group-by: remember first-seen order, never sort.
	seen := make(map[string]int)
	order := []string{}
	groups := map[string][]*models.EstimateLineItem{}
	for i := range items {
		cat := generalCategory
		if items[i].Category != nil && *items[i].Category != "" {
			cat = *items[i].Category
		}
		if _, ok := seen[cat]; !ok {
			seen[cat] = len(order)
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], &items[i])
	}

	var rows []TableRow
	for _, cat := range order {
		rows = append(rows, TableRow{
			IsCategoryHeader: true,
			Name:             strings.ToUpper(cat),
		})
		for _, item := range groups[cat] {
			rows = append(rows, itemRow(item))
		}
	}
	return rows
}

func hasCategories(items []models.EstimateLineItem) bool {
	for i := range items {
		if items[i].Category != nil && *items[i].Category != "" {
			return true
		}
	}
	return false
}

func itemRow(item *models.EstimateLineItem) TableRow {
	return TableRow{
		Name:        item.ItemName,
		Description: describeItem(item),
		Quantity:    FormatQuantity(item.Quantity),
		Unit:        item.Unit,
		UnitCost:    FormatCurrency(item.UnitCost),
		Total:       FormatCurrency(item.EffectiveTotal()),
	}
}

// describeItem appends the cost sub-breakdown to the description on a
// new line: labor, materials, equipment, in that fixed order, skipping
// absent or zero values.
func describeItem(item *models.EstimateLineItem) string {
	var parts []string
	if item.LaborCost != nil && *item.LaborCost > 0 {
		parts = append(parts, "Labor: "+FormatCurrency(*item.LaborCost))
	}
	if item.MaterialCost != nil && *item.MaterialCost > 0 {
		parts = append(parts, "Materials: "+FormatCurrency(*item.MaterialCost))
	}
	if item.EquipmentCost != nil && *item.EquipmentCost > 0 {
		parts = append(parts, "Equipment: "+FormatCurrency(*item.EquipmentCost))
	}

	if len(parts) == 0 {
		return item.Description
	}
	breakdown := strings.Join(parts, ", ")
	if item.Description == "" {
		return breakdown
	}
	return item.Description + "\n" + breakdown
}
