package services

import (
	"strings"
	"testing"

	"builddesk-estimates/internal/models"
)

func TestBuildLineItemRowsFlatWithoutCategories(t *testing.T) {
	items := []models.EstimateLineItem{
		{ItemName: "Framing", Quantity: 1, UnitCost: 500},
		{ItemName: "Drywall", Quantity: 2, UnitCost: 250},
	}

	rows := BuildLineItemRows(items)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.IsCategoryHeader {
			t.Errorf("unexpected category header row %q", row.Name)
		}
	}
	if rows[0].Name != "Framing" || rows[1].Name != "Drywall" {
		t.Errorf("rows out of order: %q, %q", rows[0].Name, rows[1].Name)
	}
}

func TestBuildLineItemRowsGroupsInFirstSeenOrder(t *testing.T) {
	items := []models.EstimateLineItem{
		{ItemName: "Rough plumbing", Category: strPtr("Plumbing"), Quantity: 1, UnitCost: 100},
		{ItemName: "Panel upgrade", Category: strPtr("Electrical"), Quantity: 1, UnitCost: 200},
		{ItemName: "Fixture install", Category: strPtr("Plumbing"), Quantity: 1, UnitCost: 50},
		{ItemName: "Cleanup", Quantity: 1, UnitCost: 25},
	}

	rows := BuildLineItemRows(items)

	var sequence []string
	for _, row := range rows {
		if row.IsCategoryHeader {
			sequence = append(sequence, "H:"+row.Name)
		} else {
			sequence = append(sequence, row.Name)
		}
	}

	want := []string{
		"H:PLUMBING", "Rough plumbing", "Fixture install",
		"H:ELECTRICAL", "Panel upgrade",
		"H:GENERAL", "Cleanup",
	}
	if len(sequence) != len(want) {
		t.Fatalf("got sequence %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, sequence[i], want[i])
		}
	}
}

func TestBuildLineItemRowsUsesEffectiveTotal(t *testing.T) {
	items := []models.EstimateLineItem{
		{ItemName: "Concrete", Quantity: 10, UnitCost: 15, TotalCost: floatPtr(140)},
	}

	rows := BuildLineItemRows(items)
	if rows[0].Total != "$140.00" {
		t.Errorf("Total = %q, want %q", rows[0].Total, "$140.00")
	}
}

func TestDescribeItemCostBreakdown(t *testing.T) {
	tests := []struct {
		name string
		item models.EstimateLineItem
		want string
	}{
		{
			name: "no breakdown keeps description",
			item: models.EstimateLineItem{Description: "Per plan"},
			want: "Per plan",
		},
		{
			name: "breakdown appended on new line",
			item: models.EstimateLineItem{
				Description:  "Per plan",
				LaborCost:    floatPtr(200),
				MaterialCost: floatPtr(350.5),
			},
			want: "Per plan\nLabor: $200.00, Materials: $350.50",
		},
		{
			name: "breakdown alone without description",
			item: models.EstimateLineItem{
				EquipmentCost: floatPtr(75),
			},
			want: "Equipment: $75.00",
		},
		{
			name: "zero components skipped",
			item: models.EstimateLineItem{
				LaborCost:     floatPtr(0),
				MaterialCost:  floatPtr(100),
				EquipmentCost: floatPtr(50),
			},
			want: "Materials: $100.00, Equipment: $50.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeItem(&tt.item); got != tt.want {
				t.Errorf("describeItem = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeItemFixedComponentOrder(t *testing.T) {
	item := models.EstimateLineItem{
		EquipmentCost: floatPtr(1),
		LaborCost:     floatPtr(2),
		MaterialCost:  floatPtr(3),
	}

	got := describeItem(&item)
	labor := strings.Index(got, "Labor")
	materials := strings.Index(got, "Materials")
	equipment := strings.Index(got, "Equipment")
	if labor == -1 || materials == -1 || equipment == -1 {
		t.Fatalf("missing components in %q", got)
	}
	if !(labor < materials && materials < equipment) {
		t.Errorf("components out of order in %q", got)
	}
}
