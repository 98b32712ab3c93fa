package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"builddesk-estimates/internal/models"
)

// renderPlainText renders the estimate with stream compression off so
// the page text can be asserted on directly.
func renderPlainText(t *testing.T, estimate *models.Estimate) string {
	t.Helper()

	layout := newEstimateLayout(estimate, models.DefaultCompanyInfo())
	layout.pdf.SetCompression(false)
	if err := layout.build(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var buf bytes.Buffer
	if err := layout.pdf.Output(&buf); err != nil {
		t.Fatalf("output failed: %v", err)
	}
	return buf.String()
}

func sampleEstimate() *models.Estimate {
	validUntil := time.Now().AddDate(0, 1, 0)
	return &models.Estimate{
		EstimateID:     1,
		EstimateNumber: "EST-20260001",
		Title:          "Kitchen Remodel",
		Status:         models.EstimateStatusDraft,
		EstimateDate:   time.Now(),
		ValidUntil:     &validUntil,
		ClientName:     strPtr("Pat Doe"),
		ClientEmail:    strPtr("pat@example.com"),
		TotalAmount:    5400,
		LineItems: []models.EstimateLineItem{
			{ItemName: "Demolition", Quantity: 1, UnitCost: 1200, Category: strPtr("Labor")},
			{ItemName: "Cabinets", Quantity: 12, UnitCost: 350, Category: strPtr("Materials")},
		},
	}
}

func TestGenerateEstimatePDF(t *testing.T) {
	service := NewEstimatePDFService()

	pdfBytes, err := service.GenerateEstimatePDF(sampleEstimate(), nil)
	if err != nil {
		t.Fatalf("GenerateEstimatePDF returned error: %v", err)
	}
	if len(pdfBytes) == 0 {
		t.Fatal("generated PDF is empty")
	}
	if string(pdfBytes[:5]) != "%PDF-" {
		t.Errorf("PDF does not start with %%PDF- header: %q", pdfBytes[:5])
	}
}

func TestGenerateEstimatePDFNilEstimate(t *testing.T) {
	service := NewEstimatePDFService()

	if _, err := service.GenerateEstimatePDF(nil, nil); err == nil {
		t.Error("expected error for nil estimate")
	}
}

func TestGenerateEstimatePDFAllStatuses(t *testing.T) {
	service := NewEstimatePDFService()
	statuses := []string{
		models.EstimateStatusDraft,
		models.EstimateStatusSent,
		models.EstimateStatusViewed,
		models.EstimateStatusAccepted,
		models.EstimateStatusRejected,
		models.EstimateStatusExpired,
		"bogus",
	}

	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			estimate := sampleEstimate()
			estimate.Status = status
			pdfBytes, err := service.GenerateEstimatePDF(estimate, nil)
			if err != nil {
				t.Fatalf("status %q: %v", status, err)
			}
			if string(pdfBytes[:5]) != "%PDF-" {
				t.Errorf("status %q: invalid PDF header", status)
			}
		})
	}
}

func TestSinglePageStaysSinglePage(t *testing.T) {
	layout := newEstimateLayout(sampleEstimate(), models.DefaultCompanyInfo())
	if err := layout.build(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if layout.multiPage {
		t.Error("short estimate should not be flagged multi-page")
	}
	if got := layout.pdf.PageCount(); got != 1 {
		t.Errorf("PageCount = %d, want 1", got)
	}
}

func TestLongEstimatePaginates(t *testing.T) {
	estimate := sampleEstimate()
	estimate.LineItems = nil
	for i := 0; i < 60; i++ {
		estimate.LineItems = append(estimate.LineItems, models.EstimateLineItem{
			ItemName:    fmt.Sprintf("Line item %d", i+1),
			Description: "Work performed per plan including materials and disposal",
			Quantity:    1,
			UnitCost:    100,
		})
	}

	layout := newEstimateLayout(estimate, models.DefaultCompanyInfo())
	if err := layout.build(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !layout.multiPage {
		t.Error("long estimate should be flagged multi-page")
	}
	if got := layout.pdf.PageCount(); got < 2 {
		t.Errorf("PageCount = %d, want >= 2", got)
	}
}

func TestTotalsBlockSuppressesZeroRows(t *testing.T) {
	estimate := sampleEstimate()
	estimate.MarkupPercentage = nil
	estimate.TaxPercentage = nil
	estimate.DiscountAmount = nil

	content := renderPlainText(t, estimate)

	if !strings.Contains(content, "Subtotal") {
		t.Error("document should contain a Subtotal row")
	}
	if !strings.Contains(content, "ESTIMATED TOTAL") {
		t.Error("document should contain the grand total row")
	}
	for _, label := range []string{"Markup", "Discount", "Tax"} {
		if strings.Contains(content, label) {
			t.Errorf("document should not contain a %s row when the amount is zero", label)
		}
	}
}

func TestTotalsBlockRendersNonZeroRows(t *testing.T) {
	estimate := sampleEstimate()
	estimate.MarkupPercentage = floatPtr(10)
	estimate.TaxPercentage = floatPtr(8)
	estimate.DiscountAmount = floatPtr(100)

	content := renderPlainText(t, estimate)

	// Parentheses are escaped inside PDF strings, so match the label
	// stems rather than the full "(10%)" suffixes.
	for _, label := range []string{"Markup", "Discount", "Tax"} {
		if !strings.Contains(content, label) {
			t.Errorf("document should contain a %s row", label)
		}
	}
}

func TestDocumentEchoesSuppliedTotalVerbatim(t *testing.T) {
	estimate := sampleEstimate()
	estimate.LineItems = []models.EstimateLineItem{
		{ItemName: "Framing", Quantity: 1, UnitCost: 100},
	}
	// Deliberately inconsistent with the line items
	estimate.TotalAmount = 9999.99

	content := renderPlainText(t, estimate)

	if got := strings.Count(content, "$9,999.99"); got < 2 {
		t.Errorf("supplied total printed %d times, want it in both the detail box and the totals block", got)
	}
	if !strings.Contains(content, "$100.00") {
		t.Error("itemized subtotal should still come from the line items")
	}
}

func TestStatusStyleForFallsBackToDraft(t *testing.T) {
	draft := StatusStyleFor(models.EstimateStatusDraft)
	unknown := StatusStyleFor("nonsense")
	if unknown != draft {
		t.Errorf("unknown status style = %+v, want draft style %+v", unknown, draft)
	}

	accepted := StatusStyleFor(models.EstimateStatusAccepted)
	if accepted == draft {
		t.Error("accepted status should not share the draft style")
	}
}

func TestWatermarkFor(t *testing.T) {
	tests := []struct {
		status   string
		wantText string
		wantOK   bool
	}{
		{models.EstimateStatusAccepted, "ACCEPTED", true},
		{models.EstimateStatusRejected, "DECLINED", true},
		{models.EstimateStatusDraft, "", false},
		{models.EstimateStatusSent, "", false},
		{models.EstimateStatusExpired, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			wm, ok := WatermarkFor(tt.status)
			if ok != tt.wantOK {
				t.Fatalf("WatermarkFor(%q) ok = %v, want %v", tt.status, ok, tt.wantOK)
			}
			if ok && wm.Text != tt.wantText {
				t.Errorf("WatermarkFor(%q) text = %q, want %q", tt.status, wm.Text, tt.wantText)
			}
		})
	}
}

func TestEstimateFilename(t *testing.T) {
	estimate := &models.Estimate{EstimateNumber: "EST-20260042"}
	if got := EstimateFilename(estimate); got != "estimate-EST-20260042.pdf" {
		t.Errorf("EstimateFilename = %q", got)
	}
}
