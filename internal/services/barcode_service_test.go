package services

import (
	"bytes"
	"testing"
)

func TestEstimatePayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"tagged payload", "ESTIMATE:EST-20260001", "EST-20260001"},
		{"plain number passes through", "EST-20260001", "EST-20260001"},
		{"unrelated text untouched", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseEstimatePayload(tt.payload); got != tt.want {
				t.Errorf("ParseEstimatePayload(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}

	if got := EstimatePayload("EST-20260001"); got != "ESTIMATE:EST-20260001" {
		t.Errorf("EstimatePayload() = %q", got)
	}
}

func TestGenerateEstimateQR(t *testing.T) {
	svc := NewBarcodeService()

	data, err := svc.GenerateEstimateQR("EST-20260001")
	if err != nil {
		t.Fatalf("GenerateEstimateQR() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}

func TestGenerateEstimateBarcode(t *testing.T) {
	svc := NewBarcodeService()

	data, err := svc.GenerateEstimateBarcode("EST-20260001")
	if err != nil {
		t.Fatalf("GenerateEstimateBarcode() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}

func TestGenerateBarcodeRejectsEmptyData(t *testing.T) {
	svc := NewBarcodeService()

	if _, err := svc.GenerateBarcode(""); err == nil {
		t.Error("expected error for empty barcode data")
	}
}
