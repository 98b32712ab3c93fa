package services

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"
)

// estimatePayloadPrefix tags QR payloads so scanned codes can be routed
// back to the owning estimate.
const estimatePayloadPrefix = "ESTIMATE:"

type BarcodeService struct{}

func NewBarcodeService() *BarcodeService {
	return &BarcodeService{}
}

func (s *BarcodeService) GenerateQRCode(data string, size int) ([]byte, error) {
	pngBytes, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	return pngBytes, nil
}

func (s *BarcodeService) GenerateBarcode(data string) ([]byte, error) {
	// Create Code128 barcode
	bc, err := code128.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode: %w", err)
	}

	// Scale the barcode to reasonable size
	scaledBC, err := barcode.Scale(bc, 200, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	// Convert to PNG bytes
	var buf bytes.Buffer
	err = png.Encode(&buf, scaledBC)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode as PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// GenerateEstimateQR encodes the tagged estimate number for print and
// scan-back workflows.
func (s *BarcodeService) GenerateEstimateQR(estimateNumber string) ([]byte, error) {
	return s.GenerateQRCode(EstimatePayload(estimateNumber), 256)
}

func (s *BarcodeService) GenerateEstimateBarcode(estimateNumber string) ([]byte, error) {
	return s.GenerateBarcode(estimateNumber)
}

// EstimatePayload builds the QR payload for an estimate number.
func EstimatePayload(estimateNumber string) string {
	return estimatePayloadPrefix + estimateNumber
}

// ParseEstimatePayload extracts the estimate number from a scanned
// payload. Plain estimate numbers (from Code128 labels) pass through.
func ParseEstimatePayload(payload string) string {
	return strings.TrimPrefix(payload, estimatePayloadPrefix)
}
