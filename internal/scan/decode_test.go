package scan

import (
	"encoding/base64"
	"image"
	"testing"

	"github.com/skip2/go-qrcode"
)

func qrPNGBase64(t *testing.T, content string) string {
	t.Helper()
	data, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		t.Fatalf("failed to generate QR fixture: %v", err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

func TestDecodeQRRoundTrip(t *testing.T) {
	decoder := NewServerDecoder()
	payload := "ESTIMATE:EST-20260001"
	encoded := qrPNGBase64(t, payload)

	tests := []struct {
		name      string
		imageData string
	}{
		{"raw base64", encoded},
		{"data url prefix", "data:image/png;base64," + encoded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decoder.Decode(&DecodeRequest{ImageData: tt.imageData})
			if !resp.Success {
				t.Fatalf("decode failed: %s", resp.Error)
			}
			if resp.Result.Text != payload {
				t.Errorf("Text = %q, want %q", resp.Result.Text, payload)
			}
			if resp.Result.Format != "QR_CODE" {
				t.Errorf("Format = %q, want QR_CODE", resp.Result.Format)
			}
			if !resp.ServerDecode {
				t.Error("ServerDecode should be true")
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	decoder := NewServerDecoder()

	tests := []struct {
		name      string
		imageData string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not an image", base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decoder.Decode(&DecodeRequest{ImageData: tt.imageData})
			if resp.Success {
				t.Error("expected decode to fail")
			}
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestDecodeROIOutOfBounds(t *testing.T) {
	decoder := NewServerDecoder()
	encoded := qrPNGBase64(t, "ESTIMATE:EST-20260002")

	resp := decoder.Decode(&DecodeRequest{
		ImageData: encoded,
		ROI:       &ROI{X: 200, Y: 200, Width: 500, Height: 500},
	})
	if resp.Success {
		t.Error("expected out-of-bounds ROI to fail")
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"small image untouched", 640, 480, 640, 480},
		{"wide image capped", 3200, 1600, 1600, 800},
		{"tall image capped", 1000, 4000, 400, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := downscale(src, maxDecodeDimension)
			bounds := got.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("downscale() = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
