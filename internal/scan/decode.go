package scan

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/image/draw"
)

// maxDecodeDimension caps uploaded frames before decoding. Phone
// cameras routinely send 4k frames, which gozxing handles poorly.
const maxDecodeDimension = 1600

// DecodeRequest represents a server-side decode request
type DecodeRequest struct {
	ImageData string `json:"imageData" binding:"required"` // Base64 encoded image
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ROI       *ROI   `json:"roi,omitempty"`
}

// DecodeResponse represents a server-side decode response
type DecodeResponse struct {
	Success        bool    `json:"success"`
	Result         *Result `json:"result,omitempty"`
	Error          string  `json:"error,omitempty"`
	ProcessingTime int64   `json:"processingTime"` // milliseconds
	Timestamp      int64   `json:"timestamp"`
	ServerDecode   bool    `json:"serverDecode"`
}

// Result represents a decode result
type Result struct {
	Text         string  `json:"text"`
	Format       string  `json:"format"`
	CornerPoints []Point `json:"cornerPoints"`
}

// Point represents a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ROI represents a region of interest
type ROI struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ServerDecoder decodes estimate reference codes from uploaded images.
// Estimates carry a QR code and a Code 128 barcode, so only those two
// readers are wired.
type ServerDecoder struct {
	readers []gozxing.Reader
}

// NewServerDecoder creates a new server-side decoder
func NewServerDecoder() *ServerDecoder {
	return &ServerDecoder{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			oned.NewCode128Reader(),
		},
	}
}

// Decode processes a decode request
func (d *ServerDecoder) Decode(req *DecodeRequest) *DecodeResponse {
	startTime := time.Now()

	response := &DecodeResponse{
		Success:      false,
		Timestamp:    time.Now().UnixMilli(),
		ServerDecode: true,
	}

	img, err := d.decodeImageData(req.ImageData)
	if err != nil {
		response.Error = fmt.Sprintf("Failed to decode image: %v", err)
		response.ProcessingTime = time.Since(startTime).Milliseconds()
		return response
	}

	if req.ROI != nil {
		img, err = d.extractROI(img, req.ROI)
		if err != nil {
			response.Error = fmt.Sprintf("Failed to extract ROI: %v", err)
			response.ProcessingTime = time.Since(startTime).Milliseconds()
			return response
		}
	}

	img = downscale(img, maxDecodeDimension)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		response.Error = fmt.Sprintf("Failed to create bitmap: %v", err)
		response.ProcessingTime = time.Since(startTime).Milliseconds()
		return response
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_QR_CODE,
			gozxing.BarcodeFormat_CODE_128,
		},
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	var result gozxing.Result
	var found bool

	for _, reader := range d.readers {
		resultPtr, decodeErr := reader.Decode(bmp, hints)
		if decodeErr == nil && resultPtr != nil {
			result = *resultPtr
			found = true
			break
		}
	}

	response.ProcessingTime = time.Since(startTime).Milliseconds()

	if !found {
		response.Error = "No barcode found"
		return response
	}

	response.Success = true
	response.Result = &Result{
		Text:         result.GetText(),
		Format:       mapGozxingFormat(result.GetBarcodeFormat()),
		CornerPoints: extractCornerPoints(result),
	}

	return response
}

// decodeImageData decodes base64 PNG or JPEG image data
func (d *ServerDecoder) decodeImageData(imageData string) (image.Image, error) {
	// Strip a data URL prefix if present
	if idx := strings.Index(imageData, ";base64,"); idx != -1 && strings.HasPrefix(imageData, "data:image/") {
		imageData = imageData[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("base64 decode failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	img, jpegErr := jpeg.Decode(bytes.NewReader(data))
	if jpegErr != nil {
		return nil, fmt.Errorf("image decode failed: %v", err)
	}

	return img, nil
}

// extractROI extracts a region of interest from the image
func (d *ServerDecoder) extractROI(img image.Image, roi *ROI) (image.Image, error) {
	bounds := img.Bounds()

	if roi.X < 0 || roi.Y < 0 ||
		roi.X+roi.Width > bounds.Max.X ||
		roi.Y+roi.Height > bounds.Max.Y {
		return nil, fmt.Errorf("ROI out of bounds")
	}

	roiImg := image.NewRGBA(image.Rect(0, 0, roi.Width, roi.Height))

	for y := 0; y < roi.Height; y++ {
		for x := 0; x < roi.Width; x++ {
			roiImg.Set(x, y, img.At(roi.X+x, roi.Y+y))
		}
	}

	return roiImg, nil
}

// downscale resizes an image so neither side exceeds maxDim
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// extractCornerPoints extracts corner points from decode result
func extractCornerPoints(result gozxing.Result) []Point {
	resultPoints := result.GetResultPoints()
	if len(resultPoints) == 0 {
		return []Point{}
	}

	corners := make([]Point, len(resultPoints))
	for i, p := range resultPoints {
		corners[i] = Point{
			X: float64(p.GetX()),
			Y: float64(p.GetY()),
		}
	}

	return corners
}

// mapGozxingFormat maps gozxing format to string
func mapGozxingFormat(format gozxing.BarcodeFormat) string {
	switch format {
	case gozxing.BarcodeFormat_CODE_128:
		return "CODE_128"
	case gozxing.BarcodeFormat_QR_CODE:
		return "QR_CODE"
	default:
		return "UNKNOWN"
	}
}
