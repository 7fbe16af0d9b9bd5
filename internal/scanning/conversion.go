package scanning

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// PrepareImage converts inputs the vision APIs cannot consume directly —
// PDFs and HEIC/HEIF photos (common on iPhones) — into PNG, renaming the
// file-name hint so the media type is inferred correctly afterwards.
// Formats the APIs accept as-is (JPEG, PNG, WebP, GIF) pass through
// untouched.
func PrepareImage(img Image) (Image, error) {
	switch {
	case isPDF(img):
		data, err := pdfToPNG(img.Data)
		if err != nil {
			return Image{}, fmt.Errorf("converting PDF to image: %w", err)
		}
		return Image{Data: data, Name: pngName(img.Name)}, nil
	case isHEIC(img):
		data, err := heicToPNG(img.Data)
		if err != nil {
			return Image{}, fmt.Errorf("converting HEIC to image: %w", err)
		}
		return Image{Data: data, Name: pngName(img.Name)}, nil
	default:
		return img, nil
	}
}

func pngName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name + ".png"
}

func isPDF(img Image) bool {
	if strings.HasSuffix(strings.ToLower(img.Name), ".pdf") {
		return true
	}
	b := img.Data
	return len(b) >= 5 && b[0] == '%' && b[1] == 'P' && b[2] == 'D' && b[3] == 'F' && b[4] == '-'
}

// isHEIC sniffs the ftyp box brands HEIC containers start with.
func isHEIC(img Image) bool {
	name := strings.ToLower(img.Name)
	if strings.HasSuffix(name, ".heic") || strings.HasSuffix(name, ".heif") {
		return true
	}
	b := img.Data
	if len(b) >= 12 && string(b[4:8]) == "ftyp" {
		brand := string(b[8:12])
		return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
	}
	return false
}

// pdfToPNG renders the first page of a PDF as PNG. Most receipts are a
// single page.
func pdfToPNG(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func heicToPNG(data []byte) ([]byte, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
