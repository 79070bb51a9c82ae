package labeling

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label canvas geometry. Sized for the 62mm thermal label stock at 300dpi-ish
// scale; the QR sits on the right, the text block on the left.
const (
	labelWidth  = 600
	labelHeight = 280
	qrSize      = 240
	marginX     = 16
	marginY     = 24
	lineHeight  = 18
)

// RenderPNG composites the payload text block and its QR code onto a white
// canvas and returns the encoded PNG bytes.
func RenderPNG(p Payload) ([]byte, error) {
	qrImg, err := renderQR(p.QRContent())
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(labelWidth, labelHeight, color.White)
	canvas = imaging.Paste(canvas, qrImg, image.Pt(labelWidth-qrSize-marginX, (labelHeight-qrSize)/2))

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	y := marginY
	for _, line := range p.Lines {
		drawer.Dot = fixed.P(marginX, y)
		drawer.DrawString(line.Label + ": " + line.Value)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode label png: %w", err)
	}
	return buf.Bytes(), nil
}

// QRPNG returns just the QR code as PNG bytes, for labels printed by an
// external template.
func QRPNG(p Payload) ([]byte, error) {
	png, err := qrcode.Encode(p.QRContent(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func renderQR(content string) (image.Image, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("build qr: %w", err)
	}
	return qr.Image(qrSize), nil
}
