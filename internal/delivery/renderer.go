// Package delivery handles voucher hand-off to recipients: rendering the
// redemption token as a QR code and emailing it. Delivery is strictly
// decoupled from voucher state; a failed hand-off never invalidates an
// issued voucher.
package delivery

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer converts a redemption token into a scannable image.
type Renderer interface {
	RenderPNG(token string) ([]byte, error)
}

// qrPNGSize is the edge length in pixels of the generated QR code.
const qrPNGSize = 256

type qrRenderer struct{}

// NewQRRenderer creates a Renderer producing PNG QR codes.
// Rendering is a pure function of the token string.
func NewQRRenderer() Renderer {
	return &qrRenderer{}
}

// RenderPNG encodes the token as a PNG QR code with medium error correction.
func (r *qrRenderer) RenderPNG(token string) ([]byte, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrPNGSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}
