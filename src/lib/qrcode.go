package lib

import (
	"bytes"

	"github.com/yeqown/go-qrcode"
)

// QRCodeJPEG renders text as a JPEG QR code.
func QRCodeJPEG(text string) ([]byte, error) {
	qrc, err := qrcode.New(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
