package lib

import (
	"bytes"
	"encoding/base64"

	"github.com/yeqown/go-qrcode"
)

// RenderQRCode encodes text into a jpeg QR image.
func RenderQRCode(text string) ([]byte, error) {
	qrc, err := qrcode.New(text, qrcode.WithBuiltinImageEncoder(qrcode.JPEG_FORMAT))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QRCodeDataURI renders text as an inline image for html mail bodies.
func QRCodeDataURI(text string) (string, error) {
	img, err := RenderQRCode(text)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img), nil
}
