// Package codec decodifica las imágenes que llegan por HTTP y WebSocket.
package codec

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/jhoicas/biometria-api/internal/application/ports"
)

// ErrEmptyImage indica que el campo de imagen llegó vacío.
var ErrEmptyImage = errors.New("imagen vacía")

// DecodeFrame acepta base64 estándar con o sin prefijo data:image/...;base64,
// El content type se detecta de los bytes, no del prefijo.
func DecodeFrame(data string, width, height int) (ports.Frame, error) {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	if data == "" {
		return ports.Frame{}, ErrEmptyImage
	}
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ports.Frame{}, err
	}
	return ports.Frame{
		Image:       img,
		Width:       width,
		Height:      height,
		ContentType: http.DetectContentType(img),
	}, nil
}

// EncodeFrame devuelve la imagen como data URL para mostrarla en el navegador.
func EncodeFrame(f ports.Frame) string {
	ct := f.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Image)
}
