package vision

import (
	"context"
	"encoding/binary"
	"hash/fnv"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

var _ ports.DescriptorExtractor = StubExtractor{}

// StubExtractor responde sin modelo real (FACE_SKIP=true): siempre un rostro centrado con
// un descriptor derivado de los bytes del frame. Solo para desarrollo.
type StubExtractor struct{}

// StubLoader es el Loader del extractor local.
func StubLoader(context.Context) (ports.DescriptorExtractor, error) {
	return StubExtractor{}, nil
}

func (StubExtractor) Extract(_ context.Context, frame ports.Frame) (ports.Extraction, error) {
	if frame.IsEmpty() {
		return ports.Extraction{}, nil
	}
	w, h := float64(frame.Width), float64(frame.Height)
	box := &biometria.Box{X: w * 0.35, Y: h * 0.3, Width: w * 0.3, Height: h * 0.4}

	d := make(biometria.Descriptor, biometria.DescriptorSize)
	var idx [4]byte
	for i := range d {
		hs := fnv.New32a()
		binary.LittleEndian.PutUint32(idx[:], uint32(i))
		_, _ = hs.Write(idx[:])
		_, _ = hs.Write(frame.Image)
		// rango [-0.1, 0.1]
		d[i] = float32(hs.Sum32()%2001)/10000 - 0.1
	}
	return ports.Extraction{Detected: true, Box: box, Descriptor: d}, nil
}
