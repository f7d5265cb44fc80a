package stream

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

// Input types.
const (
	InputForce   = "force"
	InputGravity = "gravity"
	InputReset   = "reset"
	InputPause   = "pause"
)

// Frame is one broadcast snapshot. Compact frames carry x, y and radius per
// particle as float32 (Stride 3); full frames carry the whole stride-6
// record as float64.
type Frame struct {
	Step    int       `msgpack:"step"`
	Time    float64   `msgpack:"t"`
	Width   float64   `msgpack:"w"`
	Height  float64   `msgpack:"h"`
	Count   int       `msgpack:"n"`
	Stride  int       `msgpack:"stride"`
	Compact []float32 `msgpack:"xyr,omitempty"`
	Full    []float64 `msgpack:"data,omitempty"`
}

// Input is a client command.
type Input struct {
	Type     string  `msgpack:"type" json:"type"`
	X        float64 `msgpack:"x" json:"x"`
	Y        float64 `msgpack:"y" json:"y"`
	Radius   float64 `msgpack:"radius" json:"radius"`
	Strength float64 `msgpack:"strength" json:"strength"`
	GX       float64 `msgpack:"gx" json:"gx"`
	GY       float64 `msgpack:"gy" json:"gy"`
}

func decodeInput(messageType int, data []byte) (Input, error) {
	var in Input
	var err error
	switch messageType {
	case websocket.TextMessage:
		err = json.Unmarshal(data, &in)
	case websocket.BinaryMessage:
		err = msgpack.Unmarshal(data, &in)
	default:
		return in, fmt.Errorf("stream: unsupported message type %d", messageType)
	}
	if err != nil {
		return in, fmt.Errorf("stream: decode input: %w", err)
	}
	switch in.Type {
	case InputForce, InputGravity, InputReset, InputPause:
	default:
		return in, fmt.Errorf("stream: unknown input type %q", in.Type)
	}
	for _, v := range []float64{in.X, in.Y, in.Radius, in.Strength, in.GX, in.GY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return in, fmt.Errorf("stream: %s input has non-finite field", in.Type)
		}
	}
	return in, nil
}

// encoder reuses its scratch buffers across frames. It is owned by the
// simulation goroutine.
type encoder struct {
	full    bool
	pool    *sim.FramePool
	compact []float32
}

func (e *encoder) encode(f sim.Frame) ([]byte, error) {
	out := Frame{
		Step:   f.Step,
		Time:   f.Time,
		Width:  f.Width,
		Height: f.Height,
		Count:  f.View.Len(),
	}

	if e.full {
		if e.pool == nil {
			e.pool = sim.NewFramePool(f.View.Len())
		}
		buf := e.pool.Capture(f.View)
		defer e.pool.Put(buf)
		out.Stride = particle.Stride
		out.Full = buf
	} else {
		e.compact = f.View.Float32s(e.compact)
		out.Stride = 3
		out.Compact = e.compact
	}

	return msgpack.Marshal(&out)
}
