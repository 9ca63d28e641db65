// Package remote links this brain to other nodes: a native websocket link
// speaking CBOR sync packets, an SSH fallback, and one-time portal tokens.
package remote

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// PacketKind discriminates sync packets.
type PacketKind string

const (
	KindHello    PacketKind = "hello"
	KindCommand  PacketKind = "command"
	KindResponse PacketKind = "response"
	KindError    PacketKind = "error"
)

// Packet is the unit exchanged over the native link. Seq pairs a response
// with the command it answers.
type Packet struct {
	Kind   PacketKind `cbor:"kind"`
	Seq    uint64     `cbor:"seq"`
	Sector int        `cbor:"sector"`
	Body   string     `cbor:"body,omitempty"`
}

// encMode uses Core Deterministic Encoding so equal packets encode to equal
// bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("remote: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("remote: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodePacket validates and encodes p.
func EncodePacket(p Packet) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return Marshal(p)
}

// DecodePacket decodes and validates a packet.
func DecodePacket(data []byte) (Packet, error) {
	var p Packet
	if err := Unmarshal(data, &p); err != nil {
		return Packet{}, fmt.Errorf("decode packet: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// Validate rejects unknown packet kinds.
func (p Packet) Validate() error {
	switch p.Kind {
	case KindHello, KindCommand, KindResponse, KindError:
		return nil
	default:
		return fmt.Errorf("unknown packet kind %q", p.Kind)
	}
}
