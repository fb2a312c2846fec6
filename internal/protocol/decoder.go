package protocol

import (
	"fmt"

	"github.com/SeamusWaldron/rubikal"
)

// RotationEvent is a single face turn reported by the cube.
type RotationEvent struct {
	FaceCode  byte   // Raw face+direction code (0x00-0x0B)
	Clockwise bool   // Direction of rotation
	Color     string // Center colour of the turned face
}

// Token returns the move token for the turn. Both faces of an axis share
// one plain direction, so a plain token is clockwise for R, U and F but
// counter-clockwise for L, D and B, seen from each face.
func (e RotationEvent) Token() string {
	face := colorToFace[e.Color]
	if negativeFaces[face] {
		return face.Token(e.Clockwise)
	}
	return face.Token(!e.Clockwise)
}

// Faces on the negative end of their axis
var negativeFaces = map[rubikal.Face]bool{
	rubikal.FaceL: true,
	rubikal.FaceD: true,
	rubikal.FaceB: true,
}

// BatteryEvent is a battery level notification.
type BatteryEvent struct {
	Level int // 0-100 percentage
}

var colorNames = map[byte]string{
	0: "blue",
	1: "green",
	2: "white",
	3: "yellow",
	4: "red",
	5: "orange",
}

// Standard colour scheme: white up, green front.
var colorToFace = map[string]rubikal.Face{
	"white":  rubikal.FaceU,
	"yellow": rubikal.FaceD,
	"green":  rubikal.FaceF,
	"blue":   rubikal.FaceB,
	"red":    rubikal.FaceR,
	"orange": rubikal.FaceL,
}

// DecodeRotation decodes a rotation payload.
// Payloads hold byte pairs: [face_dir] [center_orientation].
func DecodeRotation(payload []byte) ([]RotationEvent, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("rotation payload must have even length, got %d", len(payload))
	}

	var events []RotationEvent
	for i := 0; i < len(payload); i += 2 {
		faceCode := payload[i]

		// Even codes are clockwise, odd codes counter-clockwise
		colorName, ok := colorNames[faceCode/2]
		if !ok {
			return nil, fmt.Errorf("unknown color index %d from face code 0x%02X", faceCode/2, faceCode)
		}

		events = append(events, RotationEvent{
			FaceCode:  faceCode,
			Clockwise: faceCode%2 == 0,
			Color:     colorName,
		})
	}

	return events, nil
}

// DecodeTokens decodes a rotation payload straight into move tokens.
func DecodeTokens(payload []byte) ([]string, error) {
	events, err := DecodeRotation(payload)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, len(events))
	for i, e := range events {
		tokens[i] = e.Token()
	}
	return tokens, nil
}

// DecodeBattery decodes a battery message payload.
func DecodeBattery(payload []byte) (*BatteryEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("battery payload too short")
	}
	return &BatteryEvent{Level: int(payload[0])}, nil
}
