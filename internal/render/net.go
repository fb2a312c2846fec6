// Package render draws a cube as an unfolded facelet net.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/rubikal"
)

// Sticker is the colour of one facelet, named by the face it started on.
// StickerBlank marks a facelet of a blank cubelet.
type Sticker byte

const (
	StickerBlank Sticker = '.'
	StickerU     Sticker = 'W'
	StickerD     Sticker = 'Y'
	StickerF     Sticker = 'G'
	StickerB     Sticker = 'B'
	StickerR     Sticker = 'R'
	StickerL     Sticker = 'O'
)

// Face indexes the six faces of a Net.
type Face int

const (
	FaceU Face = iota
	FaceL
	FaceF
	FaceR
	FaceB
	FaceD
)

// Net holds the nine stickers of each face as seen from outside the cube,
// row-major from the top-left.
type Net [6][9]Sticker

type vec [3]int

// faceInfo describes one face: its outward normal, its home sticker and how
// a cubelet position maps to a row and column when the face is unfolded.
type faceInfo struct {
	normal  vec
	sticker Sticker
	cell    func(p vec) (row, col int)
}

var faces = [6]faceInfo{
	FaceU: {vec{0, 1, 0}, StickerU, func(p vec) (int, int) { return p[2] + 1, p[0] + 1 }},
	FaceL: {vec{-1, 0, 0}, StickerL, func(p vec) (int, int) { return 1 - p[1], p[2] + 1 }},
	FaceF: {vec{0, 0, 1}, StickerF, func(p vec) (int, int) { return 1 - p[1], p[0] + 1 }},
	FaceR: {vec{1, 0, 0}, StickerR, func(p vec) (int, int) { return 1 - p[1], 1 - p[2] }},
	FaceB: {vec{0, 0, -1}, StickerB, func(p vec) (int, int) { return 1 - p[1], 1 - p[0] }},
	FaceD: {vec{0, -1, 0}, StickerD, func(p vec) (int, int) { return 1 - p[2], p[0] + 1 }},
}

// Build computes the net from cubelets at rest, such as Snapshot.Settled.
func Build(cubelets []rubikal.Cubelet) Net {
	var net Net
	for f := range net {
		for i := range net[f] {
			net[f][i] = StickerBlank
		}
	}

	for _, c := range cubelets {
		pos := toVec(c.Position)
		home := toVec(c.Home.Position())

		for f, info := range faces {
			if !onFace(pos, info.normal) {
				continue
			}
			row, col := info.cell(pos)
			if c.Display == rubikal.DisplayBlank {
				net[f][row*3+col] = StickerBlank
				continue
			}
			net[f][row*3+col] = homeSticker(c, home, info.normal)
		}
	}

	return net
}

// homeSticker finds the sticker of c that now points along normal.
func homeSticker(c rubikal.Cubelet, home, normal vec) Sticker {
	for _, info := range faces {
		if !onFace(home, info.normal) {
			continue
		}
		if vec(c.Orientation.Apply(info.normal)) == normal {
			return info.sticker
		}
	}
	return StickerBlank
}

func onFace(p, normal vec) bool {
	for i := 0; i < 3; i++ {
		if normal[i] != 0 && p[i] != normal[i] {
			return false
		}
	}
	return true
}

func toVec(v rubikal.Vec3) vec {
	r := v.Round()
	return vec{int(r.X), int(r.Y), int(r.Z)}
}

// Solved reports whether every face shows a single colour.
func (n Net) Solved() bool {
	for _, face := range n {
		for _, s := range face {
			if s != face[4] {
				return false
			}
		}
	}
	return true
}

// Row returns row r (0..2) of a face as a string of sticker letters.
func (n Net) Row(f Face, r int) string {
	return string([]byte{byte(n[f][r*3]), byte(n[f][r*3+1]), byte(n[f][r*3+2])})
}

var stickerColors = map[Sticker]lipgloss.Color{
	StickerU: lipgloss.Color("15"),
	StickerD: lipgloss.Color("11"),
	StickerF: lipgloss.Color("10"),
	StickerB: lipgloss.Color("12"),
	StickerR: lipgloss.Color("9"),
	StickerL: lipgloss.Color("208"),
}

var blankStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Renderer formats nets as text.
type Renderer struct {
	Color bool // Paint stickers with lipgloss backgrounds
}

func (r Renderer) sticker(s Sticker) string {
	if !r.Color {
		if s == StickerBlank {
			return "·"
		}
		return string(s)
	}
	if s == StickerBlank {
		return blankStyle.Render(" · ")
	}
	return lipgloss.NewStyle().
		Background(stickerColors[s]).
		Foreground(lipgloss.Color("0")).
		Render(" " + string(s) + " ")
}

func (r Renderer) row(n Net, f Face, row int) string {
	var b strings.Builder
	for col := 0; col < 3; col++ {
		b.WriteString(r.sticker(n[f][row*3+col]))
	}
	return b.String()
}

// Render lays the net out as
//
//	    U
//	L F R B
//	    D
func (r Renderer) Render(n Net) string {
	cellWidth := 1
	if r.Color {
		cellWidth = 3
	}
	pad := strings.Repeat(" ", 3*cellWidth+1)

	var lines []string
	for row := 0; row < 3; row++ {
		lines = append(lines, pad+r.row(n, FaceU, row))
	}
	for row := 0; row < 3; row++ {
		parts := []string{
			r.row(n, FaceL, row),
			r.row(n, FaceF, row),
			r.row(n, FaceR, row),
			r.row(n, FaceB, row),
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	for row := 0; row < 3; row++ {
		lines = append(lines, pad+r.row(n, FaceD, row))
	}

	return strings.Join(lines, "\n")
}

// Snapshot renders a cube snapshot, settling any turn in progress.
func (r Renderer) Snapshot(snap rubikal.Snapshot) string {
	return r.Render(Build(snap.Settled()))
}
