// Rubikal - animated 3x3x3 cube engine with terminal, websocket and GoCube front ends.
package main

import (
	"github.com/SeamusWaldron/rubikal/internal/cli"
)

func main() {
	cli.Execute()
}
