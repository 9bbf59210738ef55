// Package main provides a terminal previewer for emitted room asset files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gookit/color"

	"github.com/cory-johannsen/roomkit/internal/level"
	"github.com/cory-johannsen/roomkit/internal/preview"
	"github.com/cory-johannsen/roomkit/internal/room"
)

func main() {
	cellSize := flag.Float64("cell-size", level.GridCellSize, "world-unit length of a tile edge")
	plain := flag.Bool("plain", false, "print without colour")
	legend := flag.Bool("legend", true, "print the glyph legend")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: room-preview [-plain] [-legend=false] <asset.yaml>...")
		os.Exit(1)
	}

	heading := color.Style{color.FgCyan, color.OpBold}
	subtle := color.Style{color.FgGray}

	for _, path := range flag.Args() {
		a, err := room.LoadAssetFromFile(path)
		if err != nil {
			log.Fatalf("loading %s: %v", path, err)
		}

		title := fmt.Sprintf("%s (%s, %s, %d cells)", a.Name, a.Category, a.Type, len(a.Cells))
		if *plain {
			fmt.Println(title)
			fmt.Println(strings.Join(preview.Render(a, *cellSize), "\n"))
		} else {
			heading.Println(title)
			for _, row := range preview.Grid(a, *cellSize) {
				var b strings.Builder
				for _, c := range row {
					if c.Color == "" {
						b.WriteRune(c.Glyph)
						continue
					}
					b.WriteString(color.HEX(c.Color).Sprint(string(c.Glyph)))
				}
				fmt.Println(b.String())
			}
		}
		if a.FunctionContainerName != "" {
			subtle.Printf("container: %s\n", a.FunctionContainerName)
		}
		fmt.Println()
	}

	if *legend {
		for _, e := range preview.Legend() {
			glyph := string(e.Glyph)
			if !*plain {
				glyph = color.HEX(e.Color).Sprint(glyph)
			}
			fmt.Printf("  %s  %s\n", glyph, e.Label)
		}
	}
}
