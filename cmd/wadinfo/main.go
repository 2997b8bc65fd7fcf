// wadinfo lists a WAD's directory and dumps a decoded map's record
// counts. Developer tooling, not part of the rendering path.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/smasonuk/doomsie3d"
)

type mapSummary struct {
	Name        string
	Vertexes    int
	Lines       int
	Sides       int
	Sectors     int
	Things      int
	WallQuads   int
	Missing     []string
	PlayerStart doomsie3d.Thing
}

func main() {
	wadPath := flag.String("wad", "doom1.wad", "path to the WAD archive")
	mapName := flag.String("map", "", "also decode and summarize this map")
	listLumps := flag.Bool("lumps", false, "list every directory entry")
	flag.Parse()

	doomsie3d.SetLogger(log.New(os.Stderr, "", 0))

	archive, err := doomsie3d.OpenArchiveFile(*wadPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %s, %d lumps\n", *wadPath, archive.Kind, archive.NumLumps())
	fmt.Printf("maps: %v\n", archive.Maps())

	if *listLumps {
		for i, e := range archive.Dir() {
			fmt.Printf("%5d  %-8s  %8d bytes at %d\n", i, e.Name, e.Length, e.Offset)
		}
	}

	if *mapName == "" {
		return
	}
	level, err := doomsie3d.DecodeMap(archive, *mapName)
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := doomsie3d.NewCatalog(archive)
	if err != nil {
		log.Fatal(err)
	}
	quads := doomsie3d.Lift(level, catalog)

	summary := mapSummary{
		Name:      level.Name,
		Vertexes:  len(level.Vertexes),
		Lines:     len(level.Lines),
		Sides:     len(level.Sides),
		Sectors:   len(level.Sectors),
		Things:    len(level.Things),
		WallQuads: len(quads),
		Missing:   catalog.Missing(),
	}
	summary.PlayerStart, _ = level.PlayerStart()
	spew.Config.Indent = "  "
	spew.Dump(summary)
}
