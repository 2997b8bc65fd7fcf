package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/smasonuk/doomsie3d"
)

func main() {
	wadPath := flag.String("wad", "doom1.wad", "path to the WAD archive")
	mapName := flag.String("map", "", "map to load (default from config)")
	configPath := flag.String("config", "", "optional YAML config file")
	verbose := flag.Bool("v", false, "log load progress")
	flag.Parse()

	if *verbose {
		doomsie3d.SetLogger(log.New(os.Stderr, "", log.Ltime))
	}

	cfg := doomsie3d.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = doomsie3d.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *mapName != "" {
		cfg.Map = *mapName
	}

	archive, err := doomsie3d.OpenArchiveFile(*wadPath)
	if err != nil {
		log.Fatal(err)
	}
	game, err := doomsie3d.NewGame(cfg, archive)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("doomsie3d - " + cfg.Map)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
