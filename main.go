package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/metroidvania/logging"
	"go.uber.org/zap"
)

func main() {
	allAbilities := flag.Bool("ab", false, "start with all abilities unlocked")
	debug := flag.Bool("debug", false, "enable debug logging and prefab hot reload")
	startRoom := flag.String("room", "", "room id to start in (default room_01)")
	savePath := flag.String("save", "metroidvania_save.json", "save file path")
	logPath := flag.String("log", "", "rolling log file path (console only when empty)")
	load := flag.Bool("load", false, "continue from the save file")
	flag.Parse()

	log := logging.New(logging.Options{FilePath: *logPath, Debug: *debug})
	defer func() { _ = log.Sync() }()

	game, err := NewGame(Options{
		StartRoom:    *startRoom,
		SavePath:     *savePath,
		AllAbilities: *allAbilities,
		Debug:        *debug,
		Load:         *load,
	}, log)
	if err != nil {
		log.Error("start game", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	defer game.Close()

	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowTitle("metroidvania")

	if err := ebiten.RunGame(game); err != nil {
		log.Error("game exited", zap.Error(err))
	}
}
