package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: simple_use <song.mid|sheet.json>")
		return
	}

	log := logger.NewZapLogger()

	player, err := bard.NewPlayer(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSinkKind(contracts.SinkDryRun),
	)
	if err != nil {
		log.Error("Failed to initialize player", log.Field().Error("error", err))
		return
	}
	defer player.Close()

	song, err := player.Load(os.Args[1])
	if err != nil {
		log.Error("Failed to load song", log.Field().Error("error", err))
		return
	}
	fmt.Printf("Loaded %s: %d notes, transpose %+d\n", song.Name, song.Compiled.Len(), song.Offset)

	done := make(chan struct{})
	var finished sync.Once
	player.Handle(func(ev contracts.Event) {
		switch ev.Kind {
		case contracts.EventCountdown:
			fmt.Println("Starting in", ev.Remaining)
		case contracts.EventProgress:
			fmt.Printf("\r%d/%d", ev.Current, ev.Total)
		case contracts.EventState:
			if ev.State == contracts.StateReady {
				finished.Do(func() { close(done) })
			}
		}
	})

	if err := player.Start(); err != nil {
		log.Error("Failed to start playback", log.Field().Error("error", err))
		return
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-done:
	case <-interrupt:
	}
	fmt.Println()
}
