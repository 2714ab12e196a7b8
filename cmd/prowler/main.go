package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"prowler/internal/sim"
)

func main() {
	var cfgPath string
	var demeanor string
	var seed int64
	flag.StringVar(&cfgPath, "config", "", "YAML config layered over embedded defaults")
	flag.StringVar(&demeanor, "demeanor", "hunter", "agent demeanor: hunter, stalker, or skulker")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.Parse()

	opts := []sim.HarnessOption{
		sim.WithArena(1280, 720),
		sim.WithSeed(seed),
		sim.WithAgentAt(200, 360, 0),
		sim.WithTargetAt(1000, 360),
		// A few walls so occlusion and pathing have something to work with.
		sim.WithObstacle(560, 120, 40, 220),
		sim.WithObstacle(560, 420, 40, 220),
		sim.WithObstacle(880, 280, 180, 40),
		sim.WithWindow(560, 340, 40, 80),
	}

	switch demeanor {
	case "hunter":
		opts = append(opts, sim.WithDemeanor(sim.DemeanorHunter))
	case "stalker":
		opts = append(opts, sim.WithDemeanor(sim.DemeanorStalker))
	case "skulker":
		opts = append(opts, sim.WithDemeanor(sim.DemeanorSkulker))
	default:
		log.Fatalf("unknown demeanor %q", demeanor)
	}

	if cfgPath != "" {
		cfg, err := sim.LoadConfig(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, sim.WithConfig(cfg))
	}

	ebiten.SetWindowTitle("Prowler")
	ebiten.SetWindowSize(1280, 720)
	if err := ebiten.RunGame(sim.NewView(opts...)); err != nil {
		log.Fatal(err)
	}
}
