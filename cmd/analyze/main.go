// Command analyze searches a single Tak position and prints the best line.
// The position is given as TPS, or a fresh game of the requested size is
// analyzed when no TPS is given.
//
//	analyze -tps "x5/x5/x5/x5/x5 1 1" -alg mcts -time 5s -threads 4
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MortenLohne/tiltak/eval"
	"github.com/MortenLohne/tiltak/search"
	"github.com/MortenLohne/tiltak/tak"
)

func main() {
	var (
		tps      = flag.String("tps", "", "position in TPS; empty for a fresh game")
		size     = flag.Int("size", 5, "board size for a fresh game (3-8)")
		alg      = flag.String("alg", "mcts", "search algorithm: mcts or minimax")
		budget   = flag.Duration("time", 10*time.Second, "time budget")
		nodes    = flag.Int64("nodes", 0, "node/simulation budget, 0 for none")
		fixed    = flag.Int64("fixed-nodes", 0, "run exactly this many MCTS simulations")
		threads  = flag.Int("threads", 1, "MCTS worker goroutines")
		seed     = flag.Uint64("seed", 0, "RNG seed")
		noise    = flag.String("noise", "none", "policy noise: none, low, medium or high")
		weights  = flag.String("weights", "", "YAML weights file; built-in defaults when empty")
		rollout  = flag.Int("rollout", 0, "MCTS rollout depth, 0 for static leaf evaluation")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()
	setupLogging(*logLevel)

	pos, err := position(*tps, *size)
	if err != nil {
		log.Fatal().Err(err).Msg("bad position")
	}

	cfg, err := config(pos.Size(), *budget, *nodes, *fixed, *threads, *seed, *noise, *weights, *rollout)
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	algorithm, err := search.ParseAlgorithm(*alg)
	if err != nil {
		log.Fatal().Err(err).Msg("bad algorithm")
	}
	searcher, err := search.NewSearcher(algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("bad algorithm")
	}

	log.Info().
		Str("algorithm", algorithm.String()).
		Str("tps", pos.TPS()).
		Msg("analyzing")

	result, err := searcher.Search(context.Background(), pos, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("search failed")
	}

	line := make([]string, 0, len(result.PV))
	for _, mv := range result.PV {
		line = append(line, mv.String())
	}
	fmt.Printf("best move: %s\n", result.Move)
	fmt.Printf("score:     %.3f\n", result.Score)
	fmt.Printf("pv:        %s\n", strings.Join(line, " "))
	if algorithm == search.AlgMCTS {
		fmt.Printf("playouts:  %d in %s\n", result.Stats.Simulations, result.Stats.Elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("depth:     %d (%d nodes in %s)\n",
			result.Stats.Depth, result.Stats.Nodes, result.Stats.Elapsed.Round(time.Millisecond))
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func position(tps string, size int) (*tak.Position, error) {
	if tps != "" {
		return tak.ParseTPS(tps)
	}
	return tak.NewPosition(size)
}

func config(size int, budget time.Duration, nodes, fixed int64, threads int,
	seed uint64, noise, weightsPath string, rollout int) (search.Config, error) {
	noiseLevel, err := parseNoise(noise)
	if err != nil {
		return search.Config{}, err
	}

	w, err := eval.DefaultWeights(size)
	if err != nil {
		return search.Config{}, err
	}
	if weightsPath != "" {
		f, err := os.Open(weightsPath)
		if err != nil {
			return search.Config{}, err
		}
		defer f.Close()
		if w, err = eval.LoadWeights(f); err != nil {
			return search.Config{}, err
		}
	}

	cfg := search.Config{
		TimeBudget:   budget,
		NodeBudget:   nodes,
		FixedNodes:   fixed,
		PolicyNoise:  noiseLevel,
		RolloutDepth: rollout,
		Threads:      threads,
		Seed:         seed,
		Weights:      w,
	}
	return cfg, cfg.Validate()
}

func parseNoise(s string) (search.NoiseLevel, error) {
	switch s {
	case "none":
		return search.NoiseNone, nil
	case "low":
		return search.NoiseLow, nil
	case "medium":
		return search.NoiseMedium, nil
	case "high":
		return search.NoiseHigh, nil
	default:
		return 0, fmt.Errorf("unknown noise level %q", s)
	}
}
