package search

import (
	"sync/atomic"
	"time"
)

// statsCollector accumulates search counters from many goroutines without
// locks. Workers add, the coordinator snapshots once at the end.
type statsCollector struct {
	start       time.Time
	nodes       atomic.Int64
	simulations atomic.Int64
	depth       atomic.Int32
	treeReused  atomic.Bool
}

func newStatsCollector() *statsCollector {
	return &statsCollector{start: time.Now()}
}

func (s *statsCollector) addNodes(n int64) {
	s.nodes.Add(n)
}

func (s *statsCollector) addSimulation() int64 {
	return s.simulations.Add(1)
}

func (s *statsCollector) setDepth(d int) {
	s.depth.Store(int32(d))
}

func (s *statsCollector) reusedTree() {
	s.treeReused.Store(true)
}

func (s *statsCollector) snapshot() Stats {
	return Stats{
		Nodes:       s.nodes.Load(),
		Depth:       int(s.depth.Load()),
		Simulations: s.simulations.Load(),
		TreeReused:  s.treeReused.Load(),
		Elapsed:     time.Since(s.start),
	}
}
