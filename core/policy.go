package core

import (
	"math/rand/v2"
	"sync/atomic"
)

// PlacementPolicy selects an initial worker for a freshly submitted task
// from the stealable pool. Returning nil means the task cannot be placed,
// which the dispatcher surfaces as ErrNoWorker.
//
// Policies run under no lock; deque lengths read during selection are racy
// but useful as a heuristic. A policy must not retain worker references
// across calls.
type PlacementPolicy func(stealable []*Worker) *Worker

// LoadBalancing returns the default policy: pick the worker with the
// smallest deque, ties broken by earliest position.
func LoadBalancing() PlacementPolicy {
	return func(stealable []*Worker) *Worker {
		var best *Worker
		bestLen := 0
		for _, w := range stealable {
			if n := w.TaskCount(); best == nil || n < bestLen {
				best = w
				bestLen = n
			}
		}
		return best
	}
}

// RoundRobin returns a policy cycling through the pool in order. The
// counter is local to the returned policy instance, so independent
// round-robin policies do not interfere. Overflow wraps harmlessly.
func RoundRobin() PlacementPolicy {
	var counter atomic.Uint64
	return func(stealable []*Worker) *Worker {
		if len(stealable) == 0 {
			return nil
		}
		return stealable[counter.Add(1)%uint64(len(stealable))]
	}
}

// Random returns a policy picking a uniformly random worker.
func Random() PlacementPolicy {
	return func(stealable []*Worker) *Worker {
		if len(stealable) == 0 {
			return nil
		}
		return stealable[rand.IntN(len(stealable))]
	}
}

// policyByName maps config policy names to constructors.
func policyByName(name string) (PlacementPolicy, bool) {
	switch name {
	case "", PolicyLoadBalancing:
		return LoadBalancing(), true
	case PolicyRoundRobin:
		return RoundRobin(), true
	case PolicyRandom:
		return Random(), true
	}
	return nil, false
}
