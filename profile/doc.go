// Package profile provides optional runtime profiling for the sqfa command.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. Without the tag every operation is a no-op and [Modes] is empty, so
// the CLI hides its profiling flags.
//
// # Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
// A [Config] is built by applying options with [New]:
//
//	cfg := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/profiles"))
//	defer cfg.Start().Stop()
//
// From the command line, profile a lint run over a mission directory:
//
//	go build -tags pprof -o sqfa .
//	./sqfa --pprof-mode cpu lint mission/*.sqf
//	go tool pprof -http=: ~/.cache/sqfa/pprof/cpu.pprof
//
// The default output directory is the pprof subdirectory of the sqfa cache
// directory. The tagged build also registers the [net/http/pprof] handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
