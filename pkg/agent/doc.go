// Package agent defines the agents a session can run and the registry they are
// constructed from.
//
// Invariants:
//   - A Registry is immutable once built; agents join it only through the
//     Registration values passed to NewRegistry.
//   - Factory.Create performs one lookup and at most one construction, with no
//     fallback to a default agent.
//   - Agents spend the run's character budget through State.Consume only.
//
// Usage:
//
//	factory := agent.NewFactory(agent.Builtin())
//	a, err := factory.Create("MonologueAgent", client)
package agent
