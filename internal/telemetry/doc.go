// Package telemetry holds the data model shared by samplers and the dashboard.
//
// # Series
//
// A Series is a fixed-depth rolling window: it always holds exactly Depth
// samples and each Push evicts the oldest. Percentage series are pushed via
// PushPercent, which clamps into [0, 100] and maps NaN/Inf to 0.
//
// # Snapshots
//
// CPUSnapshot and GPUSnapshot are immutable value objects built by a sampler
// once per successful tick from deep copies of its private series. They are
// never mutated after publication; the next tick supersedes them.
//
// # Mailbox
//
// Mailbox is the hand-off between a sampler goroutine and the single
// consumer. It is a one-slot mailbox with most-recent-wins semantics:
//
//	sampler --Publish--> [ slot ] --Receive/TryReceive--> dashboard
//
// Publish never blocks. If the consumer has not drained the previous value it
// is replaced, so sampling is never throttled by rendering speed.
package telemetry
