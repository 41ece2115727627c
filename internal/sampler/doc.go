// Package sampler turns raw hardware readings into rolling histories.
//
// Each sampler owns its series and runs on its own goroutine:
//
//	source/device -> Tick -> private Series -> deep copy -> Mailbox.Publish
//
// Nothing but immutable snapshots leaves a sampler, so the consumer never
// needs a lock. The OS and vendor backends live in internal/provider behind
// the CPUSource and GPUDevice interfaces.
package sampler
