// Package session is the C4 session engine — the heart of the
// conversation runtime. A Session owns exactly one goroutine (spec.md
// §5's one-goroutine-per-session discipline) reached only through its
// Submit(Op) channel, and emits model.Event values on an
// internal/eventbus.Bus that a registry.Handle's caller reads.
//
// Grounded on internal/agent/loop.go's AgenticLoop state machine,
// generalized from the teacher's Init → Stream → Execute Tools →
// Complete/Continue diagram into the spec's explicit State enum:
//
//	Idle ──UserInput──▶ TurnActive ──tool calls──▶ ToolPending
//	  ▲                     │                          │
//	  │                     │ no tool calls            │ needs approval
//	  │                     ▼                          ▼
//	  └──────────────── (turn complete)            Approving
//	                                                    │ decision
//	                                                    ▼
//	                                              ToolPending (run) or
//	                                              TurnActive (denied)
//
// Interrupt (spec.md's Op.Interrupt) moves TurnActive/ToolPending/
// Approving to Aborting from any point, grounded on
// internal/agent/steering.go's mid-run interrupt queue. Shutdown moves
// any state to Terminal.
package session
