// Package build tracks the progress of placing a blueprint in a Minecraft
// world.
//
// A build backend streams progress as newline-delimited JSON, one [Status]
// per line. [Decoder] reads such a stream, skipping blank and malformed
// lines, and [Tracker] folds the events into the current state:
//
//	idle -> building -> completed
//	                 -> error
//
// Cancelling a build in flight returns the tracker to idle.
package build

import (
	"github.com/blockprint/blockprint/pkg/blueprint"
)

// State is the lifecycle state of a build.
type State string

const (
	StateIdle      State = "idle"
	StateBuilding  State = "building"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Terminal reports whether no further events are expected.
func (s State) Terminal() bool { return s == StateCompleted || s == StateError }

// MaxLogs is the number of log lines a tracker keeps.
const MaxLogs = 50

// Status is both a single progress event on the wire and the folded state
// kept by a [Tracker].
type Status struct {
	Status        State    `json:"status"`
	Progress      int      `json:"progress"`
	BlocksPlaced  int      `json:"blocks_placed"`
	TotalBlocks   int      `json:"total_blocks"`
	CurrentAction string   `json:"current_action"`
	Logs          []string `json:"logs"`
	Error         string   `json:"error,omitempty"`
}

// Origin is the world coordinate the building's front-left corner is placed at.
type Origin struct {
	X int `json:"x" toml:"x"`
	Y int `json:"y" toml:"y"`
	Z int `json:"z" toml:"z"`
}

// DefaultOrigin is used when a build request names no origin.
var DefaultOrigin = Origin{X: 100, Y: 70, Z: 100}

// Request asks a backend to build a blueprint.
type Request struct {
	Blueprint *blueprint.Blueprint `json:"blueprint"`
	Origin    Origin               `json:"origin"`
}

// NewRequest builds a request at the default origin.
func NewRequest(bp *blueprint.Blueprint) Request {
	return Request{Blueprint: bp, Origin: DefaultOrigin}
}
