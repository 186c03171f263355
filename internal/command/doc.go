// Package command declares console commands and turns declarations into
// bindable candidates.
//
// A console command is a named, zero-argument operation. Application
// packages declare them, usually from init():
//
//	func init() {
//		command.Declare("heal", HealPlayer)
//		command.DeclareMethod("spawnEnemy", (*SpawnController).SpawnEnemy)
//	}
//
// Declare registers a free function. DeclareMethod registers a method whose
// receiver must be found among the host's live objects at bind time. A
// Scanner walks the catalog of declarations and yields one Candidate per
// declaration; the registry package binds candidates into its name table.
package command
