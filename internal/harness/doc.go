// Package harness runs scoreboard scenarios: scripted player sessions that
// drive the real engine against an in-memory host and check what each
// player ends up seeing.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: overlay_cycle
//	description: "The overlay replaces the board and hands it back"
//	config: |
//	  scoreboard:
//	    items:
//	      - {title: "&9Kills", variable: kills}
//	  temp-scoreboard: {enabled: true, appear-after: 1m}
//	setup:
//	  - {name: bob, kills: 9}
//	steps:
//	  - {action: join, viewer: alice}
//	  - {action: stats, viewer: alice, stats: {kills: 2}}
//	  - {action: advance, duration: 1m}
//	assertions:
//	  - {type: flavor, viewer: alice, flavor: overlay}
//	  - type: board
//	    viewer: alice
//	    lines: [{text: "§9bob", value: 9}]
//
// # Steps
//
//   - join: connect a player and create their board; lazy: true joins
//     before the player's stats are loaded
//   - leave: disconnect a player and forget their board state
//   - world: move a player; disabled worlds remove the board
//   - stats: add counters to a player's stats, then run a complete refresh
//   - send_update, refresh, update, overlay, unregister: the engine
//     operation of the same name
//   - advance: move the clock, firing due overlay transitions
//
// # Assertion Types
//
//   - board: the sidebar title and rows a player sees, in display order
//   - flavor: none, normal or overlay
//   - writes: number of score writes that reached a player
//   - skipped: event-only variables a player's refreshes currently skip
//
// # Determinism
//
// Each scenario gets a fresh SQLite file and a manual clock, so the trace
// of transport writes is identical across runs and can be compared against
// a golden file with RunWithGolden.
package harness
