// Package config loads Inkwell settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← INKWELL_CHANGE_DELAY, INKWELL_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← inkwell.toml or inkwell.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Default()
//	└─────────────────────────────┘
//
// A file holds up to five sections:
//
//	[change]
//	delay = "750ms"
//
//	[guard]
//	timeout = "1s"
//	max_steps = 1048576
//
//	[styles]
//	font-family = "sourcesanspro"
//	font-size = "14"
//
//	[log]
//	level = "info"
//	file = "inkwell.log"
//
//	[preview]
//	width = 80
//
// Durations are Go duration strings; a bare integer is milliseconds.
// Config.SurfaceOptions turns a loaded config into engine options.
package config
