// Package app replays editing scripts against an Inkwell surface and
// renders the result.
//
// A script is a YAML or TOML file holding an optional initial document
// and a list of steps. Each step performs one action:
//
//	document:
//	  paragraphs:
//	    - inlines: [{text: "Hello"}]
//	steps:
//	  - select: [5, 5]
//	  - input: insertText
//	    data: " world"
//	  - select_all: true
//	  - styles: {font-weight: "700"}
//	  - input: insertFromPaste
//	    html: "<p>pasted</p>"
//	  - blur: true
//	expect: "pasted"
//
// Every replay runs on a fresh surface configured from the Application's
// config. A failing step is rolled back by the surface and recorded in the
// Report; the remaining steps still run.
//
// Reports render as a styled terminal preview, an indented structure
// dump or JSON. Watch mode replays the script whenever it or the config
// file changes.
package app
