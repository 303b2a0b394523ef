// Package events defines the topics and payloads published by the editing
// surface.
package events
