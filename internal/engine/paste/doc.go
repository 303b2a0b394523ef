// Package paste turns clipboard payloads into detached paragraph
// fragments the selection controller can splice into a document.
//
// Plain text becomes one paragraph per line. HTML is parsed with
// golang.org/x/net/html: block elements and line breaks start paragraphs
// and common inline markup is mapped onto inline styles. Anything not
// explicitly styled takes the normalizer's default style.
package paste
