package qrimage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Options are the full render inputs. Two renders with equal Options and
// content produce byte-identical assets, so the pair fingerprints to the
// same storage path.
type Options struct {
	Size       int    // Pixel width/height of the output PNG
	Shape      string // Shape variant name ("standard", "rounded")
	Foreground string // Hex color, e.g. "#000000"
	Background string // Hex color, e.g. "#ffffff"
}

// Fingerprint derives the deterministic cache key for a render request.
func Fingerprint(content string, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%d\n%s\n%s\n%s", content, opts.Size, opts.Shape, opts.Foreground, opts.Background)
	return hex.EncodeToString(h.Sum(nil))[:20]
}

// AssetPath maps a fingerprint to its location in the object store.
func AssetPath(fingerprint string) string {
	return fingerprint + ".png"
}
