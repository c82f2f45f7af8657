package montage

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
)

// StopPolicy is the explicit stopping rule for the discovery scan. The scan
// tolerates a few consecutive misses (transient single-file hiccups) but gives
// up before probing indefinitely past the real end of the numbered set.
type StopPolicy struct {
	// MaxFiles is the hard cap on probed indices.
	MaxFiles int
	// ExtraMisses is how many consecutive misses are tolerated beyond the
	// count of files already found.
	ExtraMisses int
}

// DefaultStopPolicy returns the stock discovery bounds.
func DefaultStopPolicy() StopPolicy {
	return StopPolicy{MaxFiles: 20, ExtraMisses: 2}
}

// Exhausted reports whether the scan should stop given the number of files
// found so far and the current run of consecutive misses.
func (p StopPolicy) Exhausted(found, consecutiveMisses int) bool {
	return consecutiveMisses > found+p.ExtraMisses
}

// Probe discovers how many numbered montage files exist by attempting
// sequential loads starting at index 0.
type Probe struct {
	Dir      string
	Template string // fmt template with one %d, e.g. "montage_%d.png"
	Policy   StopPolicy
	Loader   Loader
}

// Discover returns the ordered sequence of validated montage files. It never
// fails; an empty result is a valid (if degenerate) outcome meaning no
// montage files were found. Cancelling the context ends the scan early with
// whatever was found up to that point.
func (p *Probe) Discover(ctx context.Context) []File {
	loader := p.Loader
	if loader == nil {
		loader = FSLoader{}
	}
	policy := p.Policy
	if policy.MaxFiles == 0 {
		policy = DefaultStopPolicy()
	}

	var found []File
	misses := 0
	for idx := 0; idx < policy.MaxFiles; idx++ {
		select {
		case <-ctx.Done():
			return found
		default:
		}

		path := filepath.Join(p.Dir, fmt.Sprintf(p.Template, idx))
		if err := loader.Probe(path); err != nil {
			if idx == 0 {
				// Nothing at index 0 means nothing left to probe.
				return nil
			}
			misses++
			if policy.Exhausted(len(found), misses) {
				break
			}
			continue
		}
		found = append(found, File{Index: idx, Path: path})
		misses = 0
	}

	if len(found) > 0 {
		log.Printf("montage: discovered %d file(s) in %s", len(found), p.Dir)
	}
	return found
}
