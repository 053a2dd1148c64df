//go:build !unix

package speech

import "fmt"

// NewEspeak is only available on unix systems.
func NewEspeak() (Synthesizer, error) {
	return nil, fmt.Errorf("%w: espeak needs process signals", ErrUnsupported)
}
