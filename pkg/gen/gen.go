// Package gen produces random expression lines for exercising the engine.
// Most generated lines are malformed on purpose; the point is to drive every
// error path as well as the happy one.
package gen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
)

// Alphabet is the set of characters lines are drawn from.
const Alphabet = "0123456789()^*/+-."

const (
	MinLength = 1
	MaxLength = 10
)

// Line returns one random expression of MinLength..MaxLength characters.
func Line(rnd *rand.Rand) string {
	n := MinLength + rnd.Intn(MaxLength-MinLength+1)
	b := make([]byte, n)
	for i := range b {
		b[i] = Alphabet[rnd.Intn(len(Alphabet))]
	}
	return string(b)
}

// Write writes count random lines to w, one per line.
func Write(w io.Writer, count int, rnd *rand.Rand) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < count; i++ {
		if _, err := fmt.Fprintln(bw, Line(rnd)); err != nil {
			return fmt.Errorf("write line %d: %w", i+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush generated lines: %w", err)
	}
	return nil
}
