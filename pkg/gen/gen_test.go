package gen

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/calc/pkg/expr"
)

func TestWriteIsDeterministic(t *testing.T) {
	var a, b strings.Builder
	require.NoError(t, Write(&a, 50, rand.New(rand.NewSource(7))))
	require.NoError(t, Write(&b, 50, rand.New(rand.NewSource(7))))
	assert.Equal(t, a.String(), b.String())
}

func TestLinesUseAlphabet(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Write(&sb, 200, rand.New(rand.NewSource(1))))

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	require.Len(t, lines, 200)
	for _, line := range lines {
		assert.GreaterOrEqual(t, len(line), MinLength)
		assert.LessOrEqual(t, len(line), MaxLength)
		for _, ch := range line {
			assert.Contains(t, Alphabet, string(ch))
		}
	}
}

func TestGeneratedLinesNeverEscapeTaxonomy(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		line := Line(rnd)
		_, err := expr.Eval(line)
		if err != nil {
			assert.NotZero(t, expr.KindOf(err), "line %q returned unclassified error %v", line, err)
		}
	}
}
