package challenge

import (
	"math/rand"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var questionPattern = regexp.MustCompile(`^What is (\d+) ([+\-*/]) (\d+)\?$`)

func TestNew_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		c := New(rng)

		m := questionPattern.FindStringSubmatch(c.Question)
		require.NotNil(t, m, "question %q does not match the expected shape", c.Question)

		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[3])
		assert.GreaterOrEqual(t, a, 1)
		assert.LessOrEqual(t, a, 10)
		assert.GreaterOrEqual(t, b, 1)
		assert.LessOrEqual(t, b, 10)

		var want int
		switch m[2] {
		case "+":
			want = a + b
		case "-":
			want = a - b
		case "*":
			want = a * b
		case "/":
			want = a / b
		}
		assert.Equal(t, want, c.Answer)

		require.Len(t, c.Options, 3)
		assert.Contains(t, c.Options, c.Answer)
		assert.Contains(t, c.Options, c.Answer+1)
		assert.Contains(t, c.Options, c.Answer-1)
	}
}

func TestNew_DivisionRoundsDown(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		c := New(rng)
		m := questionPattern.FindStringSubmatch(c.Question)
		require.NotNil(t, m)
		if m[2] != "/" {
			continue
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[3])
		assert.Equal(t, a/b, c.Answer)
		return
	}
	t.Fatal("no division challenge generated in 5000 draws")
}
