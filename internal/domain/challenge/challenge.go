// Package challenge generates the small arithmetic questions that gate
// account deletion. The point is a deliberate confirmation step, not
// cryptographic proof of humanity.
package challenge

import (
	"fmt"
	"math/rand"
)

// Challenge is one generated question with its answer options.
type Challenge struct {
	// Question is the rendered prompt, e.g. "What is 7 * 3?".
	Question string

	// Answer is the correct result.
	Answer int

	// Options are the three candidate answers in display order. The
	// correct answer is always among them. Near-misses can collide with
	// the answer for small results; that is accepted.
	Options []int
}

var operators = []string{"+", "-", "*", "/"}

// New generates a challenge from the given source. Operands are drawn
// uniformly from [1,10], the operator uniformly from +, -, * and /.
// Division rounds down.
func New(rng *rand.Rand) Challenge {
	a := rng.Intn(10) + 1
	b := rng.Intn(10) + 1
	op := operators[rng.Intn(len(operators))]

	var answer int
	switch op {
	case "+":
		answer = a + b
	case "-":
		answer = a - b
	case "*":
		answer = a * b
	case "/":
		answer = a / b
	}

	options := []int{answer, answer + 1, answer - 1}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Challenge{
		Question: fmt.Sprintf("What is %d %s %d?", a, op, b),
		Answer:   answer,
		Options:  options,
	}
}
