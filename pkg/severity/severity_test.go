package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var all = []Level{Success, Incomplete, Failure, Error}

func TestCombineCommutative(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, Combine(a, b), Combine(b, a), "Combine(%s, %s)", a, b)
		}
	}
}

func TestCombineAssociative(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				assert.Equal(t, Combine(Combine(a, b), c), Combine(a, Combine(b, c)))
			}
		}
	}
}

func TestCombineIdempotent(t *testing.T) {
	for _, a := range all {
		assert.Equal(t, a, Combine(a, a))
	}
}

func TestErrorAbsorbs(t *testing.T) {
	for _, a := range all {
		assert.Equal(t, Error, Combine(a, Error))
	}
}

func TestOrdering(t *testing.T) {
	assert.Equal(t, Incomplete, Combine(Success, Incomplete))
	assert.Equal(t, Failure, Combine(Incomplete, Failure))
	assert.Equal(t, Failure, Combine(Success, Failure))
}

func TestWorst(t *testing.T) {
	assert.Equal(t, Success, Worst())
	assert.Equal(t, Failure, Worst(Success, Failure, Incomplete))
}

func TestString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Level(42).String())
}
