package shared

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestFloat(t *testing.T) {
	// Ensure non-finite values are undefined.
	assert.False(t, NewFloat(math.NaN()).Valid)
	assert.False(t, NewFloat(math.Inf(1)).Valid)
	assert.False(t, NewFloat(math.Inf(-1)).Valid)
	assert.True(t, NewFloat(0).Valid)

	a := NewFloat(6)
	b := NewFloat(3)

	// Ensure arithmetic works on defined values.
	assert.Equal(t, a.Add(b), NewFloat(9))
	assert.Equal(t, a.Sub(b), NewFloat(3))
	assert.Equal(t, a.Mul(b), NewFloat(18))
	assert.Equal(t, a.Div(b), NewFloat(2))
	assert.Equal(t, a.Scale(0.5), NewFloat(3))
	assert.Equal(t, a.Neg(), NewFloat(-6))

	// Ensure undefined operands propagate.
	assert.Equal(t, a.Add(Undefined), Undefined)
	assert.Equal(t, Undefined.Sub(b), Undefined)
	assert.Equal(t, a.Mul(Undefined), Undefined)
	assert.Equal(t, Undefined.Scale(2), Undefined)

	// Ensure division by zero is undefined.
	assert.Equal(t, a.Div(NewFloat(0)), Undefined)
	assert.Equal(t, NewFloat(0).Div(NewFloat(0)), Undefined)

	// Ensure comparisons against undefined values are false.
	assert.True(t, b.Less(a))
	assert.True(t, a.Greater(b))
	assert.False(t, Undefined.Less(a))
	assert.False(t, a.Less(Undefined))
	assert.False(t, Undefined.Greater(a))
	assert.False(t, a.Greater(Undefined))
	assert.True(t, b.LessThan(30))
	assert.False(t, Undefined.LessThan(30))
	assert.False(t, Undefined.GreaterThan(70))

	// Ensure nullable parameters map undefined to nil.
	assert.Nil(t, Undefined.Nullable())
	assert.Equal(t, a.Nullable(), any(float64(6)))
}

func TestFloatCSV(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Float
	}{
		{name: "integer", text: "12", want: NewFloat(12)},
		{name: "decimal", text: "101.25", want: NewFloat(101.25)},
		{name: "padded", text: " 7.5 ", want: NewFloat(7.5)},
		{name: "empty", text: "", want: Undefined},
		{name: "null", text: "null", want: Undefined},
		{name: "nan", text: "NaN", want: Undefined},
		{name: "garbage", text: "n/a", want: Undefined},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var f Float
			err := f.UnmarshalCSV(test.text)
			assert.NoError(t, err)
			assert.Equal(t, f, test.want)
		})
	}

	// Ensure undefined values marshal to empty fields.
	s, err := Undefined.MarshalCSV()
	assert.NoError(t, err)
	assert.Equal(t, s, "")

	s, err = NewFloat(101.25).MarshalCSV()
	assert.NoError(t, err)
	assert.Equal(t, s, "101.25")
}
