package vm

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	tests := []struct {
		l      Value
		symbol string
		r      Value
		want   Value
	}{
		{Int(2), "+", Int(3), Int(5)},
		{Int(2), "-", Int(3), Int(-1)},
		{Int(6), "*", Int(7), Int(42)},
		{Int(6), "/", Int(3), Float(2)},
		{Int(1), "/", Int(4), Float(0.25)},
		{Float(1.5), "+", Int(1), Float(2.5)},
		{Int(3), "-", Float(0.5), Float(2.5)},
		{Float(2), "*", Float(1.25), Float(2.5)},
		{String("a"), "+", String("b"), String("ab")},
		{String("ab"), "*", Int(3), String("ababab")},
		{Int(2), "*", String("x"), String("xx")},
		{String("x"), "*", Int(-1), String("")},
		{String(""), "*", Int(math.MaxInt64), String("")},
		{Int(math.MaxInt64), "-", Int(1), Int(math.MaxInt64 - 1)},
		{Int(math.MinInt64), "+", Int(math.MaxInt64), Int(-1)},
		{Int(math.MinInt64), "*", Int(1), Int(math.MinInt64)},
		{Int(-3), "*", Int(0), Int(0)},
	}

	for _, tt := range tests {
		got, err := Apply(tt.symbol, tt.l, tt.r)
		if err != nil {
			t.Errorf("%v %s %v failed: %v", tt.l, tt.symbol, tt.r, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%v %s %v = %v, want %v", tt.l, tt.symbol, tt.r, got, tt.want)
		}
	}
}

func TestApplyRejectsUndefinedCombinations(t *testing.T) {
	tests := []struct {
		l      Value
		symbol string
		r      Value
	}{
		{String("a"), "+", Int(1)},
		{Int(1), "+", String("a")},
		{True, "+", Int(1)},
		{None, "-", Int(1)},
		{String("a"), "/", String("b")},
		{String("a"), "*", Float(2)},
		{Int(1), "**", Int(2)},
		{Int(1), "//", Int(2)},
	}
	for _, tt := range tests {
		_, err := Apply(tt.symbol, tt.l, tt.r)
		if !errors.Is(err, UnsupportedOperator) {
			t.Errorf("%v %s %v: got %v, want UnsupportedOperator", tt.l, tt.symbol, tt.r, err)
		}
	}
}

func TestApplyDivisionByZero(t *testing.T) {
	for _, r := range []Value{Int(0), Float(0)} {
		if _, err := Apply("/", Int(1), r); !errors.Is(err, ZeroDivision) {
			t.Errorf("1 / %v: got %v, want ZeroDivision", r, err)
		}
	}
}

func TestOperators(t *testing.T) {
	want := []string{"*", "+", "-", "/"}
	if got := Operators(); !reflect.DeepEqual(got, want) {
		t.Errorf("Operators() = %v, want %v", got, want)
	}
}

func TestApplyOverflow(t *testing.T) {
	tests := []struct {
		l      Value
		symbol string
		r      Value
	}{
		{Int(math.MaxInt64), "+", Int(1)},
		{Int(math.MinInt64), "+", Int(-1)},
		{Int(math.MinInt64), "-", Int(1)},
		{Int(0), "-", Int(math.MinInt64)},
		{Int(1 << 62), "*", Int(4)},
		{Int(-1), "*", Int(math.MinInt64)},
		{Int(math.MinInt64), "*", Int(-1)},
		{String("ab"), "*", Int(math.MaxInt64 / 2)},
		{Int(1 << 40), "*", String("a")},
		{String("a"), "*", Int(MaxStringLen + 1)},
		{String(strings.Repeat("a", MaxStringLen)), "+", String("b")},
	}
	for _, tt := range tests {
		got, err := Apply(tt.symbol, tt.l, tt.r)
		if !errors.Is(err, Overflow) {
			t.Errorf("%s: got %v, %v; want Overflow", tt.symbol, got.Kind(), err)
		}
	}

	got, err := Apply("*", String("a"), Int(MaxStringLen))
	if err != nil || len(got.Str()) != MaxStringLen {
		t.Errorf("repeat to the limit: len %d, err %v", len(got.Str()), err)
	}
}
