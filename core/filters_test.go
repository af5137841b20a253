package core

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryNames(t *testing.T) {
	names := DefaultRegistry().Names()
	assert.Equal(t, []Family{Coif1, DB1, DB2, DB3, DB4, Haar, Sym2, Sym3, Sym4}, names)
}

func TestFilterBankQuadratureMirror(t *testing.T) {
	reg := DefaultRegistry()
	for _, name := range reg.Names() {
		t.Run(string(name), func(t *testing.T) {
			b, err := reg.Lookup(name)
			require.NoError(t, err)
			n := b.Len()
			require.Len(t, b.DecHi, n)
			require.Len(t, b.RecLo, n)
			require.Len(t, b.RecHi, n)

			for k := 0; k < n; k++ {
				assert.Equal(t, b.DecLo[n-1-k], b.RecLo[k], "RecLo[%d]", k)
				assert.Equal(t, b.RecHi[n-1-k], b.DecHi[k], "DecHi[%d]", k)
				assert.Equal(t, math.Abs(b.DecLo[k]), math.Abs(b.RecHi[k]), "RecHi[%d]", k)
			}

			// 高通滤波器和为 0，低通与高通正交
			var sumHi, dot float64
			for k := 0; k < n; k++ {
				sumHi += b.DecHi[k]
				dot += b.DecLo[k] * b.DecHi[k]
			}
			assert.InDelta(t, 0, sumHi, 1e-9)
			assert.InDelta(t, 0, dot, 1e-9)
		})
	}
}

func TestHaarFilters(t *testing.T) {
	b, err := DefaultRegistry().Lookup(Haar)
	require.NoError(t, err)

	s := 1 / math.Sqrt2
	assert.InDeltaSlice(t, []float64{s, s}, b.DecLo, 1e-15)
	assert.InDeltaSlice(t, []float64{-s, s}, b.DecHi, 1e-15)
	assert.InDeltaSlice(t, []float64{s, s}, b.RecLo, 1e-15)
	assert.InDeltaSlice(t, []float64{s, -s}, b.RecHi, 1e-15)
}

func TestLookupUnknownFamily(t *testing.T) {
	_, err := DefaultRegistry().Lookup("bior2.2")
	var unknown *UnknownFamilyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, Family("bior2.2"), unknown.Family)
	assert.False(t, DefaultRegistry().Has("bior2.2"))
	assert.True(t, DefaultRegistry().Has(Sym4))

	var nilReg *Registry
	_, err = nilReg.Lookup(Haar)
	assert.ErrorAs(t, err, &unknown)
}

func TestNewFilterBankRejectsInvalidTaps(t *testing.T) {
	tests := []struct {
		name  string
		decLo []float64
	}{
		{"odd length", []float64{1, 0.2, 0.2}},
		{"too short", []float64{math.Sqrt2}},
		{"wrong sum", []float64{0.5, 0.5}},
		{"not unit norm", []float64{1.2, math.Sqrt2 - 1.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFilterBank("custom", tt.decLo)
			assert.Error(t, err)
		})
	}
}

func TestNewFilterBankCopiesTaps(t *testing.T) {
	taps := []float64{1 / math.Sqrt2, 1 / math.Sqrt2}
	b, err := NewFilterBank("copy", taps)
	require.NoError(t, err)

	taps[0] = 42
	assert.NotEqual(t, 42.0, b.DecLo[0])
	assert.False(t, slices.Contains(b.RecLo, 42))
}

func TestMaxLevel(t *testing.T) {
	reg := DefaultRegistry()
	tests := []struct {
		family Family
		n      int
		want   int
	}{
		{Haar, 64, 6},
		{Haar, 1, 0},
		{DB2, 64, 4},  // log2(64/3)
		{Sym4, 64, 3}, // log2(64/7)
		{Sym4, 16, 1},
		{Sym4, 6, 0},
	}
	for _, tt := range tests {
		b, err := reg.Lookup(tt.family)
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.MaxLevel(tt.n), "%s n=%d", tt.family, tt.n)
	}
}

func TestNewFilterBankTolerance(t *testing.T) {
	scaled := func(e float64) []float64 {
		s := (1 + e) / math.Sqrt2
		return []float64{s, s}
	}

	// 误差在 orthoTolerance 以内的系数可以接受
	_, err := NewFilterBank("near", scaled(1e-10))
	assert.NoError(t, err)

	_, err = NewFilterBank("far", scaled(1e-8))
	assert.Error(t, err)
}
