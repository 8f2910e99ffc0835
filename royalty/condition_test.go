package royalty_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marblepress/royalty-engine/royalty"
)

func TestParseComparator(t *testing.T) {
	tests := []struct {
		in   string
		want royalty.Comparator
	}{
		{"<", royalty.LT},
		{"<=", royalty.LE},
		{">", royalty.GT},
		{">=", royalty.GE},
		{"==", royalty.EQ},
		{"=", royalty.EQ},
	}
	for _, tt := range tests {
		got, err := royalty.ParseComparator(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseComparator_Unknown(t *testing.T) {
	_, err := royalty.ParseComparator("~=")
	assert.ErrorIs(t, err, royalty.ErrUnknownComparator)
}

func TestComparator_Eval(t *testing.T) {
	five := decimal.NewFromInt(5)
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name  string
		cmp   royalty.Comparator
		a, b  decimal.Decimal
		want  bool
	}{
		{"5 < 10", royalty.LT, five, ten, true},
		{"10 < 10", royalty.LT, ten, ten, false},
		{"10 <= 10", royalty.LE, ten, ten, true},
		{"10 > 5", royalty.GT, ten, five, true},
		{"5 > 5", royalty.GT, five, five, false},
		{"5 >= 5", royalty.GE, five, five, true},
		{"5 == 5", royalty.EQ, five, five, true},
		{"5 == 10", royalty.EQ, five, ten, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmp.Eval(tt.a, tt.b))
		})
	}
}

func TestCondition_Matches(t *testing.T) {
	cond := royalty.Condition{
		Kind:  royalty.DiscountThreshold,
		Cmp:   royalty.LT,
		Value: decimal.NewFromInt(50),
	}
	assert.True(t, cond.Matches(decimal.NewFromInt(40)))
	assert.False(t, cond.Matches(decimal.NewFromInt(55)))
}
