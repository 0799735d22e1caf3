package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("rounds to two decimal places half up", func(t *testing.T) {
		m := NewMoney(decimal.RequireFromString("10.005"))
		assert.Equal(t, "10.01", m.String())

		m = NewMoney(decimal.RequireFromString("10.004"))
		assert.Equal(t, "10.00", m.String())
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("52.50")
		require.NoError(t, err)
		assert.Equal(t, "52.50", m.String())
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		require.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a, _ := NewMoneyFromString("400.00")
	b, _ := NewMoneyFromString("600.00")

	t.Run("add", func(t *testing.T) {
		assert.Equal(t, "1000.00", a.Add(b).String())
	})

	t.Run("sub", func(t *testing.T) {
		assert.Equal(t, "200.00", b.Sub(a).String())
	})

	t.Run("mul rounds result", func(t *testing.T) {
		price, _ := NewMoneyFromString("5.00")
		total := price.Mul(decimal.NewFromInt(10))
		assert.Equal(t, "50.00", total.String())

		taxable, _ := NewMoneyFromString("33.33")
		tax := taxable.Mul(decimal.RequireFromString("0.05"))
		assert.Equal(t, "1.67", tax.String())
	})

	t.Run("comparisons", func(t *testing.T) {
		assert.True(t, b.GreaterThan(a))
		assert.True(t, a.LessThan(b))
		assert.True(t, a.Equal(a))
		assert.True(t, b.GreaterThanOrEqual(b))
	})
}

func TestMoney_Determinism(t *testing.T) {
	// Recomputation from the same inputs must be byte-identical.
	first := NewMoney(decimal.RequireFromString("0.1")).Add(NewMoney(decimal.RequireFromString("0.2")))
	second := NewMoney(decimal.RequireFromString("0.2")).Add(NewMoney(decimal.RequireFromString("0.1")))
	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, "0.30", first.String())
}

func TestMoney_JSON(t *testing.T) {
	m, _ := NewMoneyFromString("52.50")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"52.50"`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))
}

func TestMoney_SQL(t *testing.T) {
	m, _ := NewMoneyFromString("12.34")

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "12.34", v)

	var scanned Money
	require.NoError(t, scanned.Scan("12.34"))
	assert.True(t, m.Equal(scanned))

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
}
