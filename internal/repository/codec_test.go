package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type priced struct {
	Price decimal.Decimal `bson:"price"`
}

func TestDecimalCodec_StoresDecimal128(t *testing.T) {
	reg := NewRegistry()

	data, err := bson.MarshalWithRegistry(reg, priced{Price: decimal.RequireFromString("1299.50")})
	require.NoError(t, err)

	raw := bson.Raw(data).Lookup("price")
	assert.Equal(t, bsontype.Decimal128, raw.Type)

	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
	assert.True(t, out.Price.Equal(decimal.RequireFromString("1299.5")))
}

func TestDecimalCodec_DecodesLegacyNumbers(t *testing.T) {
	reg := NewRegistry()
	d128, err := primitive.ParseDecimal128("2.5E+2")
	require.NoError(t, err)

	cases := map[string]interface{}{
		"double":     99.9,
		"int32":      int32(250),
		"int64":      int64(250),
		"string":     "250.00",
		"decimal128": d128,
	}
	expected := map[string]string{
		"double":     "99.9",
		"int32":      "250",
		"int64":      "250",
		"string":     "250",
		"decimal128": "250",
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"price": value})
			require.NoError(t, err)

			var out priced
			require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
			assert.Equal(t, expected[name], out.Price.String())
		})
	}
}

func TestDecimalCodec_NullIsZero(t *testing.T) {
	data, err := bson.Marshal(bson.M{"price": nil})
	require.NoError(t, err)

	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(NewRegistry(), data, &out))
	assert.True(t, out.Price.IsZero())
}

func TestDecimalCodec_RejectsBoolean(t *testing.T) {
	data, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)

	var out priced
	assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), data, &out))
}
