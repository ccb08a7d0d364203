package blocks

import (
	"testing"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBalanceChanges(t *testing.T) {
	tx := &decoder.Transaction{
		Hash:             "AA01",
		Account:          "rSender",
		Sequence:         42,
		FeeDrops:         "12",
		Destination:      "rReceiver",
		DestinationTag:   uint32Ptr(7),
		TransactionIndex: 5,
		Result:           "tesSUCCESS",
		BalanceChanges: []decoder.AccountBalanceChanges{
			{
				Address: "rSender",
				Amounts: []decoder.Amount{
					{Currency: "XRP", Value: "-0.000012"},
					{Currency: "USD", Counterparty: "rIssuer", Value: "-10.5"},
				},
			},
			{
				Address: "rReceiver",
				Amounts: []decoder.Amount{
					{Currency: "USD", Counterparty: "rIssuer", Value: "5"},
					{Currency: "USD", Counterparty: "rIssuer", Value: "5.5"},
				},
			},
			{
				Address: "rIssuer",
				Amounts: []decoder.Amount{
					{Currency: "USD", Counterparty: "rSender", Value: "10.5"},
				},
			},
		},
	}

	changes, err := ExtractBalanceChanges(tx)
	require.NoError(t, err)
	require.Len(t, changes, 5)

	want := []struct {
		address string
		asset   Asset
		value   string
	}{
		{"rSender", NativeAsset(), "-0.000012"},
		{"rSender", Asset{ID: "USD", Address: "rIssuer"}, "-10.5"},
		{"rReceiver", Asset{ID: "USD", Address: "rIssuer"}, "5"},
		{"rReceiver", Asset{ID: "USD", Address: "rIssuer"}, "5.5"},
		{"rIssuer", Asset{ID: "USD", Address: "rSender"}, "10.5"},
	}
	for i, change := range changes {
		assert.Equal(t, "5", change.TransferID)
		assert.Equal(t, want[i].address, change.Address)
		assert.Equal(t, want[i].asset, change.Asset)
		assert.True(t, decimal.RequireFromString(want[i].value).Equal(change.Value), "change %v: %v", i, change.Value)

		switch change.Address {
		case "rSender":
			require.NotNil(t, change.Nonce)
			assert.Equal(t, uint32(42), *change.Nonce)
			assert.Empty(t, change.Tag)
			assert.Nil(t, change.TagType)
		case "rReceiver":
			assert.Nil(t, change.Nonce)
			assert.Equal(t, "7", change.Tag)
			require.NotNil(t, change.TagType)
			assert.Equal(t, TagTypeNumber, *change.TagType)
		default:
			assert.Nil(t, change.Nonce)
			assert.Empty(t, change.Tag)
			assert.Nil(t, change.TagType)
		}
	}
}

func TestExtractBalanceChangesNoTag(t *testing.T) {
	tx := &decoder.Transaction{
		Account:     "rSender",
		Sequence:    1,
		Destination: "rReceiver",
		BalanceChanges: []decoder.AccountBalanceChanges{
			{Address: "rReceiver", Amounts: []decoder.Amount{{Currency: "XRP", Value: "1"}}},
		},
	}
	changes, err := ExtractBalanceChanges(tx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Tag)
	assert.Nil(t, changes[0].TagType)
	assert.Nil(t, changes[0].Nonce)
}

func TestExtractBalanceChangesBadValue(t *testing.T) {
	tx := &decoder.Transaction{
		BalanceChanges: []decoder.AccountBalanceChanges{
			{Address: "rSender", Amounts: []decoder.Amount{{Currency: "XRP", Value: "1,5"}}},
		},
	}
	_, err := ExtractBalanceChanges(tx)
	assert.Error(t, err)
}

func TestNativeFees(t *testing.T) {
	tests := []struct {
		drops string
		want  string
	}{
		{"0", "0"},
		{"10", "0.00001"},
		{"12", "0.000012"},
		{"1000000", "1"},
		{"123456789", "123.456789"},
	}
	for _, test := range tests {
		fees, err := nativeFees(test.drops)
		require.NoError(t, err, "drops %v", test.drops)
		require.Len(t, fees, 1)
		assert.Equal(t, NativeAsset(), fees[0].Asset)
		assert.True(t, decimal.RequireFromString(test.want).Equal(fees[0].Amount), "drops %v: %v", test.drops, fees[0].Amount)
	}

	for _, drops := range []string{"-1", "", "abc"} {
		_, err := nativeFees(drops)
		assert.Error(t, err, "drops %q", drops)
	}
}
