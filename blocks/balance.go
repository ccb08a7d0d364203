package blocks

import (
	"fmt"
	"strconv"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
	"github.com/shopspring/decimal"
)

// ExtractBalanceChanges flattens the per address balance changes of a decoded
// transaction, keeping the decoder order. The same address and asset may repeat.
func ExtractBalanceChanges(tx *decoder.Transaction) ([]BalanceChange, error) {
	transferID := strconv.FormatUint(uint64(tx.TransactionIndex), 10)

	var changes []BalanceChange
	for _, account := range tx.BalanceChanges {
		for _, amount := range account.Amounts {
			value, err := decimal.NewFromString(amount.Value)
			if err != nil {
				return nil, fmt.Errorf("wrong balance change value '%v' of %v: %w", amount.Value, account.Address, err)
			}
			change := BalanceChange{
				TransferID: transferID,
				Asset:      assetOf(&amount),
				Value:      value,
				Address:    account.Address,
			}
			if account.Address == tx.Destination && tx.DestinationTag != nil {
				tagType := TagTypeNumber
				change.Tag = strconv.FormatUint(uint64(*tx.DestinationTag), 10)
				change.TagType = &tagType
			}
			if account.Address == tx.Account {
				nonce := tx.Sequence
				change.Nonce = &nonce
			}
			changes = append(changes, change)
		}
	}
	return changes, nil
}

func assetOf(amount *decoder.Amount) Asset {
	if decoder.IsNativeCurrency(amount.Currency) {
		return NativeAsset()
	}
	return Asset{
		ID:      amount.Currency,
		Address: amount.Counterparty,
	}
}

// nativeFees parses fee drops into native fee list
func nativeFees(drops string) ([]Fee, error) {
	amount, err := decimal.NewFromString(drops)
	if err != nil {
		return nil, fmt.Errorf("wrong fee '%v': %w", drops, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("wrong fee '%v': negative", drops)
	}
	return []Fee{
		{
			Asset:  NativeAsset(),
			Amount: amount.Shift(-NativeDecimals),
		},
	}, nil
}
