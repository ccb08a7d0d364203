package decoder

import (
	"github.com/rubblelabs/ripple/data"
)

type quantity struct {
	address string
	amount  Amount
}

// BalanceChanges computes balance changes from affected nodes of transaction metadata.
// Addresses keep the order of their first appearance and amounts keep the order of the affected nodes.
func BalanceChanges(meta *data.MetaData) ([]AccountBalanceChanges, error) {
	var quantities []quantity
	for i := range meta.AffectedNodes {
		node := affectedNode(&meta.AffectedNodes[i])
		if node == nil {
			continue
		}
		switch node.LedgerEntryType {
		case data.ACCOUNT_ROOT:
			q, err := nativeQuantity(node)
			if err != nil {
				return nil, err
			}
			if q != nil {
				quantities = append(quantities, *q)
			}
		case data.RIPPLE_STATE:
			qs, err := trustLineQuantities(node)
			if err != nil {
				return nil, err
			}
			quantities = append(quantities, qs...)
		}
	}
	return groupByAddress(quantities), nil
}

func affectedNode(effect *data.NodeEffect) *data.AffectedNode {
	switch {
	case effect.CreatedNode != nil:
		return effect.CreatedNode
	case effect.ModifiedNode != nil:
		return effect.ModifiedNode
	case effect.DeletedNode != nil:
		return effect.DeletedNode
	default:
		return nil
	}
}

func nativeQuantity(node *data.AffectedNode) (*quantity, error) {
	newFields, _ := node.NewFields.(*data.AccountRoot)
	finalFields, _ := node.FinalFields.(*data.AccountRoot)
	previousFields, _ := node.PreviousFields.(*data.AccountRoot)

	var (
		value   *data.Value
		account *data.Account
		err     error
	)
	switch {
	case newFields != nil && newFields.Balance != nil:
		value, account = newFields.Balance, newFields.Account
	case previousFields != nil && previousFields.Balance != nil &&
		finalFields != nil && finalFields.Balance != nil:
		value, err = finalFields.Balance.Subtract(*previousFields.Balance)
		if err != nil {
			return nil, err
		}
		account = finalFields.Account
	}
	if value == nil || value.IsZero() || account == nil {
		return nil, nil
	}
	return &quantity{
		address: account.String(),
		amount: Amount{
			Currency: "XRP",
			Value:    value.String(),
		},
	}, nil
}

func trustLineQuantities(node *data.AffectedNode) ([]quantity, error) {
	newFields, _ := node.NewFields.(*data.RippleState)
	finalFields, _ := node.FinalFields.(*data.RippleState)
	previousFields, _ := node.PreviousFields.(*data.RippleState)

	var (
		value  *data.Amount
		fields *data.RippleState
		err    error
	)
	switch {
	case newFields != nil && newFields.Balance != nil:
		value, fields = newFields.Balance, newFields
	case previousFields != nil && previousFields.Balance != nil &&
		finalFields != nil && finalFields.Balance != nil:
		value, err = finalFields.Balance.Subtract(previousFields.Balance)
		if err != nil {
			return nil, err
		}
		fields = finalFields
	}
	if value == nil || value.IsZero() || fields.LowLimit == nil || fields.HighLimit == nil {
		return nil, nil
	}
	currency := fields.Balance.Currency.Machine()
	low := fields.LowLimit.Issuer.String()
	high := fields.HighLimit.Issuer.String()
	return []quantity{
		{
			address: low,
			amount: Amount{
				Currency:     currency,
				Counterparty: high,
				Value:        value.Value.String(),
			},
		},
		{
			address: high,
			amount: Amount{
				Currency:     currency,
				Counterparty: low,
				Value:        value.Value.Negate().String(),
			},
		},
	}, nil
}

func groupByAddress(quantities []quantity) []AccountBalanceChanges {
	var result []AccountBalanceChanges
	index := make(map[string]int)
	for _, q := range quantities {
		i, exist := index[q.address]
		if !exist {
			i = len(result)
			index[q.address] = i
			result = append(result, AccountBalanceChanges{Address: q.address})
		}
		result[i].Amounts = append(result[i].Amounts, q.amount)
	}
	return result
}
