package enums

// WalletTransactionType classifies a ledger entry. Entries are append-only;
// the sign convention lives on the amount (positive credit, negative debit).
type WalletTransactionType string

const (
	WalletTransactionWithdrawal WalletTransactionType = "withdrawal"
	WalletTransactionRefund     WalletTransactionType = "refund"
	WalletTransactionSale       WalletTransactionType = "sale"
	WalletTransactionAdjustment WalletTransactionType = "adjustment"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionWithdrawal,
	WalletTransactionRefund,
	WalletTransactionSale,
	WalletTransactionAdjustment,
}

func (t WalletTransactionType) String() string {
	return string(t)
}

func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}
