package types

type WalletTransactionType string

const (
	WalletTransactionTypeDeposit    WalletTransactionType = "deposit"
	WalletTransactionTypeWithdrawal WalletTransactionType = "withdrawal"
	WalletTransactionTypePurchase   WalletTransactionType = "purchase"
	WalletTransactionTypeTariff     WalletTransactionType = "tariff"
	WalletTransactionTypeCommission WalletTransactionType = "commission"
	WalletTransactionTypeRefund     WalletTransactionType = "refund"
	WalletTransactionTypeGamePrize  WalletTransactionType = "game_prize"
)

type WalletTransactionStatus string

const (
	WalletTransactionStatusPending   WalletTransactionStatus = "pending"
	WalletTransactionStatusCompleted WalletTransactionStatus = "completed"
	WalletTransactionStatusFailed    WalletTransactionStatus = "failed"
)
