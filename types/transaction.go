package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	// Purchases, typed by the cash sub-balance that funded them.
	TransactionContribution         TransactionType = "CONTRIBUTION"
	TransactionDividendReinvestment TransactionType = "DIVIDEND_REINVESTMENT"
	TransactionRebalanceBuy         TransactionType = "REBALANCE_BUY"
	TransactionPreviousCashUse      TransactionType = "PREVIOUS_CASH_USE"

	TransactionRebalanceSell   TransactionType = "REBALANCE_SELL"
	TransactionDividendPayment TransactionType = "DIVIDEND_PAYMENT"

	// CASH_CREDIT records external money entering the cash pool.
	// CASH_RESERVE marks leftover cash rolled into the next month; the
	// entry moves no cash, its RunningCashBalance is the carried amount.
	TransactionCashCredit  TransactionType = "CASH_CREDIT"
	TransactionCashReserve TransactionType = "CASH_RESERVE"
)

// Transaction is one immutable entry of the append-only ledger. CashDelta is
// signed from the portfolio's cash point of view: purchases are negative,
// sales and credits positive. For share-moving entries |CashDelta| matches
// ShareDelta×Price within the 0.01 dust tolerance.
type Transaction struct {
	MonthIndex         int             `json:"month_index"`
	Date               time.Time       `json:"date"`
	Ticker             string          `json:"ticker,omitempty"`
	Type               TransactionType `json:"type"`
	CashDelta          decimal.Decimal `json:"cash_delta"`
	Price              decimal.Decimal `json:"price"`
	ShareDelta         int64           `json:"share_delta"`
	RunningShareTotal  int64           `json:"running_share_total"`
	RunningCashBalance decimal.Decimal `json:"running_cash_balance"`
}
