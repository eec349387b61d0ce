package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// GetCashAccounts retrieves every cash balance, one row per account and currency
func (db *DB) GetCashAccounts() ([]models.CashAccount, error) {
	query := `
		SELECT account_id, person, account_type, balance, currency
		FROM cash_balances
		ORDER BY person ASC, account_type ASC, currency ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash balances: %w", err)
	}
	defer rows.Close()

	accounts := []models.CashAccount{}
	for rows.Next() {
		var a models.CashAccount
		var person sql.NullString
		var currency string
		var balance decimal.NullDecimal

		if err := rows.Scan(&a.AccountID, &person, &a.AccountType, &balance, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan cash balance: %w", err)
		}
		a.Person = person.String
		a.Balance = toFloat(balance)
		a.Currency = models.CurrencyCode(currency)

		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash balances: %w", err)
	}

	return accounts, nil
}
