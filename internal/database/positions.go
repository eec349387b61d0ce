package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

const selectPositions = `
		SELECT account_id, account_type, person, symbol, company_name, currency,
		       open_quantity, average_entry_price, current_price, open_price,
		       dividend_per_share, total_dividends_received
		FROM positions
`

// GetPositions retrieves open positions, optionally for a single account.
// An empty accountID returns positions across all accounts.
func (db *DB) GetPositions(accountID string) ([]models.RawPosition, error) {
	query := selectPositions + `		ORDER BY symbol ASC, account_id ASC`
	var args []interface{}
	if accountID != "" {
		query = selectPositions + `		WHERE account_id = $1
		ORDER BY symbol ASC`
		args = append(args, accountID)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.RawPosition{}
	for rows.Next() {
		var p models.RawPosition
		var accountType, person, companyName, currency sql.NullString
		var quantity, avgPrice, currentPrice, openPrice, divPerShare, divReceived decimal.NullDecimal

		if err := rows.Scan(
			&p.AccountID, &accountType, &person, &p.Symbol, &companyName, &currency,
			&quantity, &avgPrice, &currentPrice, &openPrice, &divPerShare, &divReceived,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		p.AccountType = accountType.String
		p.Person = person.String
		p.CompanyName = companyName.String
		p.Currency = models.CurrencyCode(currency.String)
		p.OpenQuantity = toFloat(quantity)
		p.AverageEntryPrice = toFloat(avgPrice)
		p.CurrentPrice = toFloat(currentPrice)
		p.OpenPrice = toFloat(openPrice)
		p.DividendPerShare = toFloat(divPerShare)
		p.TotalDividendsReceived = toFloat(divReceived)

		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}

// toFloat maps NULL to 0
func toFloat(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}
