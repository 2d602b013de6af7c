// Package export renders ledger entries for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/amirasaad/atm/pkg/domain/account"
)

// Header is the first CSV row.
var Header = []string{"Type", "Amount", "Timestamp"}

// WriteCSV writes entries in stored order, one row each, after Header.
func WriteCSV(w io.Writer, entries []account.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.Type(), e.Amount.String(), e.FormattedTimestamp()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// APIFilename is the attachment name used by the web API.
func APIFilename(username string) string {
	return username + "_transactions.csv"
}

// CLIFilename is the default output file of the CLI export command.
func CLIFilename(username string) string {
	return "transactions_" + username + ".csv"
}
