package source

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gocarina/gocsv"
)

type tokenRow struct {
	Token common.Address `csv:"token"`
}

// ReadAddressesFromCSV reads a missing-token list from a Dune result
// export. Row order is kept, the file must carry a token column.
func ReadAddressesFromCSV(csvFile string) ([]common.Address, error) {
	f, err := os.Open(csvFile)
	if err != nil {
		return nil, &SourceQueryError{Query: csvFile, Err: err}
	}
	defer f.Close()

	var rows []*tokenRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, &SourceQueryError{Query: csvFile, Err: fmt.Errorf("parse csv: %w", err)}
	}

	addresses := make([]common.Address, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, row.Token)
	}
	return addresses, nil
}
