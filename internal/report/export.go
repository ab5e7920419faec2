package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/25smoking/pathrisk/internal/paths"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WritePathsCSV writes one row per path. Unscored paths leave risk empty.
func WritePathsCSV(w io.Writer, results []paths.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "hops", "risk"}); err != nil {
		return err
	}
	for _, r := range paths.Canonical(results) {
		riskCell := ""
		if r.Scored {
			riskCell = strconv.FormatFloat(r.Risk, 'f', -1, 64)
		}
		if err := cw.Write([]string{r.Path.String(), strconv.Itoa(len(r.Path) - 1), riskCell}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile creates filename and hands it to write.
func SaveFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return f.Close()
}
