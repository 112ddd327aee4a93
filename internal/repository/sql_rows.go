package repository

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"OpenFOF/internal/domain/models"
	"OpenFOF/pkg/util"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func validTable(name string) (string, error) {
	if !tableNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return name, nil
}

// scanObservations reads (date, close) rows. Dates may arrive as time.Time
// or text depending on the driver.
func scanObservations(rows *sql.Rows) ([]models.PriceObservation, error) {
	out := make([]models.PriceObservation, 0, 1024)
	for rows.Next() {
		var (
			raw   any
			price float64
		)
		if err := rows.Scan(&raw, &price); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		var d time.Time
		switch v := raw.(type) {
		case time.Time:
			d = v
		case string:
			t, ok := util.ParseTime(v)
			if !ok {
				return nil, fmt.Errorf("scan close: bad date %q", v)
			}
			d = t
		case []byte:
			t, ok := util.ParseTime(string(v))
			if !ok {
				return nil, fmt.Errorf("scan close: bad date %q", v)
			}
			d = t
		default:
			return nil, fmt.Errorf("scan close: unsupported date type %T", raw)
		}
		out = append(out, models.PriceObservation{Date: d, Close: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
