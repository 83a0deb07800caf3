package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/audience"
)

// Executor runs one customer query and returns the rows as records. The SQL
// text arrives on the extract job; building it is the caller's concern.
type Executor interface {
	Query(ctx context.Context, sql string) ([]audience.CustomerRecord, error)
}

type pgExecutor struct {
	pool *pgxpool.Pool
}

var _ Executor = (*pgExecutor)(nil)

func NewExecutor(pool *pgxpool.Pool) Executor {
	return &pgExecutor{pool: pool}
}

// Query maps result columns onto CustomerRecord by name. Unknown columns are
// ignored; NULLs become empty strings.
func (e *pgExecutor) Query(ctx context.Context, sql string) ([]audience.CustomerRecord, error) {
	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return nil, errors.Wrap(err, "executing warehouse query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []audience.CustomerRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "reading warehouse row")
		}

		var rec audience.CustomerRecord
		for i, fd := range fields {
			value := asString(values[i])
			switch string(fd.Name) {
			case "email1":
				rec.Email1 = value
			case "email2":
				rec.Email2 = value
			case "email3":
				rec.Email3 = value
			case "phone1":
				rec.Phone1 = value
			case "phone2":
				rec.Phone2 = value
			case "phone3":
				rec.Phone3 = value
			case "fn":
				rec.FN = value
			case "ln":
				rec.LN = value
			case "zip":
				rec.Zip = value
			case "ct":
				rec.CT = value
			case "st":
				rec.ST = value
			case "country":
				rec.Country = value
			case "doby":
				rec.DOBY = value
			case "gen":
				rec.Gen = value
			case "age":
				rec.Age = value
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating warehouse rows")
	}
	return records, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
