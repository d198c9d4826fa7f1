package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

const columnsPerRow = 10

// PostgreSQL's extended protocol caps a statement at 65535 bind parameters,
// so a statement may carry at most 6553 rows. Kept well under that so a
// re-queued batch merged with fresh history still fits.
const maxRowsPerStmt = 6000

// PostgresSink writes drained snapshots as wide rows, one per
// (timestamp, slot, channel). A commit tick issues one multi-row INSERT;
// batches too large for a single statement are split across statements
// inside one transaction. The conflict clause makes retried batches
// idempotent.
type PostgresSink struct {
	db        *sql.DB
	tableName string
}

func NewPostgresSink(db *sql.DB, table string) *PostgresSink {
	return &PostgresSink{db: db, tableName: table}
}

func (p *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the data table when it does not exist yet.
func (p *PostgresSink) EnsureSchema() error {
	_, err := p.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		slot INT NOT NULL,
		channel INT NOT NULL,
		power INT,
		power_on INT,
		power_down INT,
		vmon DOUBLE PRECISION,
		imon DOUBLE PRECISION,
		v0set DOUBLE PRECISION,
		i0set DOUBLE PRECISION,
		PRIMARY KEY (ts, slot, channel)
	)`, p.tableName))
	return err
}

func (p *PostgresSink) WriteBatch(snaps []*domain.Snapshot) error {
	var rows []domain.ChannelState
	for _, s := range snaps {
		rows = append(rows, s.Channels()...)
	}
	if len(rows) == 0 {
		return nil
	}

	if len(rows) <= maxRowsPerStmt {
		query, args := p.buildInsert(rows)
		if _, err := p.db.Exec(query, args...); err != nil {
			return fmt.Errorf("batch insert %d rows: %w", len(rows), err)
		}
		return nil
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("batch insert begin: %w", err)
	}
	for start := 0; start < len(rows); start += maxRowsPerStmt {
		end := min(start+maxRowsPerStmt, len(rows))
		query, args := p.buildInsert(rows[start:end])
		if _, err := tx.Exec(query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch insert %d rows: %w", len(rows), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batch insert commit: %w", err)
	}
	return nil
}

func (p *PostgresSink) buildInsert(rows []domain.ChannelState) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.tableName)
	b.WriteString(" (ts, slot, channel, power, power_on, power_down, vmon, imon, v0set, i0set) VALUES ")

	args := make([]any, 0, len(rows)*columnsPerRow)
	for _, ch := range rows {
		if len(args) > 0 {
			b.WriteString(",")
		}
		base := len(args)
		b.WriteString("(")
		for i := 0; i < columnsPerRow; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", base+i+1)
		}
		b.WriteString(")")

		args = append(args,
			ch.Timestamp,
			ch.Slot,
			ch.Channel,
			int(ch.Params[domain.ParamPower]),
			int(ch.Params[domain.ParamPowerOn]),
			int(ch.Params[domain.ParamPowerDown]),
			ch.Params[domain.ParamVMon],
			ch.Params[domain.ParamIMon],
			ch.Params[domain.ParamV0Set],
			ch.Params[domain.ParamI0Set],
		)
	}

	b.WriteString(" ON CONFLICT (ts, slot, channel) DO NOTHING")
	return b.String(), args
}

var _ ports.Sink = (*PostgresSink)(nil)
