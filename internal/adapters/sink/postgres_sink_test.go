package sink

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

func snapshotFor(ts time.Time, seq uint64, slot int, channels int) *domain.Snapshot {
	snap := &domain.Snapshot{Timestamp: ts, Seq: seq}
	for _, param := range domain.Parameters {
		for ch := 0; ch < channels; ch++ {
			v := float64(ch) * 10
			if param.Integral() {
				v = 1
			}
			snap.Readings = append(snap.Readings, domain.Reading{
				Slot: slot, Channel: ch, Kind: param, Value: v, Timestamp: ts,
			})
		}
	}
	return snap
}

func TestPostgresSinkWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewPostgresSink(db, "hv_data")
	ts := time.Now().UTC().Truncate(time.Second)
	snap := snapshotFor(ts, 1, 4, 2)

	expectedQuery := regexp.QuoteMeta(
		"INSERT INTO hv_data (ts, slot, channel, power, power_on, power_down, vmon, imon, v0set, i0set) VALUES " +
			"($1,$2,$3,$4,$5,$6,$7,$8,$9,$10),($11,$12,$13,$14,$15,$16,$17,$18,$19,$20)" +
			" ON CONFLICT (ts, slot, channel) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs(
			ts, 4, 0, 1, 1, 1, 0.0, 0.0, 0.0, 0.0,
			ts, 4, 1, 1, 1, 1, 10.0, 10.0, 10.0, 10.0,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := sink.WriteBatch([]*domain.Snapshot{snap}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkWriteBatchMultipleSnapshots(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewPostgresSink(db, "hv_data")
	ts := time.Now().UTC().Truncate(time.Second)
	batch := []*domain.Snapshot{
		snapshotFor(ts, 1, 1, 1),
		snapshotFor(ts.Add(time.Second), 2, 1, 1),
	}

	// One Exec for the whole batch, two rows.
	mock.ExpectExec("INSERT INTO hv_data").
		WithArgs(
			ts, 1, 0, 1, 1, 1, 0.0, 0.0, 0.0, 0.0,
			ts.Add(time.Second), 1, 0, 1, 1, 1, 0.0, 0.0, 0.0, 0.0,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := sink.WriteBatch(batch); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkWriteBatchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewPostgresSink(db, "hv_data")
	if err := sink.WriteBatch(nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := sink.WriteBatch([]*domain.Snapshot{{Timestamp: time.Now()}}); err != nil {
		t.Fatalf("expected nil error for readingless snapshot, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkWriteBatchChunksOversizedBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// 120 snapshots x 96 channels: the shape of one re-queued minute of
	// history merged with the next. 11520 rows exceed one statement's
	// parameter budget, so the write must split inside a transaction.
	ts := time.Now().UTC().Truncate(time.Second)
	batch := make([]*domain.Snapshot, 0, 120)
	for i := 0; i < 120; i++ {
		batch = append(batch, snapshotFor(ts.Add(time.Duration(i)*time.Second), uint64(i+1), 1, 96))
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hv_data").WillReturnResult(sqlmock.NewResult(0, maxRowsPerStmt))
	mock.ExpectExec("INSERT INTO hv_data").WillReturnResult(sqlmock.NewResult(0, 11520-maxRowsPerStmt))
	mock.ExpectCommit()

	sink := NewPostgresSink(db, "hv_data")
	if err := sink.WriteBatch(batch); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkChunkedWriteRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	ts := time.Now().UTC().Truncate(time.Second)
	batch := make([]*domain.Snapshot, 0, 70)
	for i := 0; i < 70; i++ {
		batch = append(batch, snapshotFor(ts.Add(time.Duration(i)*time.Second), uint64(i+1), 1, 96))
	}

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hv_data").WillReturnResult(sqlmock.NewResult(0, maxRowsPerStmt))
	mock.ExpectExec("INSERT INTO hv_data").WillReturnError(boom)
	mock.ExpectRollback()

	sink := NewPostgresSink(db, "hv_data")
	if err := sink.WriteBatch(batch); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkStatementStaysUnderParameterLimit(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	ts := time.Now().UTC().Truncate(time.Second)
	rows := snapshotFor(ts, 1, 1, maxRowsPerStmt).Channels()

	sink := NewPostgresSink(db, "hv_data")
	_, args := sink.buildInsert(rows)
	if len(args) != maxRowsPerStmt*columnsPerRow {
		t.Fatalf("expected %d args, got %d", maxRowsPerStmt*columnsPerRow, len(args))
	}
	if len(args) > 65535 {
		t.Fatalf("statement carries %d parameters, over the protocol limit", len(args))
	}
}

func TestPostgresSinkWriteBatchError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO hv_data").WillReturnError(boom)

	sink := NewPostgresSink(db, "hv_data")
	ts := time.Now().UTC().Truncate(time.Second)
	err = sink.WriteBatch([]*domain.Snapshot{snapshotFor(ts, 1, 1, 1)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
}

func TestPostgresSinkEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hv_data").
		WillReturnResult(sqlmock.NewResult(0, 0))

	sink := NewPostgresSink(db, "hv_data")
	if err := sink.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	if got := NewPostgresSink(db, "hv_data").Name(); got != "postgres" {
		t.Fatalf("expected sink name postgres, got %s", got)
	}
}
