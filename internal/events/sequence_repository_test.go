package events

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

type fakeTxStarter struct {
	sequences  map[string]int64
	failBegin  bool
	failCommit bool
	rolledBack int
}

func (f *fakeTxStarter) BeginTx(ctx context.Context, opts *sql.TxOptions) (txRunner, error) {
	if f.failBegin {
		return nil, errors.New("begin failed")
	}
	return &fakeTx{starter: f}, nil
}

type fakeTx struct {
	starter *fakeTxStarter
}

func (f *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) rowScanner {
	partition := args[0].(string)
	f.starter.sequences[partition]++
	return fakeRow{value: f.starter.sequences[partition]}
}

func (f *fakeTx) Commit() error {
	if f.starter.failCommit {
		return errors.New("commit failed")
	}
	return nil
}

func (f *fakeTx) Rollback() error {
	f.starter.rolledBack++
	return nil
}

type fakeRow struct {
	value int64
}

func (f fakeRow) Scan(dest ...any) error {
	ptr, ok := dest[0].(*int64)
	if !ok {
		return errors.New("expected *int64 destination")
	}
	*ptr = f.value
	return nil
}

func TestNextSequenceIncrementsPerPartition(t *testing.T) {
	starter := &fakeTxStarter{sequences: make(map[string]int64)}
	repo := &sequenceRepository{db: starter}

	seq1, err := repo.NextSequence(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq1 != 1 {
		t.Fatalf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := repo.NextSequence(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq2 != 2 {
		t.Fatalf("expected second sequence to be 2, got %d", seq2)
	}

	seqOther, err := repo.NextSequence(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seqOther != 1 {
		t.Fatalf("expected new partition to start at 1, got %d", seqOther)
	}
}

func TestNextSequenceErrors(t *testing.T) {
	tests := map[string]struct {
		starter   *fakeTxStarter
		key       string
		rollbacks int
	}{
		"empty partition key": {starter: &fakeTxStarter{sequences: map[string]int64{}}, key: ""},
		"begin failure":       {starter: &fakeTxStarter{sequences: map[string]int64{}, failBegin: true}, key: "user-1"},
		"commit failure":      {starter: &fakeTxStarter{sequences: map[string]int64{}, failCommit: true}, key: "user-1", rollbacks: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &sequenceRepository{db: tc.starter}
			if _, err := repo.NextSequence(context.Background(), tc.key); err == nil {
				t.Fatalf("expected error")
			}
			if tc.starter.rolledBack != tc.rollbacks {
				t.Fatalf("expected %d rollbacks, got %d", tc.rollbacks, tc.starter.rolledBack)
			}
		})
	}
}

func TestMemorySequence(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.NextSequence(ctx, "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	got, err := seq.NextSequence(ctx, "user-2")
	if err != nil || got != 1 {
		t.Fatalf("expected fresh partition to start at 1, got %d (%v)", got, err)
	}

	if _, err := seq.NextSequence(ctx, ""); err == nil {
		t.Fatalf("expected error for empty partition key")
	}
}
