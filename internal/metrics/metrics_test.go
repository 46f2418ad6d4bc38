package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(RecordMutations.WithLabelValues("donations", "create", "failure"))
	RecordMutation("donations", "create", errors.New("boom"))
	after := testutil.ToFloat64(RecordMutations.WithLabelValues("donations", "create", "failure"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestResult(t *testing.T) {
	if Result(nil) != "success" || Result(errors.New("x")) != "failure" {
		t.Fatal("unexpected result labels")
	}
}
