// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreOp(t *testing.T) {
	before := testutil.ToFloat64(StoreOperations.WithLabelValues("events", "put", "ok"))
	RecordStoreOp("events", "put", nil)
	after := testutil.ToFloat64(StoreOperations.WithLabelValues("events", "put", "ok"))
	if after != before+1 {
		t.Errorf("ok counter = %f, want %f", after, before+1)
	}

	beforeErr := testutil.ToFloat64(StoreOperations.WithLabelValues("events", "put", "error"))
	RecordStoreOp("events", "put", errors.New("disk full"))
	afterErr := testutil.ToFloat64(StoreOperations.WithLabelValues("events", "put", "error"))
	if afterErr != beforeErr+1 {
		t.Errorf("error counter = %f, want %f", afterErr, beforeErr+1)
	}
}

func TestRecordTask(t *testing.T) {
	before := testutil.ToFloat64(TasksProcessed.WithLabelValues("profile.update", "ok"))
	RecordTask("profile.update", "ok", 5*time.Millisecond)
	after := testutil.ToFloat64(TasksProcessed.WithLabelValues("profile.update", "ok"))
	if after != before+1 {
		t.Errorf("task counter = %f, want %f", after, before+1)
	}
}
