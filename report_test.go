package timetrigger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ngicks/timetrigger"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	scheduled := time.Date(2000, time.April, 21, 12, 9, 54, 1, time.UTC)
	failure := &timetrigger.TaskExecutionError{Id: "2", ScheduledAt: scheduled, Err: errors.New("sample")}

	report := timetrigger.Report{
		Outcomes: []timetrigger.Outcome{
			{Id: "1", State: timetrigger.Completed, ScheduledAt: scheduled, FiredAt: scheduled.Add(time.Millisecond)},
			{Id: "2", State: timetrigger.Failed, ScheduledAt: scheduled, FiredAt: scheduled, Err: failure},
			{Id: "3", State: timetrigger.Cancelled, ScheduledAt: scheduled, Err: timetrigger.ErrCancelled},
			{Id: "4", State: timetrigger.Completed, ScheduledAt: scheduled, FiredAt: scheduled},
		},
	}

	ids := func(outcomes []timetrigger.Outcome) []string {
		var out []string
		for _, o := range outcomes {
			out = append(out, o.Id)
		}
		return out
	}

	if diff := cmp.Diff([]string{"1", "4"}, ids(report.Completed())); diff != "" {
		t.Fatalf("Completed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2"}, ids(report.Failed())); diff != "" {
		t.Fatalf("Failed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(
		report.Outcomes[2:3],
		report.Cancelled(),
		cmpopts.EquateErrors(),
	); diff != "" {
		t.Fatalf("Cancelled mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 4, report.Len())
	require.ErrorIs(t, report.Err(), failure)
	require.Equal(t, time.Millisecond, report.Outcomes[0].Latency())
	require.Equal(t, time.Duration(0), report.Outcomes[2].Latency())

	require.NoError(t, timetrigger.Report{}.Err())
}
