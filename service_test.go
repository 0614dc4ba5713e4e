package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"hist/internal/render"
	"hist/internal/tally"
)

func stubRSS(t *testing.T) {
	rssBytesFunc = func() float64 { return 1024 }
	t.Cleanup(func() { rssBytesFunc = rssBytes })
}

func asciiOptions() options {
	cfg := render.DefaultConfig()
	cfg.ASCII = true
	return options{render: cfg, queue: "histogram"}
}

func mustTally(t *testing.T, input string) *tally.Tally {
	t.Helper()
	tl, err := tally.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return tl
}

func TestProcessInputWithStatistics(t *testing.T) {
	stubRSS(t)
	opts := asciiOptions()
	opts.stats = true

	var out bytes.Buffer
	if err := processInput(nil, mustTally(t, "1\n1\n2\n3\n3\n3\n"), opts, &out); err != nil {
		t.Fatalf("processInput: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Count           6\n",
		"Median          2.5\n",
		"Mode            3\n",
		"Mean            2.1667\n",
		"\n1 2 ( 33.3%) ##\n2 1 ( 16.7%) #\n3 3 ( 50.0%) ###\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "P50") {
		t.Fatalf("percentiles printed without --percentiles:\n%s", got)
	}
}

func TestProcessInputFillsGaps(t *testing.T) {
	stubRSS(t)
	opts := asciiOptions()
	opts.render.FillGaps = true

	var out bytes.Buffer
	if err := processInput(nil, mustTally(t, "1\n4\n1\n"), opts, &out); err != nil {
		t.Fatalf("processInput: %v", err)
	}
	want := "1 2 ( 66.7%) ##\n" +
		"2 0 (  0.0%) \n" +
		"3 0 (  0.0%) \n" +
		"4 1 ( 33.3%) #\n"
	if out.String() != want {
		t.Fatalf("unexpected histogram:\n%q\nwant\n%q", out.String(), want)
	}
}

func TestProcessInputRejectsHugeGapFill(t *testing.T) {
	stubRSS(t)
	opts := asciiOptions()
	opts.render.FillGaps = true

	for _, input := range []string{
		"0\n1000000000\n",
		"-99999999999999999999\n99999999999999999999\n",
	} {
		if err := processInput(nil, mustTally(t, input), opts, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error for a range too wide to fill: %q", input)
		}
	}
}

func TestProcessInputEmpty(t *testing.T) {
	stubRSS(t)
	opts := asciiOptions()
	opts.stats = true
	opts.percentiles = true
	opts.render.Summary = true

	var out bytes.Buffer
	if err := processInput(nil, mustTally(t, ""), opts, &out); err != nil {
		t.Fatalf("processInput: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Count           0\n",
		"Median          undefined\n",
		"Mode            undefined\n",
		"Geometric mean  undefined\n",
		"P95             undefined\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "total") {
		t.Fatalf("total bar printed for empty input:\n%s", got)
	}
}

func TestProcessInputFitsTerminal(t *testing.T) {
	stubRSS(t)
	orig := terminalWidth
	terminalWidth = func() (int, error) { return 40, nil }
	t.Cleanup(func() { terminalWidth = orig })
	opts := asciiOptions()
	opts.fit = true

	var out bytes.Buffer
	if err := processInput(nil, mustTally(t, "1\n1\n2\n3\n3\n3\n"), opts, &out); err != nil {
		t.Fatalf("processInput: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		if len(line) > 40 {
			t.Fatalf("line wider than terminal: %q", line)
		}
	}
	if !strings.Contains(out.String(), "3 3 ( 50.0%) "+strings.Repeat("#", 27)+"\n") {
		t.Fatalf("largest bar not at full width:\n%s", out.String())
	}
}

func TestProcessInputStoresResult(t *testing.T) {
	stubRSS(t)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	opts := asciiOptions()
	opts.runID = 5
	mock.ExpectExec("INSERT INTO histogram_results").
		WithArgs(int64(5), int64(3), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 1024.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := processInput(db, mustTally(t, "2\n4\n8\n"), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("processInput: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServeQueueProcessesJobs(t *testing.T) {
	stubRSS(t)
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	conn := newFakeConn()
	conn.queue("BRPOP",
		nil, // timeout
		bulk("queue:histogram", "not json"),
		bulk("queue:histogram", `{"class":"HistogramWorker","args":[9,"obs:9"]}`),
	)
	conn.queue("LRANGE", bulk("1", "1", "2", "3", "3", "3"))

	mock.ExpectExec("INSERT INTO histogram_results").
		WithArgs(int64(9), int64(6), 1.0, 3.0, 2.5, "{3}",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 1024.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// the exhausted fake behaves like a dropped connection
	if err := serveQueue(context.Background(), conn, db, "queue:histogram"); err == nil {
		t.Fatalf("expected connection error once the queue is drained")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServeQueueStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := serveQueue(ctx, newFakeConn(), nil, "queue:histogram"); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}
