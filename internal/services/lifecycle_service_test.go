package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"picklist/internal/domain"
	"picklist/internal/repos"
	"picklist/internal/services"
	"picklist/internal/store"
)

const sampleSheet = "POS. LOCALIZ. LOTE\n" +
	"1 ABC123 10,5 99 Blue Sheet Set PC x\n" +
	"2 XYZ900 2,0 100 Pillow Case PC x\n" +
	"3 QQ12 1,25 7 Mattress Cover PC x\n" +
	"TOTAL 3\n"

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newService(t *testing.T) (*services.LifecycleService, *store.Local) {
	t.Helper()
	db := memdb(t)
	local := store.NewLocal(repos.NewListRepo(db))
	svc := services.NewLifecycleService(local, repos.NewTimerRepo(db), nil)
	svc.TickInterval = time.Millisecond
	svc.FlushInterval = 5 * time.Millisecond
	t.Cleanup(svc.StopPicking)
	return svc, local
}

func TestImportTextCreatesPendingList(t *testing.T) {
	svc, local := newService(t)

	l, err := svc.ImportText("sheet-04.txt", sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	if l.Status != domain.StatusPending {
		t.Fatalf("imported list must be pending, got %s", l.Status)
	}
	sums, _ := local.ListByStatus(domain.StatusPending)
	if len(sums) != 1 || sums[0].ItemCount != 3 {
		t.Fatalf("expected one pending list with 3 items, got %+v", sums)
	}
}

func TestImportTextZeroItemsCreatesNothing(t *testing.T) {
	svc, local := newService(t)

	_, err := svc.ImportText("bad.txt", "no header here\njust noise\n")
	if !errors.Is(err, domain.ErrParseEmpty) {
		t.Fatalf("expected ErrParseEmpty, got %v", err)
	}
	sums, _ := local.ListByStatus(domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted)
	if len(sums) != 0 {
		t.Fatalf("no list may be created on an empty parse, got %+v", sums)
	}
}

func TestCompletionFiresExactlyOnce(t *testing.T) {
	svc, local := newService(t)

	var mu sync.Mutex
	var fired []string
	svc.OnComplete = func(listID string, seconds int) {
		mu.Lock()
		fired = append(fired, listID)
		mu.Unlock()
	}

	l, err := svc.ImportText("sheet", sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}

	if done, _ := svc.ToggleItem(l.ID, 1, true); done {
		t.Fatal("list not complete yet")
	}
	if done, _ := svc.ToggleItem(l.ID, 2, true); done {
		t.Fatal("list not complete yet")
	}
	done, err := svc.ToggleItem(l.ID, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("closing the last item must complete the list")
	}

	got, _ := local.GetList(l.ID)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	// Re-toggling items on the finished list never re-fires.
	if _, err := svc.ToggleItem(l.ID, 3, false); err != nil {
		t.Fatal(err)
	}
	if done, _ := svc.ToggleItem(l.ID, 3, true); done {
		t.Fatal("completed list must not complete again")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != l.ID {
		t.Fatalf("expected exactly one completion signal, got %v", fired)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	svc, local := newService(t)

	l, _ := svc.ImportText("sheet", sampleSheet)
	seen := []domain.Status{domain.StatusPending}
	record := func() {
		got, err := local.GetList(l.ID)
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, got.Status)
	}

	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	record()
	for pos := 1; pos <= 3; pos++ {
		if _, err := svc.ToggleItem(l.ID, pos, true); err != nil {
			t.Fatal(err)
		}
		record()
	}

	order := map[domain.Status]int{domain.StatusPending: 0, domain.StatusInProgress: 1, domain.StatusCompleted: 2}
	for i := 1; i < len(seen); i++ {
		if order[seen[i]] < order[seen[i-1]] {
			t.Fatalf("status regressed: %v", seen)
		}
	}
	if seen[len(seen)-1] != domain.StatusCompleted {
		t.Fatalf("expected completed at the end, got %v", seen)
	}
}

func TestStartPickingLockSurfaced(t *testing.T) {
	svc, _ := newService(t)

	l, _ := svc.ImportText("sheet", sampleSheet)
	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.StartPicking(l.ID, "P002"); !errors.Is(err, domain.ErrListLocked) {
		t.Fatalf("expected ErrListLocked, got %v", err)
	}
}

func TestBackgroundFlushPersistsTime(t *testing.T) {
	svc, local := newService(t)

	l, _ := svc.ImportText("sheet", sampleSheet)
	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, _ := local.GetList(l.ID)
		if got.AccumulatedSeconds > 0 {
			svc.StopPicking()
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("flush loop never wrote elapsed time to the store")
}

func TestStartPickingResumesStoredTime(t *testing.T) {
	svc, local := newService(t)

	l, _ := svc.ImportText("sheet", sampleSheet)
	if err := local.SetAccumulatedSeconds(l.ID, 300); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	secs, err := svc.Elapsed(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if secs < 300 {
		t.Fatalf("stopwatch must resume at >= stored time, got %d", secs)
	}
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func scanPNG(t *testing.T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 60, 40))); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportScan(t *testing.T) {
	svc, _ := newService(t)
	svc.Recognizer = &fakeRecognizer{text: sampleSheet}

	l, err := svc.ImportScan(context.Background(), "", scanPNG(t))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix([]byte(l.Name), []byte("Scanned List ")) {
		t.Fatalf("expected generated scan name, got %q", l.Name)
	}
}

func TestImportScanRecognizerFailure(t *testing.T) {
	svc, _ := newService(t)
	svc.Recognizer = &fakeRecognizer{err: errors.New("ocr backend down")}

	if _, err := svc.ImportScan(context.Background(), "scan", scanPNG(t)); err == nil {
		t.Fatal("recognizer failure must surface")
	}
}

func TestToggleNeverCompletesUnstartedList(t *testing.T) {
	svc, local := newService(t)

	var fired int
	svc.OnComplete = func(string, int) { fired++ }

	l, err := svc.ImportText("sheet", sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	for pos := 1; pos <= 3; pos++ {
		done, err := svc.ToggleItem(l.ID, pos, true)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			t.Fatalf("toggle at position %d completed a list nobody started", pos)
		}
	}

	got, err := local.GetList(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("unstarted list must stay pending, got %s", got.Status)
	}
	if got.StartedAt != "" {
		t.Fatalf("unstarted list must carry no start stamp, got %q", got.StartedAt)
	}
	if fired != 0 {
		t.Fatalf("completion fired %d times on an unstarted list", fired)
	}

	// Once a picker claims the list, closing out an item completes it
	// the normal way.
	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleItem(l.ID, 1, false); err != nil {
		t.Fatal(err)
	}
	done, err := svc.ToggleItem(l.ID, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("closing the last item of the claimed list must complete it")
	}
	if fired != 1 {
		t.Fatalf("expected exactly one completion signal, got %d", fired)
	}
}

func TestStopPickingWritesThroughBothStores(t *testing.T) {
	db := memdb(t)
	local := store.NewLocal(repos.NewListRepo(db))
	timers := repos.NewTimerRepo(db)
	svc := services.NewLifecycleService(local, timers, nil)
	svc.TickInterval = time.Millisecond
	svc.FlushInterval = time.Hour // only the detach write-through runs

	l, err := svc.ImportText("sheet", sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.StartPicking(l.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if secs, _ := svc.Elapsed(l.ID); secs >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	svc.StopPicking()

	secs, err := timers.LoadSeconds(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, err := local.GetList(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if secs < 2 || got.AccumulatedSeconds != secs {
		t.Fatalf("detach must write the same count everywhere: timer=%d list=%d", secs, got.AccumulatedSeconds)
	}
}
