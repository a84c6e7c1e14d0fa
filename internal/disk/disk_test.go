package disk

import (
	"errors"
	"testing"
)

func TestFirstScanReportsAllPresentBays(t *testing.T) {
	scanner := NewFakeScanner(map[int]Info{
		1: {Device: "sda", SizeBytes: 4 << 40, Present: true},
		3: {Device: "sdb", SizeBytes: 8 << 40, Present: true},
	})
	r := NewRegistry(scanner, 5)

	changes, err := r.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d: %v", len(changes), changes)
	}
	if changes[0].Bay != 1 || changes[0].Info.Device != "sda" {
		t.Errorf("change 0: expected bay 1 sda, got %+v", changes[0])
	}
	if changes[1].Bay != 3 || changes[1].Info.Device != "sdb" {
		t.Errorf("change 1: expected bay 3 sdb, got %+v", changes[1])
	}
}

func TestUnchangedScanYieldsEmptyDiff(t *testing.T) {
	state := map[int]Info{
		1: {Device: "sda", SizeBytes: 4 << 40, Present: true},
		2: {Device: "sdb", SizeBytes: 4 << 40, Present: true, TempC: TempPtr(38)},
	}
	r := NewRegistry(NewFakeScanner(state), 5)

	if _, err := r.Scan(); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	// Idempotence: same hardware state, empty diff, both times.
	for i := 0; i < 2; i++ {
		changes, err := r.Scan()
		if err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
		if len(changes) != 0 {
			t.Errorf("scan %d: expected empty diff, got %v", i, changes)
		}
	}
}

func TestRemovedBayIsRepresented(t *testing.T) {
	scanner := NewFakeScanner(
		map[int]Info{
			1: {Device: "sda", Present: true},
			3: {Device: "sdc", Present: true},
		},
		map[int]Info{
			1: {Device: "sda", Present: true},
		},
	)
	r := NewRegistry(scanner, 5)

	r.Scan()
	changes, err := r.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %v", len(changes), changes)
	}
	if changes[0].Bay != 3 || changes[0].Info.Present {
		t.Errorf("expected bay 3 absent, got %+v", changes[0])
	}

	// The removed drive must not linger in the snapshot.
	snap := r.Snapshot()
	if _, ok := snap[3]; ok {
		t.Error("removed bay 3 still present in snapshot")
	}
	if _, ok := snap[1]; !ok {
		t.Error("bay 1 missing from snapshot")
	}
}

func TestRemovalReportedOnlyOnce(t *testing.T) {
	scanner := NewFakeScanner(
		map[int]Info{2: {Device: "sdb", Present: true}},
		map[int]Info{},
	)
	r := NewRegistry(scanner, 5)

	r.Scan()
	changes, _ := r.Scan()
	if len(changes) != 1 {
		t.Fatalf("expected 1 removal, got %v", changes)
	}
	// Scanning the same empty state again is a no-op.
	changes, _ = r.Scan()
	if len(changes) != 0 {
		t.Errorf("expected empty diff, got %v", changes)
	}
}

func TestMetadataChangeIsReported(t *testing.T) {
	scanner := NewFakeScanner(
		map[int]Info{1: {Device: "sda", Present: true, TempC: TempPtr(35)}},
		map[int]Info{1: {Device: "sda", Present: true, TempC: TempPtr(41)}},
	)
	r := NewRegistry(scanner, 5)

	r.Scan()
	changes, _ := r.Scan()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %v", changes)
	}
	if got := changes[0].Info.TempC; got == nil || *got != 41 {
		t.Errorf("expected temp 41, got %v", got)
	}
}

func TestScanErrorPropagates(t *testing.T) {
	scanner := NewFakeScanner(map[int]Info{1: {Device: "sda", Present: true}})
	r := NewRegistry(scanner, 5)
	r.Scan()

	scanner.ScanError = errors.New("enumeration failed")
	if _, err := r.Scan(); err == nil {
		t.Fatal("expected error")
	}

	// A failed scan must not wipe known state.
	if _, ok := r.Snapshot()[1]; !ok {
		t.Error("known state lost after failed scan")
	}
}

func TestDegradedBayStaysPresent(t *testing.T) {
	// A bay whose metadata could not be read is still present.
	scanner := NewFakeScanner(map[int]Info{
		4: {Device: "sdd", Present: true}, // size 0, temp nil: unknown
	})
	r := NewRegistry(scanner, 5)

	changes, err := r.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 || !changes[0].Info.Present {
		t.Fatalf("expected present bay 4, got %v", changes)
	}
	if changes[0].Info.SizeBytes != 0 || changes[0].Info.TempC != nil {
		t.Errorf("expected unknown metadata, got %+v", changes[0].Info)
	}
}
