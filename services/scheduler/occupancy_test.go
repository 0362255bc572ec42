package scheduler

import "testing"

func TestOccupancyCommitAndPredicates(t *testing.T) {
	o := NewOccupancy()
	token := Token("Lunes", "07:40")

	o.Commit(token, 1, 10, 100)

	if !o.GroupBusy(token, 1) {
		t.Fatalf("group should be busy at its own slot")
	}
	if !o.TeacherBusy(token, 10) {
		t.Fatalf("teacher should be busy at the committed slot")
	}
	if !o.RoomBusy(token, 100) {
		t.Fatalf("room should be busy at the committed slot")
	}

	if o.GroupBusy(token, 2) || o.TeacherBusy(token, 11) || o.RoomBusy(token, 101) {
		t.Fatalf("unrelated group/teacher/room reported busy")
	}

	other := Token("Lunes", "08:20")
	if o.GroupBusy(other, 1) || o.TeacherBusy(other, 10) || o.RoomBusy(other, 100) {
		t.Fatalf("different slot reported busy")
	}
}

func TestOccupancyZeroMeansNone(t *testing.T) {
	o := NewOccupancy()
	token := Token("Martes", "07:40")

	// A session with no teacher and no room never blocks others
	o.Commit(token, 1, 0, 0)

	if o.TeacherBusy(token, 0) {
		t.Fatalf("teacher id 0 must never be busy")
	}
	if o.RoomBusy(token, 0) {
		t.Fatalf("room id 0 must never be busy")
	}
}

func TestOccupancyRelease(t *testing.T) {
	o := NewOccupancy()
	token := Token("Viernes", "10:20")

	u1 := o.Commit(token, 1, 10, 100)
	o.Commit(token, 2, 11, 101)

	o.Release(u1)

	if o.GroupBusy(token, 1) || o.TeacherBusy(token, 10) || o.RoomBusy(token, 100) {
		t.Fatalf("released entry still reported busy")
	}
	if !o.GroupBusy(token, 2) || !o.TeacherBusy(token, 11) || !o.RoomBusy(token, 101) {
		t.Fatalf("release removed the wrong entry")
	}
}

func TestOccupancyReleaseUndoCycle(t *testing.T) {
	o := NewOccupancy()
	token := Token("Jueves", "13:40")

	// Repeated try/undo on the same slot must leave it clean
	for i := 0; i < 5; i++ {
		u := o.Commit(token, 1, 10, 100)
		o.Release(u)
	}

	if o.GroupBusy(token, 1) || o.TeacherBusy(token, 10) || o.RoomBusy(token, 100) {
		t.Fatalf("slot not clean after commit/release cycles")
	}
}
