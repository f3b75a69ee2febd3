package lookup

import "testing"

func TestTake_IsASnapshot(t *testing.T) {
	src := Static{Gender: {"F", "M"}}
	snap := Take(src)

	src[Gender] = append(src[Gender], "X")
	src[Task] = []string{"Applicator"}

	if snap.Options(Gender).Contains("X") {
		t.Error("snapshot followed a later change to the source")
	}
	if !snap.Options(Gender).Contains("M") {
		t.Error("snapshot lost an original value")
	}
	if snap.Options(Task).Len() != 0 {
		t.Errorf("Options(Task).Len() = %d, want 0", snap.Options(Task).Len())
	}
}

func TestTake_DefaultSource(t *testing.T) {
	snap := Take(nil)
	for _, l := range Lists {
		if snap.Options(l).Len() == 0 {
			t.Errorf("default table %s is empty", l)
		}
	}
}
