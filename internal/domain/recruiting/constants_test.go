package recruiting

import "testing"

func TestValidApplicationStatus(t *testing.T) {
	for _, status := range []string{ApplicationPending, ApplicationAccepted, ApplicationRejected} {
		if !ValidApplicationStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidApplicationStatus("withdrawn") {
		t.Fatal("expected unknown status to be invalid")
	}
}
