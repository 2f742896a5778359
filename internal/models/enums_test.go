package models

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"owner", "admin", "member"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Errorf("ParseRole(%q) failed: %v", valid, err)
		}
		if string(role) != valid {
			t.Errorf("ParseRole(%q) = %q", valid, role)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("Expected error for unknown role")
	}
}

func TestParseMembershipStatus(t *testing.T) {
	for _, valid := range []string{"pending", "active", "removed"} {
		if _, err := ParseMembershipStatus(valid); err != nil {
			t.Errorf("ParseMembershipStatus(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseMembershipStatus("banned"); err == nil {
		t.Error("Expected error for unknown membership status")
	}
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	if RequestPending.IsTerminal() {
		t.Error("Pending must not be terminal")
	}
	for _, status := range []RequestStatus{RequestApproved, RequestRejected, RequestCancelled} {
		if !status.IsTerminal() {
			t.Errorf("%s must be terminal", status)
		}
	}
	if _, err := ParseRequestStatus("expired"); err == nil {
		t.Error("Expected error for unknown request status")
	}
}
