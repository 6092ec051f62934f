package domain

import (
	"encoding/json"
	"testing"
)

func TestSession_HasPermission_SingleEqualsOneElementList(t *testing.T) {
	sess := &Session{Token: "t", Permissions: NewPermissionSet("view_companies")}

	for _, id := range []string{"view_companies", "view_users", ""} {
		single := sess.HasPermission(id)
		list := sess.HasPermission([]string{id}...)
		if single != list {
			t.Fatalf("HasPermission(%q) = %v, one-element list = %v", id, single, list)
		}
	}
}

func TestSession_AnyVersusAll(t *testing.T) {
	sess := &Session{Token: "t", Permissions: NewPermissionSet("view_companies")}
	required := []string{"view_companies", "view_company_employee"}

	if !sess.HasPermission(required...) {
		t.Errorf("expected OR check to pass with one of %v", required)
	}
	if sess.HasAllPermissions(required...) {
		t.Errorf("expected AND check to fail without view_company_employee")
	}
}

func TestSession_EmptyRequirementAlwaysSatisfied(t *testing.T) {
	sess := &Session{Token: "t"}
	if !sess.HasAnyPermission() || !sess.HasAllPermissions() {
		t.Fatalf("empty requirement must be satisfied by any session")
	}

	var none *Session
	if !none.HasAllPermissions() {
		t.Fatalf("empty requirement must be satisfied even without a session")
	}
	if none.HasPermission("view_companies") {
		t.Fatalf("nil session must not hold permissions")
	}
}

func TestPermissionSet_JSON(t *testing.T) {
	set := NewPermissionSet("b", "a", "a", "")
	if set.Len() != 2 {
		t.Fatalf("expected 2 unique ids, got %d", set.Len())
	}

	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `["a","b"]` {
		t.Fatalf("unexpected encoding: %s", raw)
	}

	var decoded PermissionSet
	if err := json.Unmarshal([]byte(`["x","y"]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Has("x") || !decoded.Has("y") || decoded.Has("a") {
		t.Fatalf("unexpected set: %v", decoded.List())
	}
}

func TestLoginLocation_PreservesTarget(t *testing.T) {
	got := LoginLocation("/login", "/companies/42/employees?tab=active")
	want := "/login?next=%2Fcompanies%2F42%2Femployees%3Ftab%3Dactive"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if LoginLocation("/login", "") != "/login" {
		t.Fatalf("empty target should not add next")
	}
}
