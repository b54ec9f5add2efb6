package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modportal/portal-api/internal/core/domain"
)

const sample = `
accounts:
  - username: root
    email: root@example.com
    password: change-me
    role: super_admin
  - username: bob
    role: admin
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staff.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	accounts, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Username != "root" || accounts[0].Role != domain.RoleSuperAdmin || accounts[0].Password != "change-me" {
		t.Fatalf("unexpected first account: %+v", accounts[0])
	}
	if accounts[1].Username != "bob" || accounts[1].Role != domain.RoleAdmin || accounts[1].Email != "" {
		t.Fatalf("unexpected second account: %+v", accounts[1])
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Parse([]byte("accounts: [oops")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
