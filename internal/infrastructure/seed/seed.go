package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modportal/portal-api/internal/core/service"
)

type accountsFile struct {
	Accounts []service.PrivilegedAccount `yaml:"accounts"`
}

// LoadFile reads the staff accounts listed in a YAML seed file:
//
//	accounts:
//	  - username: root
//	    email: root@example.com
//	    password: change-me
//	    role: super_admin
func LoadFile(path string) ([]service.PrivilegedAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]service.PrivilegedAccount, error) {
	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f.Accounts, nil
}
