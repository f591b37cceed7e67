package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/contacts"
)

// contactsFile is the YAML layout of a contact directory
type contactsFile struct {
	Modules []contacts.Group `yaml:"modules"`
}

// LoadContacts reads escalation contacts from a .yaml file or from text
// extracted out of the contacts document (.txt)
func LoadContacts(path string) ([]contacts.Group, error) {
	if err := common.ValidateSourcePath(path, ".yaml", ".yml", ".txt"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - contacts path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return contacts.ParseText(string(data)), nil
	}

	var file contactsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse contacts YAML: %w", err)
	}
	return file.Modules, nil
}
