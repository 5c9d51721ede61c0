package prizepool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk prize file:
//
//	prizes:
//	  - name: First prize
//	    count: 1
//	  - name: Thanks for playing
//	    count: 20
type File struct {
	Prizes []Prize `yaml:"prizes"`
}

// ParseYAML decodes a prize file. Entries are returned unsanitized.
func ParseYAML(b []byte) ([]Prize, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse prize file: %w", err)
	}
	return f.Prizes, nil
}

// LoadYAML reads and decodes the prize file at path.
func LoadYAML(path string) ([]Prize, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prize file: %w", err)
	}
	return ParseYAML(b)
}
