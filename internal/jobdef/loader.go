package jobdef

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads a YAML process-list document from the given path.
func Load(path string) (*Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read job definition file: %w", err)
	}

	doc := &Document{}
	if err := v.Unmarshal(doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job definition: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// LoadFromViper builds a Document from an externally configured Viper
// instance, mirroring the teacher's LoadFromViper test seam.
func LoadFromViper(v *viper.Viper) (*Document, error) {
	doc := &Document{}
	if err := v.Unmarshal(doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job definition: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
