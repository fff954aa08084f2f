// Package compose checks emitted documents against the compose
// specification, the in-process equivalent of running
// `docker compose config` on the result. Validation is advisory: it never
// mutates a document and runs after the merge engine has produced one.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when the compose loader rejects a document.
var ErrInvalidDocument = errors.New("document failed compose validation")

// ValidateDocument runs the YAML through the compose-go loader with
// validation enabled. Interpolation is skipped: documents may legitimately
// carry ${VAR} placeholders that only resolve at deploy time.
func ValidateDocument(yamlContent []byte) error {
	if len(strings.TrimSpace(string(yamlContent))) == 0 {
		return nil
	}

	var dict map[string]interface{}
	if err := yaml.Unmarshal(yamlContent, &dict); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if dict == nil {
		return nil
	}

	_, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: yamlContent,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("compose-manager", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = true
		// Paths stay relative to the compose file; nothing to resolve in-memory.
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
