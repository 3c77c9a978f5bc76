package dataset

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/sakemonkey/sakemonkey/internal/brew"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

//go:embed schema.cue
var schemaSource []byte

// Dataset is the content of an import file.
type Dataset struct {
	Ingredients  []brew.Ingredient      `yaml:"ingredients"`
	Starters     []brew.Starter         `yaml:"starters"`
	Recipes      []tracker.RecipeInput  `yaml:"recipes"`
	PublishNotes []tracker.PublishInput `yaml:"publish_notes"`
}

// Len is the number of records in d.
func (d Dataset) Len() int {
	return len(d.Ingredients) + len(d.Starters) + len(d.Recipes) + len(d.PublishNotes)
}

// SchemaError is a dataset that does not match the schema.
type SchemaError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// LoadFile reads and validates the dataset at path.
func LoadFile(path string) (Dataset, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, []error{fmt.Errorf("read dataset: %w", err)}
	}
	return Load(path, data)
}

// Load validates data against the dataset schema and decodes it. filename
// is used in error positions. Every schema violation is returned.
func Load(filename string, data []byte) (Dataset, []error) {
	if errs := validate(filename, data); len(errs) > 0 {
		return Dataset{}, errs
	}

	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, []error{fmt.Errorf("decode %s: %w", filename, err)}
	}
	return ds, nil
}

func validate(filename string, data []byte) []error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []error{fmt.Errorf("compile dataset schema: %w", err)}
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return []error{fmt.Errorf("parse %s: %w", filename, err)}
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return convertErrors(err, filename)
	}

	unified := schema.LookupPath(cue.ParsePath("#Dataset")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return convertErrors(err, filename)
	}
	return nil
}

// convertErrors splits a CUE error into one SchemaError per problem,
// preferring the position inside the dataset file over the schema.
func convertErrors(err error, filename string) []error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return []error{err}
	}
	out := make([]error, 0, len(list))
	for _, e := range list {
		se := &SchemaError{Path: strings.Join(e.Path(), "."), Message: e.Error()}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				se.Pos = pos
				break
			}
		}
		out = append(out, se)
	}
	return out
}
