package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/conduit-lang/entitykit/internal/canon"
	"github.com/conduit-lang/entitykit/internal/catalog"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

// stdinPath names standard input as a document path
const stdinPath = "-"

// document is one input file read for a command
type document struct {
	path   string
	format wire.Format
	data   []byte
}

// readDocument reads path, choosing the format from its extension. Standard input is
// read as JSON.
func readDocument(stdin io.Reader, path string) (*document, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return &document{path: path, format: formatFor(path), data: data}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &document{path: path, format: formatFor(path), data: data}, nil
}

// formatFor picks the document format of path. Standard input is JSON.
func formatFor(path string) wire.Format {
	if path == stdinPath {
		return wire.FormatJSON
	}
	return wire.FormatForPath(path)
}

// dictionary parses the document into an untyped dictionary
func (d *document) dictionary() (wire.Dictionary, error) {
	var out map[string]any
	switch d.format {
	case wire.FormatYAML:
		if err := yaml.Unmarshal(d.data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", d.path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(d.data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", d.path, err)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("%s: %w", d.path, wire.ErrNotAnObject)
	}
	return wire.Dictionary(out), nil
}

// container opens the document as a strict keyed container
func (d *document) container() (wire.KeyedContainer, error) {
	c, err := wire.NewContainer(d.format, d.data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", d.path, err)
	}
	return c, nil
}

// readDictionary reads path and parses it into an untyped dictionary
func readDictionary(stdin io.Reader, path string) (wire.Dictionary, error) {
	doc, err := readDocument(stdin, path)
	if err != nil {
		return nil, err
	}
	return doc.dictionary()
}

// strictDecode reads path and strictly decodes it into a fresh entity of kind k
func (a *app) strictDecode(stdin io.Reader, k catalog.Kind, path string) (catalog.Item, error) {
	doc, err := readDocument(stdin, path)
	if err != nil {
		return nil, err
	}
	c, err := doc.container()
	if err != nil {
		return nil, err
	}
	e := k.New(a.registry)
	if err := e.StrictDecode(c, a.registry); err != nil {
		return nil, err
	}
	return e, nil
}

// writeEntity renders e in the configured output format
func (a *app) writeEntity(w io.Writer, e catalog.Item) error {
	encoded := e.Encode()

	var data []byte
	var err error
	switch a.cfg.Output.Format {
	case "yaml":
		data, err = yaml.Marshal(map[string]any(encoded))
	default:
		data, err = canon.MarshalIndent(encoded, "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", e.EntityID(), err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	if a.dump {
		dumper := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		dumper.Fdump(w, e)
	}
	return nil
}

// errStrictDecode marks a strict decode failure already reported to the user
var errStrictDecode = errors.New("strict decode failed")
