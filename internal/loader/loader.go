// Package loader reads storage layouts from compiler output files.
//
// Three document shapes are accepted, in JSON or YAML:
//
//	{"storage": [...], "types": {...}}                       bare layout
//	{"storageLayout": {...}, "contractName": "..."}          artifact or metadata wrapper
//	{"contracts": {"<file>": {"<name>": {"storageLayout": ...}}}}  standard JSON output
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// Format is the encoding of a layout document.
type Format int

// Supported formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported layout file format")
	ErrNoLayout          = errors.New("no storage layout found")
	ErrAmbiguousContract = errors.New("several contracts carry a storage layout")
	ErrContractNotFound  = errors.New("contract not found")
)

// Options controls contract selection in standard JSON output.
type Options struct {
	// Contract picks a contract by "<name>" or "<file>:<name>".
	// Empty selects the only contract with a layout.
	Contract string
}

// Result is a decoded layout and what is known about its origin.
type Result struct {
	Layout   types.StorageLayout
	Contract string // Contract name, or "" when the document does not say.
	Path     string // Source file, or "" for Decode.
}

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q (want .json, .yaml or .yml)", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Load reads and decodes the layout file at path.
func Load(path string, opts Options) (*Result, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res, err := Decode(data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path

	log.WithFields(log.Fields{
		"path":     path,
		"contract": res.Contract,
		"items":    len(res.Layout.Storage),
		"types":    len(res.Layout.Types),
	}).Debug("loaded storage layout")
	return res, nil
}

// DecodeReader decodes a layout document read from r.
func DecodeReader(r io.Reader, format Format, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	return Decode(data, format, opts)
}

// document covers all accepted shapes. Pointer fields distinguish an absent
// key from an empty value.
type document struct {
	Storage       *[]types.StorageItem           `json:"storage" yaml:"storage"`
	Types         types.TypeDictionary           `json:"types" yaml:"types"`
	StorageLayout *types.StorageLayout           `json:"storageLayout" yaml:"storageLayout"`
	ContractName  string                         `json:"contractName" yaml:"contractName"`
	Contracts     map[string]map[string]contract `json:"contracts" yaml:"contracts"`
}

// contract is one entry of standard JSON output. Other output keys are ignored.
type contract struct {
	StorageLayout *types.StorageLayout `json:"storageLayout" yaml:"storageLayout"`
}

// Decode decodes a layout document.
func Decode(data []byte, format Format, opts Options) (*Result, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
	case FormatYAML:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("decoding YAML: %w", err)
			}
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	switch {
	case doc.Storage != nil:
		layout := types.StorageLayout{Storage: *doc.Storage, Types: doc.Types}
		return &Result{Layout: layout, Contract: firstNonEmpty(doc.ContractName, inferContract(layout))}, nil
	case doc.StorageLayout != nil:
		layout := *doc.StorageLayout
		return &Result{Layout: layout, Contract: firstNonEmpty(doc.ContractName, inferContract(layout))}, nil
	case len(doc.Contracts) > 0:
		return selectContract(doc.Contracts, opts.Contract)
	default:
		return nil, ErrNoLayout
	}
}

// candidate is a contract in standard JSON output that carries a layout.
type candidate struct {
	file   string
	name   string
	layout types.StorageLayout
}

func (c candidate) qualified() string {
	return c.file + ":" + c.name
}

func selectContract(contracts map[string]map[string]contract, want string) (*Result, error) {
	var all []candidate
	for file, byName := range contracts {
		for name, c := range byName {
			if c.StorageLayout == nil {
				continue
			}
			all = append(all, candidate{file: file, name: name, layout: *c.StorageLayout})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].qualified() < all[j].qualified() })

	matches := all
	if want != "" {
		matches = nil
		for _, c := range all {
			if c.name == want || c.qualified() == want {
				matches = append(matches, c)
			}
		}
	}

	switch {
	case len(matches) == 1:
		return &Result{Layout: matches[0].layout, Contract: matches[0].name}, nil
	case len(all) == 0:
		return nil, ErrNoLayout
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %q (have %s)", ErrContractNotFound, want, qualifiedNames(all))
	default:
		return nil, fmt.Errorf("%w: %s (pick one with --contract)", ErrAmbiguousContract, qualifiedNames(matches))
	}
}

func qualifiedNames(cs []candidate) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.qualified()
	}
	return strings.Join(names, ", ")
}

// inferContract names the contract that declares the last storage variable.
// Inherited variables come first in a layout, so this is the most derived
// contract that declares state. The "<file>:" prefix is dropped.
func inferContract(layout types.StorageLayout) string {
	if len(layout.Storage) == 0 {
		return ""
	}
	name := layout.Storage[len(layout.Storage)-1].Contract
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
