package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"graphtools/internal/domain"
	"graphtools/internal/mmap"
	"graphtools/internal/scanner"
)

// Kind groups formats by what they hold
type Kind string

const (
	KindGraph      Kind = "graph"
	KindAssignment Kind = "assignment"
	KindImage      Kind = "image"
	KindBinary     Kind = "binary"
)

// Descriptor describes one supported format
type Descriptor struct {
	Name       string
	Extensions []string
	// Comment is the line comment marker, 0 if the format has none
	Comment byte
	Kind    Kind
	// Decoder is set for graph formats that stream into a Visitor
	Decoder Decoder
}

var registry = mustRegistry(
	Descriptor{Name: "metis", Extensions: []string{".graph", ".metis"}, Comment: metisComment, Kind: KindGraph, Decoder: MetisDecoder{}},
	Descriptor{Name: "edgelist", Extensions: []string{".edgelist", ".el"}, Comment: edgeListComment, Kind: KindGraph},
	Descriptor{Name: "obj", Extensions: []string{".obj"}, Comment: objComment, Kind: KindGraph, Decoder: OBJDecoder{}},
	Descriptor{Name: "stp", Extensions: []string{".stp"}, Kind: KindGraph, Decoder: STPDecoder{}},
	Descriptor{Name: "gr", Extensions: []string{".gr"}, Comment: grComment, Kind: KindGraph, Decoder: GRDecoder{}},
	Descriptor{Name: "partition", Extensions: []string{".part", ".partition", ".clustering"}, Kind: KindAssignment},
	Descriptor{Name: "psb", Extensions: []string{".psb"}, Kind: KindImage},
	Descriptor{Name: "binary", Extensions: []string{".bgf"}, Kind: KindBinary},
	Descriptor{Name: "xtrapulp", Extensions: []string{".xtrapulp"}, Kind: KindBinary},
)

func newRegistry(descs ...Descriptor) (map[string]Descriptor, error) {
	reg := make(map[string]Descriptor, len(descs))
	exts := make(map[string]string)
	for _, d := range descs {
		if _, ok := reg[d.Name]; ok {
			return nil, fmt.Errorf("format %q registered twice", d.Name)
		}
		for _, ext := range d.Extensions {
			if other, ok := exts[ext]; ok {
				return nil, fmt.Errorf("extension %q claimed by %q and %q", ext, other, d.Name)
			}
			exts[ext] = d.Name
		}
		reg[d.Name] = d
	}
	return reg, nil
}

func mustRegistry(descs ...Descriptor) map[string]Descriptor {
	reg, err := newRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns the descriptor of a format by name
func Lookup(name string) (Descriptor, error) {
	d, ok := registry[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown format %q: %w", name, domain.ErrUsage)
	}
	return d, nil
}

// ByExtension returns the descriptor whose extension matches path
func ByExtension(path string) (Descriptor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, d := range registry {
		if slices.Contains(d.Extensions, ext) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("no format for extension %q: %w", ext, domain.ErrUsage)
}

// Formats returns all descriptors sorted by name
func Formats() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// decodeFile maps path for the duration of fn and attaches the path to
// parse errors
func decodeFile(path, format string, fn func(s *scanner.Scanner) error) error {
	f, err := mmap.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(scanner.New(f.Bytes())); err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return fmt.Errorf("decode %s: %w", format, err)
	}
	return nil
}

// malformedHeader reclassifies a scanner failure inside a header line
func malformedHeader(err error) error {
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		detail := pe.Err.Error()
		if pe.Detail != "" {
			detail += ": " + pe.Detail
		}
		return &domain.ParseError{Offset: pe.Offset, Err: domain.ErrMalformedHeader, Detail: detail}
	}
	return fmt.Errorf("%w: %v", domain.ErrMalformedHeader, err)
}

// scanNodeID reads a 1-based node id and returns it 0-based
func scanNodeID(s *scanner.Scanner) (domain.ID, error) {
	start := s.Pos()
	v, err := s.ScanUint(64)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, &domain.ParseError{Offset: start, Err: domain.ErrUnexpectedToken, Detail: "node ids are 1-based, found 0"}
	}
	return v - 1, nil
}

// expectEnd accepts only blank lines and comments up to the end of input
func expectEnd(s *scanner.Scanner, comment byte) error {
	for {
		s.SkipSpaces()
		switch {
		case !s.Valid():
			return nil
		case s.AtEOL(), comment != 0 && s.Is(comment):
			s.SkipLine()
		default:
			return s.Errorf(domain.ErrUnexpectedToken, "unexpected content after the last record")
		}
	}
}
