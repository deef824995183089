package interpreter

import (
	sterrors "errors"
	"fmt"
	"path/filepath"

	"github.com/oarkflow/spl/pkg/source"
)

// LoadUnits lexes and parses entry and every file it imports, transitively.
// Import paths are relative to the directory of entry; a path already loaded is skipped.
// Unit indexes in positions follow the order of Program.Units.
func LoadUnits(entry string, reader source.Reader) (*Program, error) {
	base := filepath.Dir(entry)
	program := &Program{}
	seen := map[string]bool{filepath.Clean(entry): true}
	queue := []string{filepath.Clean(entry)}

	for unit := 0; unit < len(queue); unit++ {
		path := queue[unit]
		text, err := reader.Read(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		imports, funcs, err := ParseSource(text, unit)
		if err != nil {
			var serr *SyntaxError
			if sterrors.As(err, &serr) {
				serr.File = path
			}
			return nil, err
		}
		program.Units = append(program.Units, path)
		program.Functions = append(program.Functions, funcs...)
		for _, imp := range imports {
			resolved := filepath.Clean(filepath.Join(base, imp))
			if seen[resolved] {
				continue
			}
			seen[resolved] = true
			queue = append(queue, resolved)
			program.Imports = append(program.Imports, resolved)
		}
	}
	return program, nil
}

// LoadSource treats text as the entry unit named name. Imports are resolved through reader,
// which may be nil when the source has none.
func LoadSource(name, text string, reader source.Reader) (*Program, error) {
	return LoadUnits(name, &source.MemoryReader{
		Files:    map[string]string{filepath.Clean(name): text},
		Fallback: reader,
	})
}

// ParseSource lexes and parses a single unit.
func ParseSource(text string, unit int) ([]string, []*FunctionDecl, error) {
	tokens, err := Tokenize(text, unit)
	if err != nil {
		return nil, nil, err
	}
	return Parse(tokens)
}

// UnitName returns the path of the unit a position belongs to.
func (p *Program) UnitName(pos Position) string {
	if pos.Unit >= 0 && pos.Unit < len(p.Units) {
		return p.Units[pos.Unit]
	}
	return fmt.Sprintf("unit %d", pos.Unit)
}

// Diagnostic renders err as "<unit path>:<line>:<column>: <message>" when it carries a position.
func (p *Program) Diagnostic(err error) string {
	var rerr *RuntimeError
	if sterrors.As(err, &rerr) && rerr.Pos.Line != 0 {
		return fmt.Sprintf("%s:%d:%d: %s", p.UnitName(rerr.Pos), rerr.Pos.Line, rerr.Pos.Column, rerr.Message())
	}
	return err.Error()
}
