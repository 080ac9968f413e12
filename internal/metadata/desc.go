package metadata

import (
	"fmt"

	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/utils"
)

type descState int

const (
	// Between blocks, expecting a %FIELD% line
	awaitMarker descState = iota
	// Marker seen, its first value line is required
	awaitValue
	// At least one value stored; a blank line ends the block
	awaitBlankOrNextValue
)

// DescParser parses the %FIELD% block format of repository databases.
//
// A block is a marker line, one or more value lines and a blank line.
// Scalar fields take exactly one value. List fields take one value per line.
type DescParser struct {
	state descState
	field models.Field
	last  models.Field
}

// NewDescParser returns a parser in its initial state
func NewDescParser() *DescParser {
	return &DescParser{}
}

// LastField returns the field of the most recently recognized marker
func (p *DescParser) LastField() models.Field {
	return p.last
}

// Feed implements Parser
func (p *DescParser) Feed(pkg *models.Package, chunk []byte) (int, error) {
	return feedLines(chunk, func(line []byte) error {
		if err := p.line(pkg, line); err != nil {
			return models.ParseError(pkg.Name, err)
		}
		return nil
	})
}

// Finish implements Parser. A marker still waiting for its value at the
// end of input is malformed.
func (p *DescParser) Finish(pkg *models.Package, rest []byte) error {
	if len(utils.TrimBytes(rest)) > 0 {
		if err := p.line(pkg, rest); err != nil {
			return models.ParseError(pkg.Name, err)
		}
	}

	if p.state == awaitValue {
		return models.ParseError(pkg.Name,
			fmt.Errorf("%%%s%% has no value: %w", p.field, models.ErrMalformedSection))
	}
	return nil
}

func (p *DescParser) line(pkg *models.Package, raw []byte) error {
	line := utils.TrimBytes(raw)

	switch p.state {
	case awaitMarker:
		// Tolerate runs of blank lines between blocks
		if len(line) == 0 {
			return nil
		}
		if line[0] != '%' {
			return fmt.Errorf("value %q outside of a section: %w", line, models.ErrMalformedSection)
		}
		return p.marker(pkg, line)

	case awaitValue:
		if len(line) == 0 {
			return fmt.Errorf("%%%s%% has no value: %w", p.field, models.ErrMalformedSection)
		}
		p.state = awaitBlankOrNextValue
		return pkg.Set(p.field, string(line))

	case awaitBlankOrNextValue:
		if len(line) == 0 {
			p.state = awaitMarker
			return nil
		}
		// List values run until the blank line, whatever they start with
		if p.field.IsList() {
			return pkg.Set(p.field, string(line))
		}
		if line[0] == '%' {
			return p.marker(pkg, line)
		}
		return fmt.Errorf("%%%s%% takes a single value: %w", p.field, models.ErrDuplicateField)
	}

	return nil
}

func (p *DescParser) marker(pkg *models.Package, line []byte) error {
	if len(line) < 3 || line[len(line)-1] != '%' {
		return fmt.Errorf("unterminated marker %q: %w", line, models.ErrMalformedSection)
	}

	name := string(line[1 : len(line)-1])
	f, ok := models.FieldByMarker(name)
	if !ok {
		return fmt.Errorf("%%%s%%: %w", name, models.ErrUnknownField)
	}

	if !f.IsList() && !f.IsIdentity() && pkg.Has(f) {
		return fmt.Errorf("%%%s%%: %w", f, models.ErrDuplicateField)
	}

	p.field = f
	p.last = f
	p.state = awaitValue
	return nil
}
