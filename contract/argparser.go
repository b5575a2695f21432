package contract

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var errEmptyArgument = errors.New("empty argument")

// ParseArguments parses command line constructor arguments.
// Arrays and tuples are written as [a, b, [c, d]], strings may be quoted
// and anything else is kept as a literal string (true/false become bools).
func ParseArguments(raws []string) ([]interface{}, error) {
	args := make([]interface{}, len(raws))
	parser := &ArgParser{}

	for idx, raw := range raws {
		arg, err := parser.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("argument #%d (%s): %w", idx, raw, err)
		}

		args[idx] = arg
	}

	return args, nil
}

// ArgParser is a small recursive descent parser for a single argument
type ArgParser struct {
	*strings.Reader
}

// Parse parses one input argument
func (p *ArgParser) Parse(input string) (interface{}, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errEmptyArgument
	}

	p.Reader = strings.NewReader(input)

	arg, err := p.parseArgument()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpaces(); err != nil {
		return nil, err
	}

	if p.Len() != 0 {
		rest := make([]byte, p.Len())
		_, _ = p.Read(rest)

		return nil, fmt.Errorf("unexpected trailing input '%s'", rest)
	}

	return arg, nil
}

// peek reads one character without moving the position
func (p *ArgParser) peek() (rune, error) {
	next, _, err := p.ReadRune()
	if err != nil {
		return 0, err
	}

	if err := p.UnreadRune(); err != nil {
		return 0, err
	}

	return next, nil
}

func (p *ArgParser) skipSpaces() error {
	for {
		next, err := p.peek()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		if next != ' ' && next != '\t' {
			return nil
		}

		if _, _, err := p.ReadRune(); err != nil {
			return err
		}
	}
}

func (p *ArgParser) parseArgument() (interface{}, error) {
	if err := p.skipSpaces(); err != nil {
		return nil, err
	}

	first, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch first {
	case '"', '\'':
		return p.parseString()
	case '[':
		return p.parseArray()
	case ',', ']':
		return nil, fmt.Errorf("reached unexpected character: '%c'", first)
	default:
		return p.parseLiteral()
	}
}

func (p *ArgParser) parseString() (string, error) {
	opening, _, err := p.ReadRune()
	if err != nil {
		return "", err
	}

	var (
		sb      strings.Builder
		escaped bool
	)

	for {
		next, _, err := p.ReadRune()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("unterminated string, missing closing %c", opening)
		} else if err != nil {
			return "", err
		}

		switch {
		case escaped:
			sb.WriteRune(next)

			escaped = false
		case next == '\\':
			escaped = true
		case next == opening:
			return sb.String(), nil
		default:
			sb.WriteRune(next)
		}
	}
}

func (p *ArgParser) parseArray() ([]interface{}, error) {
	// opening bracket
	if _, _, err := p.ReadRune(); err != nil {
		return nil, err
	}

	elems := []interface{}{}
	expectElem := true

	for {
		if err := p.skipSpaces(); err != nil {
			return nil, err
		}

		next, err := p.peek()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unterminated array, missing closing bracket")
		} else if err != nil {
			return nil, err
		}

		switch {
		case next == ']':
			if expectElem && len(elems) > 0 {
				return nil, errors.New("invalid grammar, trailing comma in array")
			}

			_, _, err = p.ReadRune()

			return elems, err
		case next == ',':
			if expectElem {
				return nil, errors.New("invalid grammar, unexpected comma in array")
			}

			if _, _, err := p.ReadRune(); err != nil {
				return nil, err
			}

			expectElem = true
		case !expectElem:
			return nil, fmt.Errorf("invalid grammar, missing comma before '%c'", next)
		default:
			elem, err := p.parseArgument()
			if err != nil {
				return nil, err
			}

			elems = append(elems, elem)
			expectElem = false
		}
	}
}

// parseLiteral parses a bare value such as 123, 0xA0 or true
func (p *ArgParser) parseLiteral() (interface{}, error) {
	var sb strings.Builder

	for {
		next, err := p.peek()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		if next == ',' || next == ']' {
			break
		}

		if next == '[' {
			return nil, errors.New("invalid grammar, reached opening bracket in literal")
		}

		if _, _, err := p.ReadRune(); err != nil {
			return nil, err
		}

		sb.WriteRune(next)
	}

	switch literal := strings.TrimSpace(sb.String()); literal {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return literal, nil
	}
}
