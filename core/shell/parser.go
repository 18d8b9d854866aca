package shell

import "fmt"

// parser is a recursive-descent parser with one token of lookahead, driven
// directly by the Scanner.
type parser struct {
	scanner *Scanner
	current Token
}

// Parse parses one line of command text into a Pipeline. A line that is
// blank (or only whitespace) yields a nil Pipeline and no error. Scan and
// parse errors are line scoped; the caller reports them and moves on.
func Parse(text string) (*Pipeline, error) {
	p := &parser{scanner: NewScanner(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.current.Tag {
	case EndOfCommand:
		return nil, nil
	case Word:
		pipeline, err := p.pipeline()
		if err != nil {
			return nil, err
		}
		if p.current.Tag != EndOfCommand {
			return nil, fmt.Errorf("expected end of command but got `%s`", p.current.Lexeme)
		}
		return pipeline, nil
	default:
		return nil, fmt.Errorf("unexpected token `%s`", p.current.Lexeme)
	}
}

func (p *parser) advance() error {
	tok, err := p.scanner.Next()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// expectWord consumes a Word token and returns its lexeme.
func (p *parser) expectWord() (string, error) {
	if p.current.Tag != Word {
		return "", fmt.Errorf("expected word but got `%s`", p.current.Lexeme)
	}
	lexeme := p.current.Lexeme
	if err := p.advance(); err != nil {
		return "", err
	}
	return lexeme, nil
}

// pipeline := command ('|' command)*
func (p *parser) pipeline() (*Pipeline, error) {
	pipeline := &Pipeline{}

	for {
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)

		if p.current.Tag != Pipe {
			return pipeline, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Tag != Word {
			return nil, fmt.Errorf("expected command after `|` but got `%s`", p.current.Lexeme)
		}
	}
}

// command := builtin_call | external_call
func (p *parser) command() (Command, error) {
	builtin, err := p.builtin()
	if err != nil {
		return nil, err
	}

	if builtin != nil {
		redirect, err := p.redirect()
		if err != nil {
			return nil, err
		}
		return &BuiltinCommand{Builtin: builtin, Redirect: redirect}, nil
	}

	args, err := p.collectArgs()
	if err != nil {
		return nil, err
	}
	redirect, err := p.redirect()
	if err != nil {
		return nil, err
	}
	return &ExternalCommand{Args: args, Redirect: redirect}, nil
}

// builtin dispatches on the leading word. It returns (nil, nil) when the
// word is not a built-in name, leaving the tokens for external parsing.
func (p *parser) builtin() (Builtin, error) {
	switch p.current.Lexeme {
	case "cd":
		return p.cd()
	case "echo":
		return p.echo()
	case "exit":
		return p.exit()
	case "history":
		return p.history()
	case "pwd":
		return p.pwd()
	case "type":
		return p.typeBuiltin()
	default:
		return nil, nil
	}
}

// cd requires exactly one word, the target path.
func (p *parser) cd() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	path, err := p.expectWord()
	if err != nil {
		return nil, err
	}
	return Cd{Path: path}, nil
}

// echo takes any run of word and integer tokens verbatim.
func (p *parser) echo() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.collectArgs()
	if err != nil {
		return nil, err
	}
	return Echo{Args: args}, nil
}

// exit takes an optional integer exit code, defaulting to 0.
func (p *parser) exit() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	code := 0
	if p.current.Tag == Integer {
		code = int(p.current.Value)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return Exit{Code: code}, nil
}

// history takes an optional integer display limit.
func (p *parser) history() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	var limit *int
	if p.current.Tag == Integer {
		n := int(p.current.Value)
		limit = &n
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return History{Limit: limit}, nil
}

func (p *parser) pwd() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return Pwd{}, nil
}

// typeBuiltin requires exactly one word, the name to look up.
func (p *parser) typeBuiltin() (Builtin, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.expectWord()
	if err != nil {
		return nil, err
	}
	return Type{Target: target}, nil
}

// redirect parses an optional trailing redirect clause. Only descriptors 1
// and 2 are recognized; anything else is rejected here rather than being
// silently ignored.
func (p *parser) redirect() (*Redirect, error) {
	var stream Stream
	var appendFlag bool

	switch p.current.Tag {
	case RedirectOut:
		stream, appendFlag = Stdout, false
	case RedirectOutAppend:
		stream, appendFlag = Stdout, true
	case RedirectOutFD, RedirectOutAppendFD:
		appendFlag = p.current.Tag == RedirectOutAppendFD
		switch p.current.Value {
		case 1:
			stream = Stdout
		case 2:
			stream = Stderr
		default:
			return nil, fmt.Errorf("unrecognized file descriptor %d", p.current.Value)
		}
	default:
		return nil, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	filename, err := p.expectWord()
	if err != nil {
		return nil, err
	}

	return &Redirect{Stream: stream, Filename: filename, Append: appendFlag}, nil
}

// collectArgs gathers word and integer lexemes in order.
func (p *parser) collectArgs() ([]string, error) {
	var args []string
	for p.current.Tag == Word || p.current.Tag == Integer {
		args = append(args, p.current.Lexeme)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, nil
}
