package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
	"github.com/pandeptwidyaop/bagfilter/internal/predicate"
)

const bagExtension = ".bag"

// Command describes an invocation of the external tool. It is only data;
// ExecutorService runs it.
type Command struct {
	Program string
	Args    []string

	// Set by the filter builder.
	OutputPath string
	Kept       []string
	Predicate  predicate.Expr
}

// String renders the command as a shell-quoted line for display.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Program))
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// Builder assembles filter commands for a given external tool.
type Builder struct {
	program string
}

func NewBuilder(program string) *Builder {
	return &Builder{program: program}
}

// Build keeps every topic of meta not in excluded and returns the filter
// invocation writing prefix+stem+suffix+".bag" into outDir.
func (b *Builder) Build(meta *models.BagMetadata, excluded map[string]struct{}, outDir, prefix, suffix string) (*Command, error) {
	var kept []string
	for _, t := range meta.Topics {
		if _, drop := excluded[t.Topic]; !drop {
			kept = append(kept, t.Topic)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoTopicsRemaining
	}

	name, err := OutputName(meta.Path, prefix, suffix)
	if err != nil {
		return nil, err
	}
	outputPath := filepath.Join(outDir, name)

	expr := predicate.AnyTopic(kept...)

	return &Command{
		Program:    b.program,
		Args:       []string{"filter", meta.Path, outputPath, expr.String()},
		OutputPath: outputPath,
		Kept:       kept,
		Predicate:  expr,
	}, nil
}

// InfoCommand returns the inspection invocation for a bag.
func (b *Builder) InfoCommand(bagPath string) *Command {
	return &Command{
		Program: b.program,
		Args:    []string{"info", "--yaml", bagPath},
	}
}

// OutputName derives the filtered bag's file name from the input path.
func OutputName(inputPath, prefix, suffix string) (string, error) {
	base := filepath.Base(inputPath)
	if !strings.HasSuffix(base, bagExtension) || len(base) == len(bagExtension) {
		return "", fmt.Errorf("%w: %s", ErrInvalidExtension, base)
	}
	stem := strings.TrimSuffix(base, bagExtension)
	return prefix + stem + suffix + bagExtension, nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r == '/' || r == '.' || r == '_' || r == '-' || r == ':' || r == '=' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	if !strings.ContainsAny(s, "\"$`\\!") {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
