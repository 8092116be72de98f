package commands

import (
	"flag"
	"strings"

	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/swfxml"
)

// QueryFlags contains flags for the query command
type QueryFlags struct {
	Limit  int
	Count  bool
	Format string
}

// SetupQueryFlags creates and configures a FlagSet for the query command.
func SetupQueryFlags() (*flag.FlagSet, *QueryFlags) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	flags := &QueryFlags{}

	fs.IntVar(&flags.Limit, "limit", 0, "print at most N matches (0 = all)")
	fs.BoolVar(&flags.Count, "count", false, "print only the number of matches")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: drip query [flags] <tree.xml> <path>\n\n")
		Writef(fs.Output(), "Select elements of an FFDec XML export with a path expression.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nPath Syntax:\n")
		Writef(fs.Output(), "  name, *           child elements (any name with *)\n")
		Writef(fs.Output(), "  //name            descendants\n")
		Writef(fs.Output(), "  [@a] [@a='v']     attribute present / equal\n")
		Writef(fs.Output(), "  [@a!='v'] [n]     attribute not equal / n-th match\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  drip query menu.xml \"tags/item[@spriteId='5']/subTags/item[@depth]\"\n")
		Writef(fs.Output(), "  drip query --count menu.xml \"//item[@type='DefineEditTextTag']\"\n")
	}

	return fs, flags
}

// QueryMatch is one selected element.
type QueryMatch struct {
	Location string        `json:"location" yaml:"location"`
	Name     string        `json:"name" yaml:"name"`
	Kind     string        `json:"kind" yaml:"kind"`
	Attrs    []swfxml.Attr `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// HandleQuery executes the query command
func HandleQuery(args []string) error {
	fs, flags := SetupQueryFlags()
	if stop, err := parseFlags(fs, args); stop {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return cliutil.Usagef("query command requires a tree file and a path expression")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	path, err := treepath.Parse(fs.Arg(1))
	if err != nil {
		return cliutil.Usagef("%v", err)
	}
	doc, err := swfxml.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	matches := path.Select(doc.Root)
	if flags.Count {
		Writef(Stdout, "%d\n", len(matches))
		return nil
	}
	if flags.Limit > 0 && len(matches) > flags.Limit {
		matches = matches[:flags.Limit]
	}

	out := make([]QueryMatch, 0, len(matches))
	for _, m := range matches {
		loc := m.Location
		if loc == "" {
			loc = "."
		}
		out = append(out, QueryMatch{Location: loc, Name: m.Element.Name, Kind: m.Element.Kind.String(), Attrs: m.Element.Attrs})
	}

	if flags.Format != FormatText {
		return OutputStructured(out, flags.Format)
	}
	for _, m := range out {
		attrs := make([]string, 0, len(m.Attrs))
		for _, a := range m.Attrs {
			attrs = append(attrs, a.Name+"="+quote(a.Value))
		}
		Writef(Stdout, "%s <%s %s>\n", m.Location, m.Name, strings.Join(attrs, " "))
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
