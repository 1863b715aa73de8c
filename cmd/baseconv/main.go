// Command baseconv converts numbers between bases 1 through 36 from the command
// line, interactively from standard input, or as an HTTP service.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/Suhaibinator/SConvert/pkg/sanitize"
)

const version = "0.1.0"

// Globals carries the streams every command reads and writes.
type Globals struct {
	In  io.Reader
	Out io.Writer
}

// CLI defines the command-line interface for baseconv.
type CLI struct {
	Convert ConvertCmd `cmd:"" help:"Convert a single number"`
	Live    LiveCmd    `cmd:"" help:"Convert each line read from standard input"`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP conversion service"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ConversionFlags are shared by convert and live.
type ConversionFlags struct {
	From      int  `name:"from" short:"f" default:"10" help:"Base of the input (1-36)"`
	To        int  `name:"to" short:"t" required:"" help:"Base of the output (1-36)"`
	Precision int  `name:"precision" short:"p" default:"8" help:"Maximum fractional digits in the output"`
	NoUnary   bool `name:"no-unary" help:"Reject base 1"`
}

func (f ConversionFlags) options() sanitize.Options {
	opts := sanitize.DefaultOptions()
	opts.AllowUnary = !f.NoUnary
	return opts
}

func (f ConversionFlags) convert(number string) (string, error) {
	req := radix.Request{Digits: number, From: f.From, To: f.To, Precision: f.Precision}
	if err := sanitize.Check(req, f.options()); err != nil {
		return "", err
	}
	return req.Convert()
}

// ConvertCmd converts one number.
type ConvertCmd struct {
	Number string `arg:"" help:"Number to convert, digits 0-9 and A-Z with an optional radix point"`
	ConversionFlags
}

// Run prints the converted number.
func (c *ConvertCmd) Run(g *Globals) error {
	result, err := c.convert(strings.TrimSpace(c.Number))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Out, result)
	return err
}

// LiveCmd converts every line of standard input as it arrives. Characters
// that cannot appear in the input base are dropped, as an input field would.
type LiveCmd struct {
	ConversionFlags
}

// Run converts lines until standard input is exhausted.
func (c *LiveCmd) Run(g *Globals) error {
	if err := sanitize.Check(radix.Request{Digits: "0", From: c.From, To: c.To, Precision: c.Precision}, c.options()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(g.In)
	for scanner.Scan() {
		number := sanitize.DigitsForBase(scanner.Text(), c.From)
		if number == "" {
			if _, err := fmt.Fprintln(g.Out); err != nil {
				return err
			}
			continue
		}

		result, err := c.convert(number)
		if err != nil {
			result = "error: " + err.Error()
		}
		if _, err := fmt.Fprintln(g.Out, result); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.Out, "baseconv %s\n", version)
	return err
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("baseconv"),
		kong.Description("Convert numbers between bases 1 through 36"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&Globals{In: os.Stdin, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
