// Command regdesk looks up registration records and writes barcode images from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/regdesk"
	"github.com/nao1215/regdesk/domain/model"
	"github.com/nao1215/regdesk/internal/config"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/encoding"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := newApp(cfg, os.Stdout, os.Stderr).RunContext(context.Background(), os.Args); err != nil {
		slog.Error("regdesk failed", "error", err)
		os.Exit(1)
	}
}

func newApp(cfg config.Config, stdout, stderr io.Writer) *cli.App {
	build := func(c *cli.Context) (*regdesk.Desk, error) {
		return buildDesk(c, cfg.CSVEncoding)
	}
	return &cli.App{
		Name:      "regdesk",
		Usage:     "look up exam registrations and print their barcodes",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ielts", Value: cfg.IELTSReport, Usage: "IELTS report path"},
			&cli.StringFlag{Name: "ielts-sheet", Value: cfg.IELTSSheet, Usage: "IELTS report sheet"},
			&cli.StringFlag{Name: "school", Value: cfg.SchoolReport, Usage: "School report path"},
			&cli.StringFlag{Name: "school-sheet", Value: cfg.SchoolSheet, Usage: "School report sheet, first sheet when empty"},
			&cli.IntFlag{Name: "row-cache-size", Value: cfg.RowCacheSize, Usage: "rows buffered per chunk while reading"},
			&cli.BoolFlag{Name: "exclude-blank-countries", Value: cfg.ExcludeBlankCountries, Usage: "leave blank countries out of the country list"},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "print the record of one candidate",
				Flags:  lookupFlags(),
				Action: infoAction(build),
			},
			{
				Name:  "barcode",
				Usage: "write the barcode PNG of a reference",
				Flags: append(lookupFlags(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "barcode.png", Usage: "output file, - for stdout"},
					&cli.BoolFlag{Name: "with-info", Usage: "compose the candidate record above the barcode"},
				),
				Action: barcodeAction(build),
			},
			{
				Name:   "countries",
				Usage:  "list the countries of both reports",
				Action: listAction(build, func(d *regdesk.Desk) []string { return d.Countries() }),
			},
			{
				Name:   "names",
				Usage:  "list the candidate names of both reports",
				Action: listAction(build, func(d *regdesk.Desk) []string { return d.CandidateNames() }),
			},
			{
				Name:  "products",
				Usage: "list the product types",
				Action: func(c *cli.Context) error {
					for _, p := range model.ProductTypes() {
						fmt.Fprintln(c.App.Writer, p.String())
					}
					return nil
				},
			},
		},
	}
}

func lookupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "product", Aliases: []string{"p"}, Value: model.ProductIELTS.String(), Usage: "IELTS or School"},
		&cli.StringFlag{Name: "country", Aliases: []string{"c"}, Usage: "candidate country"},
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "candidate name"},
		&cli.StringFlag{Name: "ref", Aliases: []string{"r"}, Required: true, Usage: "payment reference (IELTS) or registration id (School)"},
	}
}

func buildDesk(c *cli.Context, csvEncoding encoding.Encoding) (*regdesk.Desk, error) {
	policy := model.BlankNamesOnly
	if c.Bool("exclude-blank-countries") {
		policy = model.BlankNamesAndCountries
	}
	return regdesk.NewBuilder().
		AddIELTSReport(c.String("ielts"), c.String("ielts-sheet")).
		AddSchoolReport(c.String("school"), c.String("school-sheet")).
		SetRowCacheSize(c.Int("row-cache-size")).
		SetBlankPolicy(policy).
		SetTextEncoding(csvEncoding).
		SetLogger(slog.Default()).
		Build(c.Context)
}

func lookup(c *cli.Context, desk *regdesk.Desk) (string, error) {
	return desk.GetInformation(c.String("product"), c.String("country"), c.String("name"), c.String("ref"))
}

type deskFactory func(*cli.Context) (*regdesk.Desk, error)

func infoAction(build deskFactory) cli.ActionFunc {
	return func(c *cli.Context) error {
		desk, err := build(c)
		if err != nil {
			return err
		}
		text, err := lookup(c, desk)
		if errors.Is(err, regdesk.ErrRecordNotFound) {
			fmt.Fprintln(c.App.Writer, regdesk.NoInformationMessage)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, text)
		return nil
	}
}

func barcodeAction(build deskFactory) cli.ActionFunc {
	return func(c *cli.Context) error {
		desk, err := build(c)
		if err != nil {
			return err
		}

		ref := c.String("ref")
		var png []byte
		if c.Bool("with-info") {
			text, err := lookup(c, desk)
			if err != nil {
				return fmt.Errorf("%s: %w", regdesk.NoCandidateMessage, err)
			}
			png = desk.GenerateCompositeBarcode(ref, text)
		} else {
			png = desk.GenerateBarcode(ref)
		}

		out := c.String("out")
		if out == "-" {
			_, err := c.App.Writer.Write(png)
			return err
		}
		if err := os.WriteFile(out, png, 0o600); err != nil {
			return fmt.Errorf("write barcode: %w", err)
		}
		slog.Info("barcode written", "path", out, "bytes", len(png))
		return nil
	}
}

func listAction(build deskFactory, values func(*regdesk.Desk) []string) cli.ActionFunc {
	return func(c *cli.Context) error {
		desk, err := build(c)
		if err != nil {
			return err
		}
		for _, v := range values(desk) {
			fmt.Fprintln(c.App.Writer, v)
		}
		return nil
	}
}
