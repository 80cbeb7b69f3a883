package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/render"
	"flexipayslip/internal/domain/workbook"
	cryptoutil "flexipayslip/internal/platform/crypto"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "payslipctl",
		Usage: "render payslips and workbook templates from the command line",
		Commands: []*cli.Command{
			templateCommand(),
			renderCommand(),
			wordsCommand(),
			keygenCommand(),
		},
	}
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "write the blank import workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: workbook.TemplateFileName, Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			data, err := workbook.ExportTemplate()
			if err != nil {
				return err
			}
			out := c.String("out")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, out)
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "import a filled workbook and write the payslip PDF",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "workbook to import (.xlsx or .xls)"},
			&cli.StringFlag{Name: "logo", Usage: "PNG or JPEG company logo"},
			&cli.StringFlag{Name: "theme", Value: render.DefaultTheme, Usage: "classic, modern, elegant or corporate"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory or file"},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelWarn}))

	theme := c.String("theme")
	if _, ok := render.LookupTheme(theme); !ok {
		return fmt.Errorf("unknown theme %q", theme)
	}

	in := c.String("in")
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	report, err := workbook.Import(filepath.Base(in), data)
	if err != nil {
		return err
	}
	for _, skipped := range report.Skipped {
		logger.Warn("workbook row skipped", "sheet", skipped.Sheet, "row", skipped.Row, "reason", skipped.Reason)
	}

	doc := report.ApplyTo(payslip.Reset())
	if !payslip.IsComplete(doc) {
		return payslip.ErrIncomplete
	}

	var logo []byte
	if path := c.String("logo"); path != "" {
		if logo, err = os.ReadFile(path); err != nil {
			return err
		}
	}

	rendered, err := render.NewEngine(logger).Render(doc, theme, logo)
	if err != nil {
		return err
	}
	path, err := rendered.Save(c.String("out"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "words",
		Usage:     "spell an amount in rupees",
		ArgsUsage: "<amount>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("words takes exactly one amount")
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(c.Args().First()))
			if err != nil {
				return fmt.Errorf("invalid amount %q", c.Args().First())
			}
			fmt.Fprintln(c.App.Writer, payslip.NumberToWords(amount))
			return nil
		},
	}
}

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "print a new DATA_ENCRYPTION_KEY",
		Action: func(c *cli.Context) error {
			key, err := cryptoutil.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, key)
			return nil
		},
	}
}
