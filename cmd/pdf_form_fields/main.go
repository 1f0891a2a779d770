package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/abdoul12363/mdph/internal/config"
	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/pdf"
)

type options struct {
	format         string
	formDefinition string
	debug          bool
	help           bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	flags := pflag.NewFlagSet("pdf_form_fields", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json")
	flags.StringVar(&opts.formDefinition, "form-def", "", "Form definition to check the field mappings against")
	flags.BoolVar(&opts.debug, "debug", false, "Log field indexing details")
	flags.BoolVarP(&opts.help, "help", "h", false, "Show help message")
	flags.Usage = func() { printHelp(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if opts.help {
		printHelp(stdout, flags)
		return 0
	}
	if flags.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: PDF file path required\n\n")
		printHelp(stderr, flags)
		return 1
	}

	result, err := describe(flags.Arg(0), opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch opts.format {
	case "json":
		err = outputJSON(stdout, result)
	case "text":
		outputText(stdout, result)
	default:
		err = fmt.Errorf("unsupported output format: %s", opts.format)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func describe(path string, opts options) (*pdf.FormFieldsResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := pdf.NewValidator(config.DefaultMaxFileSize).ValidateFile(absPath); err != nil {
		return nil, err
	}

	result, err := pdf.DescribeForm(absPath, opts.debug)
	if err != nil {
		return nil, err
	}

	if opts.formDefinition != "" {
		def, warnings, err := formdef.Load(opts.formDefinition)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(result.Fields))
		for _, f := range result.Fields {
			names = append(names, f.Name)
		}
		result.Coverage = pdf.Coverage(def, names)
		result.Coverage.Warnings = pdf.WarningInfos(warnings)
	}
	return result, nil
}

func outputJSON(w io.Writer, result *pdf.FormFieldsResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *pdf.FormFieldsResult) {
	fmt.Fprintf(w, "%s: %d pages, %d fields\n\n", result.Path, result.Pages, len(result.Fields))

	if len(result.Fields) == 0 {
		fmt.Fprintln(w, "⚠️  No form fields detected in the PDF")
	}
	for i, field := range result.Fields {
		fmt.Fprintf(w, "[%d] %s\n", i+1, field.Name)
		fmt.Fprintf(w, "    Type: %s", field.Kind)
		if field.Multiline {
			fmt.Fprint(w, " (multiline)")
		}
		fmt.Fprintln(w)
		if field.Box != nil {
			fmt.Fprintf(w, "    Page: %d\n", field.PageIndex+1)
			fmt.Fprintf(w, "    Position: x=%.1f y=%.1f w=%.1f h=%.1f\n",
				field.Box.X, field.Box.Y, field.Box.Width, field.Box.Height)
		}
		if field.Widgets > 1 {
			fmt.Fprintf(w, "    Widgets: %d\n", field.Widgets)
		}
		if field.Value != "" {
			fmt.Fprintf(w, "    Value: %q\n", field.Value)
		}
	}

	c := result.Coverage
	if c == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "📋 MAPPING COVERAGE")
	fmt.Fprintln(w, "===================")
	fmt.Fprintf(w, "Mapped: %d\n", len(c.Mapped))
	fmt.Fprintf(w, "Missing from the PDF: %d\n", len(c.Missing))
	for _, name := range c.Missing {
		fmt.Fprintf(w, "  ❌ %s\n", name)
	}
	fmt.Fprintf(w, "Not mapped by any question: %d\n", len(c.Unmapped))
	for _, name := range c.Unmapped {
		fmt.Fprintf(w, "  • %s\n", name)
	}
	if len(c.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range c.Warnings {
			fmt.Fprintf(w, "  ⚠️  [%s] %s\n", warning.Kind, warning.Message)
		}
	}
}

func printHelp(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "PDF Form Fields - list the AcroForm fields of a PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prints every field with its kind, page and box. With --form-def, also")
	fmt.Fprintln(w, "reports which mapped fields are missing from the PDF and which PDF")
	fmt.Fprintln(w, "fields no question maps to.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  pdf_form_fields [OPTIONS] <pdf_file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, flags.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  pdf_form_fields public/cerfa.pdf")
	fmt.Fprintln(w, "  pdf_form_fields --form-def data/form_pages.json --format json public/cerfa.pdf")
}
