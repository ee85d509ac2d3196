package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/dsl"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/values"
)

// ErrInvalid is returned by check when the values do not pass the schema.
var ErrInvalid = errors.New("form is invalid")

type checkOptions struct {
	schema          string
	values          string
	lang            string
	asJSON          bool
	includeDisabled bool
}

func registerCheckCmd(parent *cobra.Command) {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a values file against a form schema",
		Long: `Build the form described by a schema file, patch it with the values
file (YAML or JSON), settle dependent validators and print every error and
warning. The command fails when the form is invalid.`,
		Example: `  # Check values and print messages
  goform check --schema order.yaml --values order.json

  # Japanese messages, JSON report
  goform check -s order.yaml -f order.yaml --lang ja --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "schema YAML file")
	cmd.Flags().StringVarP(&opts.values, "values", "f", "", "values file (YAML or JSON); stdin when empty")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "message language (en, ja)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.includeDisabled, "include-disabled", false, "include disabled fields in printed values")
	_ = cmd.MarkFlagRequired("schema")
	parent.AddCommand(cmd)
}

type checkResult struct {
	goform.Report
	Issues goform.Issues  `json:"issues,omitempty"`
	Values map[string]any `json:"values"`
}

func runCheck(out io.Writer, opts *checkOptions) error {
	b, err := dsl.LoadYAMLFile(opts.schema)
	if err != nil {
		return err
	}
	f, err := b.Build()
	if err != nil {
		return err
	}
	defer f.Close()

	vals, err := readValues(opts.values)
	if err != nil {
		return err
	}
	unknown := unknownFields(f, vals)

	f.PatchValues(vals)
	f.MarkAsDirtyRecursive(false)
	f.Flush()

	res := checkResult{Report: f.Report(), Values: f.Values(opts.includeDisabled)}
	res.Issues = append(unknown, res.Report.Issues()...)
	if len(unknown) > 0 {
		res.Valid = false
		res.Status = control.StatusInvalid.String()
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printIssues(out, res, i18n.Lang(opts.lang))
	}
	if !res.Valid {
		return ErrInvalid
	}
	return nil
}

func readValues(path string) (map[string]any, error) {
	if path == "" {
		return values.Object(os.Stdin)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	m, err := values.Object(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func unknownFields(f *goform.Form, vals map[string]any) goform.Issues {
	var out goform.Issues
	for k := range vals {
		if !f.HasControl(k) {
			out = append(out, goform.Issue{Path: "/" + k, Code: "unknown_field", Severity: goform.SeverityError})
		}
	}
	return out
}

func printIssues(out io.Writer, res checkResult, tr i18n.Translator) {
	if len(res.Issues) == 0 {
		fmt.Fprintf(out, "%s: no issues\n", res.Status)
		return
	}
	for _, is := range res.Issues {
		path := is.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(out, "%-7s %s: %s (%s)\n", is.Severity, path, is.Text(tr), is.Code)
	}
	fmt.Fprintf(out, "%s: %d issue(s)\n", res.Status, len(res.Issues))
}
