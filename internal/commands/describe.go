package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reoring/goform"
	"github.com/reoring/goform/dsl"
)

func registerDescribeCmd(parent *cobra.Command) {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "List the fields of a form schema",
		Example: `  goform describe --schema order.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := dsl.LoadYAMLFile(schemaPath)
			if err != nil {
				return err
			}
			s, err := b.Schema()
			if err != nil {
				return err
			}
			return runDescribe(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema YAML file")
	_ = cmd.MarkFlagRequired("schema")
	parent.AddCommand(cmd)
}

func runDescribe(out io.Writer, s goform.Schema) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tKIND\tINITIAL\tREADS\tDISABLED BY")
	describeFields(w, "", s)
	return w.Flush()
}

func describeFields(w io.Writer, prefix string, s goform.Schema) {
	for _, fd := range s.Fields {
		path := prefix + "/" + fd.Name
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			path, fieldKind(fd), initialText(fd.Initial), orDash(readsOf(fd)), orDash(disabledBy(fd.DisabledWhen)))

		switch {
		case fd.Group != nil:
			describeFields(w, path, *fd.Group)
		case fd.ElementSchema != nil:
			describeFields(w, path+"/*", fd.ElementSchema())
		}
	}
}

func fieldKind(fd goform.Field) string {
	switch {
	case fd.Group != nil:
		return "group"
	case fd.IsArray():
		return "array"
	case len(fd.Options) > 0 && fd.Multiple:
		return "select(multiple)"
	case len(fd.Options) > 0:
		return "select"
	default:
		return "leaf"
	}
}

func readsOf(fd goform.Field) string {
	if fd.Validator == nil {
		return ""
	}
	return strings.Join(fd.Validator.Dependencies(), ",")
}

func disabledBy(r *goform.DisableRule) string {
	switch {
	case r == nil:
		return ""
	case r.Stream != nil:
		return "stream"
	}
	names := make([]string, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		names = append(names, c.Field)
	}
	return strings.Join(names, ",")
}

func initialText(x any) string {
	switch t := x.(type) {
	case nil:
		return "-"
	case []any:
		return fmt.Sprintf("[%d items]", len(t))
	case map[string]any:
		return "{...}"
	}
	s := fmt.Sprint(x)
	if len(s) > 24 {
		s = s[:21] + "..."
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
