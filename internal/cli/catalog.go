package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkestack/paramcheck/pkg/catalog"
	"github.com/tkestack/paramcheck/pkg/schema"
)

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog [SERVICE]",
		Short:   "List services or show the fields of a service schema",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: bindFlags(v),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range store.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			svc, ok := store.Service(args[0])
			if !ok {
				return fmt.Errorf("unknown service %q (available: %s)", args[0], strings.Join(store.Names(), ", "))
			}
			section := v.GetString("section")
			fields, ok := svc.Fields(section)
			if !ok {
				return fmt.Errorf("unknown section %q (use %s, %s or %s)", section, catalog.SectionInstance, catalog.SectionPlan, catalog.SectionBinding)
			}
			if format := v.GetString("output"); format != "table" {
				return encode(out, format, fields)
			}
			return writeFieldTable(out, fields)
		},
	}
	cmd.Flags().String("section", catalog.SectionInstance, "section to show: instance, plan or binding")
	cmd.Flags().StringP("output", "o", "table", "output format: table, yaml or json")
	return cmd
}

func writeFieldTable(w io.Writer, fields []schema.FieldSchema) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tREQUIRED\tVALIDATOR\tENABLED WHEN")
	for _, field := range fields {
		kind := string(field.Kind)
		if field.HasCandidates() {
			kind = fmt.Sprintf("%s(%s)", kind, strings.Join(field.Candidates, "|"))
		}
		required := "yes"
		if field.Optional {
			required = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", field.Name, kind, required, dash(field.Validator), dash(field.EnabledCondition))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
