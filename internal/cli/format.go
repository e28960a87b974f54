package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/tkestack/paramcheck/pkg/submission"
	"github.com/tkestack/paramcheck/pkg/visibility/expr"
)

func newFormatCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "format FILE",
		Short:   "Print the submission payload of a values file",
		Args:    cobra.ExactArgs(1),
		PreRunE: bindFlags(v),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readValues(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			t := resolveTarget(v, file)
			fields, err := resolveFields(cmd.Context(), v, t)
			if err != nil {
				return err
			}

			params, err := submission.BuildParameters(fields, file.form(), expr.New())
			if err != nil {
				return err
			}
			klog.V(2).InfoS("formatted parameters", "file", args[0], "service", t.service, "keys", len(params))

			if !v.GetBool("resources") {
				return encode(cmd.OutOrStdout(), v.GetString("output"), params)
			}
			list, err := submission.ResourceList(fields, params)
			if err != nil {
				return err
			}
			resources := make(map[string]string, len(list))
			for name, q := range list {
				resources[string(name)] = q.String()
			}
			return encode(cmd.OutOrStdout(), v.GetString("output"), resources)
		},
	}
	addSchemaFlags(cmd)
	cmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	cmd.Flags().Bool("resources", false, "print CPU and storage fields as Kubernetes quantities")
	return cmd
}

func encode(w io.Writer, format string, value any) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (use json or yaml)", format)
	}
}
