package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/tkestack/paramcheck/pkg/openapi"
	"github.com/tkestack/paramcheck/pkg/schema"
)

// catalogDocument mirrors the layout the catalog loader reads.
type catalogDocument struct {
	Services map[string]map[string][]schema.FieldSchema `json:"services" yaml:"services"`
}

func newImportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import SOURCE",
		Short: "Convert an OpenAPI or JSON schema into a catalog document",
		Long: `Read an OpenAPI 3 document or a bare JSON schema from a file or URL and print
its properties as a catalog service document.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: bindFlags(v),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			reader := openapi.NewReader(openapi.WithHTTPClient(httpClient))
			fields, err := reader.Import(cmd.Context(), src,
				openapi.WithSchemaName(v.GetString("schema-name")),
				openapi.WithDocumentValidation(v.GetBool("validate")),
			)
			if err != nil {
				return err
			}
			klog.V(1).InfoS("imported schema", "source", src.Location, "fields", len(fields))

			doc := catalogDocument{Services: map[string]map[string][]schema.FieldSchema{
				v.GetString("service"): {v.GetString("section"): fields},
			}}
			return encode(cmd.OutOrStdout(), v.GetString("output"), doc)
		},
	}
	cmd.Flags().String("schema-name", "", "component schema to convert when the document has several")
	cmd.Flags().String("service", "imported", "service name of the generated document")
	cmd.Flags().String("section", "plan", "section the fields are placed in")
	cmd.Flags().Bool("validate", false, "validate the whole OpenAPI document before converting")
	cmd.Flags().StringP("output", "o", "yaml", "output format: yaml or json")
	return cmd
}
