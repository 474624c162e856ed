package cli

import (
	"github.com/spf13/cobra"

	"github.com/packfeed/upackctl/internal/artifacttool"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var (
		name        string
		version     string
		path        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a package to a feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(root)
			if err != nil {
				return err
			}

			return app.invoker.Publish(cmd.Context(), artifacttool.PublishRequest{
				Service:     app.service,
				Feed:        app.feed,
				Name:        name,
				Version:     version,
				Path:        path,
				Description: description,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the package, e.g. my-cool-package")
	cmd.Flags().StringVar(&version, "version", "", "version of the package, e.g. 1.0.0")
	cmd.Flags().StringVar(&path, "path", "", "directory containing the package contents")
	cmd.Flags().StringVar(&description, "description", "", "description of the package")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
