package cli

import (
	"github.com/spf13/cobra"

	"github.com/packfeed/upackctl/internal/artifacttool"
)

func newDownloadCmd(root *rootOptions) *cobra.Command {
	var (
		name    string
		version string
		path    string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a package from a feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(root)
			if err != nil {
				return err
			}

			return app.invoker.Download(cmd.Context(), artifacttool.DownloadRequest{
				Service: app.service,
				Feed:    app.feed,
				Name:    name,
				Version: version,
				Path:    path,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the package, e.g. my-cool-package")
	cmd.Flags().StringVar(&version, "version", "", "version of the package, e.g. 1.0.0")
	cmd.Flags().StringVar(&path, "path", "", "directory to place the package contents")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
