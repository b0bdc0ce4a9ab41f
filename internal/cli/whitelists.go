package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmaudit/internal/inspect"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/whitelist"
)

// NewWhitelistsCmd creates the whitelists command
func NewWhitelistsCmd() *cobra.Command {
	var product, release string

	cmd := &cobra.Command{
		Use:   "whitelists",
		Short: "Load and summarize the whitelists of a product release",
		Long: `Loads the stat and capabilities whitelists for a product release from
the vendor data directory and reports how many entries were accepted and
which lines were rejected. The product is named directly with --product
or found from a package release with --release.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			c := inspect.NewContext(settings, nil, nil)
			switch {
			case product != "":
				c.Product = product
			case release != "":
				name, ok := settings.ProductRelease(release)
				if !ok {
					return &models.AuditError{
						Type: models.ErrInvalidConfig,
						Err:  fmt.Errorf("no product matches release %s", release),
					}
				}
				c.Product = name
			default:
				return &models.AuditError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("product or release is required"),
				}
			}
			logrus.Debugf("Loading whitelists for %s", c.Product)

			stat, caps, err := c.Whitelists()
			if err != nil {
				return &models.AuditError{Type: models.ErrInvalidConfig, Err: err}
			}

			printWhitelists(cmd.OutOrStdout(), c.Product, stat, caps)
			return nil
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product release name")
	cmd.Flags().StringVar(&release, "release", "", "Package release to map to a product")

	return cmd
}

func printRejected(w io.Writer, rejected []whitelist.Rejected) {
	for _, r := range rejected {
		fmt.Fprintf(w, "  line %d: %s (%s)\n", r.Line, r.Text, r.Reason)
	}
}

func printWhitelists(w io.Writer, product string, stat *whitelist.StatList, caps *whitelist.CapsList) {
	fmt.Fprintf(w, "Product release: %s\n", product)

	if stat == nil {
		fmt.Fprintln(w, "stat whitelist: none")
	} else {
		fmt.Fprintf(w, "stat whitelist: %d entries, %d rejected\n", len(stat.Entries), len(stat.Rejected))
		printRejected(w, stat.Rejected)
	}

	if caps == nil {
		fmt.Fprintln(w, "capabilities whitelist: none")
	} else {
		fmt.Fprintf(w, "capabilities whitelist: %d packages, %d files, %d rejected\n",
			len(caps.Packages), caps.Files(), len(caps.Rejected))
		printRejected(w, caps.Rejected)
	}
}
