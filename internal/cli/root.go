package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/result"
)

// ExitError carries a non-zero exit status for a run that completed but
// reported findings at or above the threshold
type ExitError struct {
	Code  int
	Worst result.Severity
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return fmt.Sprintf("audit result %s", e.Worst)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpmaudit",
		Short: "Compare two builds of RPM packages and report policy problems",
		Long: `Rpmaudit compares an after build of RPM packages against an optional
before build and reports license, metadata, kernel module, upstream
source and changelog problems.

Findings are ranked OK, INFO, VERIFY or BAD. The process exits non-zero
when the worst finding reaches the configured threshold.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// main logs the error
	rootCmd.SilenceErrors = true

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "Configuration profile merged on top of the configuration file")

	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewWhitelistsCmd())

	return rootCmd
}

// loadSettings reads the configuration named by the global flags
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	profile, _ := cmd.Flags().GetString("profile")

	settings, err := config.Load(path, profile)
	if err != nil {
		return nil, &models.AuditError{Type: models.ErrInvalidConfig, Err: err}
	}
	return settings, nil
}
