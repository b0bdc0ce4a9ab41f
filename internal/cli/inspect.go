package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/rpmaudit/internal/config"
	"github.com/ralt/rpmaudit/internal/engine"
	"github.com/ralt/rpmaudit/internal/models"
	"github.com/ralt/rpmaudit/internal/report"
	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/signer"
)

type inspectOptions struct {
	engine.Options

	WorkDir        string
	Threshold      string
	Format         string
	Output         string
	SignKey        string
	SignPassphrase string
	ExportKey      string
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect an after build, comparing it with a before build",
		Long: `Loads the RPM packages of the after build and, when given, the before
build, pairs them by name and architecture and runs the selected
inspections. Each of --before and --after takes RPM files or directories.`,
		Example: `  rpmaudit inspect --before old/ --after new/
  rpmaudit inspect --after foo-1.0-2.src.rpm --tests license,metadata
  rpmaudit inspect --before old/ --after new/ --format json --output report.json --sign-key key.asc
  rpmaudit inspect --after new/ --output report.txt --sign-key key.asc --export-key pub.asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			format, err := validateInspect(&opts, settings)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			logrus.Info("Starting inspection...")
			logrus.Debugf("Options: %+v", opts.Options)

			return runInspect(cmd, &opts, settings, format)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Before, "before", "b", nil, "Before build: RPM files or directories")
	cmd.Flags().StringSliceVarP(&opts.After, "after", "a", nil, "After build: RPM files or directories")
	cmd.Flags().StringSliceVarP(&opts.Tests, "tests", "T", nil, "Run only these inspections")
	cmd.Flags().StringSliceVarP(&opts.Exclude, "exclude", "E", nil, "Skip these inspections")
	cmd.Flags().BoolVarP(&opts.KeepWorkDir, "keep", "k", false, "Keep the work directory after the run")
	cmd.Flags().StringVarP(&opts.WorkDir, "workdir", "w", "", "Work directory for extracted packages")
	cmd.Flags().StringVarP(&opts.Threshold, "threshold", "t", "", "Severity at which the run fails (OK, INFO, VERIFY, BAD)")

	// Output flags
	cmd.Flags().StringVarP(&opts.Format, "format", "F", "text", "Report format (text, json, yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the report to this file instead of stdout")

	// GPG signing flags
	cmd.Flags().StringVar(&opts.SignKey, "sign-key", "", "Path to GPG private key used to sign the report")
	cmd.Flags().StringVar(&opts.SignPassphrase, "sign-passphrase", "", "GPG key passphrase")
	cmd.Flags().StringVar(&opts.ExportKey, "export-key", "", "Write the signing public key to this file")

	_ = cmd.MarkFlagRequired("after")

	return cmd
}

// validateInspect applies flag overrides to settings and checks the options
func validateInspect(opts *inspectOptions, settings *config.Settings) (report.Format, error) {
	if len(opts.After) == 0 {
		return report.FormatText, &models.AuditError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("after is required"),
		}
	}

	if opts.WorkDir != "" {
		settings.WorkDir = opts.WorkDir
	}

	if opts.Threshold != "" {
		sev, err := result.ParseSeverity(opts.Threshold)
		if err != nil {
			return report.FormatText, &models.AuditError{Type: models.ErrInvalidConfig, Err: err}
		}
		settings.Threshold = sev
	}

	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return report.FormatText, &models.AuditError{Type: models.ErrInvalidConfig, Err: err}
	}

	if opts.SignKey != "" && opts.Output == "" {
		return report.FormatText, &models.AuditError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("sign-key requires output"),
		}
	}

	if opts.ExportKey != "" && opts.SignKey == "" {
		return report.FormatText, &models.AuditError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("export-key requires sign-key"),
		}
	}

	return format, nil
}

func runInspect(cmd *cobra.Command, opts *inspectOptions, settings *config.Settings, format report.Format) error {
	// Load the signer before doing any work so a bad key fails fast
	var gpgSigner signer.Signer
	if opts.SignKey != "" {
		s, err := signer.NewGPGSigner(opts.SignKey, opts.SignPassphrase)
		if err != nil {
			return &models.AuditError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		gpgSigner = s
		logrus.Info("GPG signer initialized")

		if opts.ExportKey != "" {
			if err := signer.ExportPublicKey(gpgSigner, opts.ExportKey); err != nil {
				return &models.AuditError{Type: models.ErrSigning, Err: err}
			}
			logrus.Infof("Public key written to %s", opts.ExportKey)
		}
	}

	doc, err := engine.New(settings).Run(cmd.Context(), opts.Options)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		if err := report.Write(cmd.OutOrStdout(), doc, format); err != nil {
			return &models.AuditError{Type: models.ErrReport, Err: err}
		}
	} else {
		if err := report.WriteFile(opts.Output, doc, format); err != nil {
			return &models.AuditError{
				Type: models.ErrReport,
				Err:  fmt.Errorf("failed to write report: %w", err),
			}
		}
		logrus.Infof("Report written to %s", opts.Output)

		if gpgSigner != nil {
			sig, err := signer.SignFile(gpgSigner, opts.Output)
			if err != nil {
				return &models.AuditError{Type: models.ErrSigning, Err: err}
			}
			logrus.Infof("Signature written to %s", sig)
		}
	}

	logrus.Infof("Overall result: %s", doc.Worst)
	if code := report.ExitCode(doc.Worst, settings.Threshold); code != 0 {
		return &ExitError{Code: code, Worst: doc.Worst}
	}
	return nil
}
