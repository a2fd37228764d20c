package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/termconf/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage termconf settings",
	}

	settingsPath := func() string {
		if opts.cfgFile != "" {
			return config.ExpandHome(opts.cfgFile)
		}
		return config.DefaultPath()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), settingsPath())
				return err
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := loadSettings(cmd, opts)
				if err != nil {
					return err
				}
				return config.Print(cfg, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a settings file with the defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.CreateDefault(settingsPath())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
				return err
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the settings file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(opts.cfgFile)
				if err != nil {
					return err
				}
				errs := config.Validate(cfg)
				for _, e := range errs {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				if len(errs) > 0 {
					return errors.New("settings are invalid")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			},
		},
	)
	return cmd
}
