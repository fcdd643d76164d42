package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotup/internal/version"
	"github.com/arthur-debert/dotup/pkg/bootstrap"
	"github.com/arthur-debert/dotup/pkg/config"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/pkgmgr"
	"github.com/arthur-debert/dotup/pkg/provision"
	"github.com/arthur-debert/dotup/pkg/runner"
	"github.com/arthur-debert/dotup/pkg/symlink"
)

// NewRootCmd builds the dotup command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbosity    int
		dryRun       bool
		dotfilesRoot string
	)

	rootCmd := &cobra.Command{
		Use:   "dotup",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Preview changes without executing them")
	rootCmd.PersistentFlags().StringVar(&dotfilesRoot, "dotfiles", "",
		"Dotfiles root directory (default $DOTFILES_ROOT or ~/dotfiles)")

	initTemplateFormatting()
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newUpCmd(&dryRun, &dotfilesRoot))
	rootCmd.AddCommand(newLinksCmd(&dryRun, &dotfilesRoot))
	rootCmd.AddCommand(newToolsCmd(&dryRun, &dotfilesRoot))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadEnvironment resolves paths and configuration shared by all
// subcommands.
func loadEnvironment(dotfilesRoot string) (*paths.Paths, *config.Config, error) {
	p, err := paths.New(dotfilesRoot)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func newUpCmd(dryRun *bool, dotfilesRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: MsgUpShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := loadEnvironment(*dotfilesRoot)
			if err != nil {
				return reportFatal(cmd, err)
			}

			b := bootstrap.New(bootstrap.Options{
				Runner: runner.NewOS(),
				Paths:  p,
				Config: cfg,
				DryRun: *dryRun,
			})

			summary, err := b.Run()
			if err != nil {
				return reportFatal(cmd, err)
			}

			renderSummary(cmd.OutOrStdout(), summary, *dryRun)
			return nil
		},
	}
}

func newLinksCmd(dryRun *bool, dotfilesRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "links",
		Short: MsgLinksShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := loadEnvironment(*dotfilesRoot)
			if err != nil {
				return reportFatal(cmd, err)
			}

			specs, err := cfg.LinkSpecs(p)
			if err != nil {
				return reportFatal(cmd, err)
			}

			backupDir := p.NewBackupDir(time.Now())
			syncer := symlink.New(backupDir, p.HomeRelative, *dryRun)
			results := syncer.Sync(specs)

			renderLinks(cmd.OutOrStdout(), results, backupDir, *dryRun)
			if *dryRun {
				cmd.Println(MsgDryRunNotice)
			}
			return nil
		},
	}
}

func newToolsCmd(dryRun *bool, dotfilesRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: MsgToolsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := loadEnvironment(*dotfilesRoot)
			if err != nil {
				return reportFatal(cmd, err)
			}

			r := runner.NewOS()
			strategy, err := pkgmgr.Detect(r)
			if err != nil {
				return reportFatal(cmd, err)
			}

			requirements, err := cfg.ToolRequirements(p)
			if err != nil {
				return reportFatal(cmd, err)
			}

			prov := provision.New(r, strategy, p.LocalBin())
			reports := make([]bootstrap.ToolReport, 0, len(requirements))
			for _, req := range requirements {
				if *dryRun {
					reports = append(reports, bootstrap.PlanTool(prov, req))
					continue
				}

				outcome, err := prov.Ensure(req)
				if err != nil {
					return reportFatal(cmd, err)
				}
				reports = append(reports, bootstrap.ToolReport{Command: req.Command, Outcome: outcome})
			}

			renderTools(cmd.OutOrStdout(), strategy, reports)
			if *dryRun {
				cmd.Println(MsgDryRunNotice)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(config.DefaultConfigContent())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("dotup version %s\n", version.Version)
			cmd.Printf("  commit: %s\n", version.Commit)
			cmd.Printf("  built:  %s\n", version.Date)
		},
	}
}

// reportFatal prints the failing step's message before handing the error
// back for a non-zero exit.
func reportFatal(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return err
}
