package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/anvil-platform/forge/internal/config"
	"github.com/anvil-platform/forge/internal/project"
	"github.com/anvil-platform/forge/internal/resolver"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(afero.NewOsFs()).rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

// app is the state shared by every subcommand.
type app struct {
	fs      afero.Fs
	viper   *viper.Viper
	cfgFile string
	zapOpts zap.Options
	cfg     config.Config
}

func newApp(fsys afero.Fs) *app {
	return &app{
		fs:      fsys,
		viper:   viper.New(),
		zapOpts: zap.Options{Development: true},
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Resolve and inspect multi-target component builds",
		Long: `forge resolves, per build target, which components provide each
interface a project requires, and which components end up enabled.

Components are declared in manifest.yaml files anywhere below the project
directory. Targets live in the targets directory (default: meta/targets)
and route interfaces to providing components.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&a.zapOpts), zap.WriteTo(cmd.ErrOrStderr())))
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: <project>/forge.yaml)")
	flags.StringP("project", "p", "", "project directory (default: current directory)")
	flags.StringP("target", "t", "", "target id (default from config, else host)")
	flags.Bool("strict", false, "fail when a target routes to an unknown component")
	_ = a.viper.BindPFlag("project_dir", flags.Lookup("project"))
	_ = a.viper.BindPFlag("target", flags.Lookup("target"))
	_ = a.viper.BindPFlag("strict", flags.Lookup("strict"))

	goflags := flag.NewFlagSet("zap", flag.ContinueOnError)
	a.zapOpts.BindFlags(goflags)
	flags.AddGoFlagSet(goflags)

	cmd.AddCommand(
		a.listCmd(),
		a.targetsCmd(),
		a.graphCmd(),
		a.planCmd(),
		a.installCmd(),
		a.checkCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return cmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("project")
	cfg, err := config.Load(a.viper, config.Options{Fs: a.fs, File: a.cfgFile, Dir: dir})
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) context(cmd *cobra.Command) context.Context {
	return ctrllog.IntoContext(cmd.Context(), ctrllog.Log.WithName("forge"))
}

func (a *app) open(cmd *cobra.Command) (context.Context, *project.Project, error) {
	ctx := a.context(cmd)
	p, err := project.Open(ctx, a.fs, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, p, nil
}

// resolve opens the project and resolves the selected target.
func (a *app) resolve(cmd *cobra.Command) (context.Context, *project.Project, *resolver.Resolution, error) {
	ctx, p, err := a.open(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := p.Resolve(ctx, a.cfg.Target)
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, p, res, nil
}
