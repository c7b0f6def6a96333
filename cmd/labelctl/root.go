package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"linksoc/internal/app"
	"linksoc/internal/config"
	appctx "linksoc/internal/core/context"
	"linksoc/internal/domain/auth"
	"linksoc/internal/domain/labels"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "labelctl",
		Short:         "Operate the LinkSOC cage label store",
		Long:          "labelctl generates, validates and inspects FIFO cage labels directly against the configured store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddFlagSet(config.Flags("labelctl"))

	root.AddCommand(
		newGenerateCmd(),
		newValidateCmd(),
		newHashPasswordCmd(),
		newAddPasswordCmd(),
		newMigrateCmd(),
		newCheckSchemaCmd(),
		newAuditCmd(),
	)
	return root
}

// loadApp builds the application from the command's flags. migrate overrides
// database.migrate for commands that must not change the schema.
func loadApp(cmd *cobra.Command, migrate bool) (*app.App, error) {
	cfg, err := config.Load(cmd.Flags(), nil)
	if err != nil {
		return nil, err
	}
	cfg.Database.Migrate = cfg.Database.Migrate && migrate
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	if _, err := app.NewLogger(cfg); err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg)
}

func operatorContext(ctx context.Context) context.Context {
	user := os.Getenv("USER")
	if user == "" {
		user = "labelctl"
	}
	return appctx.WithOperator(ctx, &appctx.OperatorContext{Subject: "cli:" + user})
}

func newGenerateCmd() *cobra.Command {
	var (
		quantity int
		mode     string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Allocate new label codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := labels.ParseMode(mode)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Labels.Generate(operatorContext(cmd.Context()), quantity, m)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "QRCODE\tSERIE")
			for _, l := range res.Labels {
				fmt.Fprintf(w, "%s\t%s\n", l.QRCode, l.Serie)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if res.Shortfall > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d labels could not be allocated\n", res.Shortfall, res.Requested)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "number of labels to generate")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(labels.ModeSequential), "allocation mode: sequential or random")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CODE",
		Short: "Check whether a code is free, single or duplicated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Labels.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if v.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (serie %s)\n", v.Code, v.Label.Serie)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid, %s (%d matches)\n", v.Code, v.Reason, v.Matches)
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print the bcrypt hash of a password (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newAddPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-password [PASSWORD]",
		Short: "Store a new operator password (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.AddPassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password added")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadDatabase(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newCheckSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-schema",
		Short: "Verify the PostgreSQL schema without changing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// app.New validates the schema when migrations are off.
			a, err := loadDatabase(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema ok")
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent audit entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Audit.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tENTITY\tKEY\tOPERATOR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.Entity, e.EntityKey, e.Operator)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of entries to show")
	return cmd
}

func loadDatabase(cmd *cobra.Command, migrate bool) (*app.App, error) {
	if url, _ := cmd.Flags().GetString("database-url"); url == "" && os.Getenv(config.EnvPrefix+"_DATABASE_URL") == "" {
		return nil, fmt.Errorf("%s requires --database-url or %s_DATABASE_URL", cmd.Name(), config.EnvPrefix)
	}
	return loadApp(cmd, migrate)
}

func passwordArg(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(io.LimitReader(in, 4096))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
