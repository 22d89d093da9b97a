package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/toolshed/internal/cli"
	"github.com/aretw0/toolshed/internal/presentation/tui"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the tool catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list [text]",
	Short: "List or search catalog tools",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		c, err := cli.BuildCatalog(cfg.Catalog, logger)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		q := catalog.Query{Text: strings.Join(args, " ")}
		q.Category, _ = flags.GetString("category")
		pricing, _ := flags.GetString("pricing")
		q.Pricing = domain.Pricing(pricing)
		q.MinRating, _ = flags.GetFloat64("min-rating")
		q.Limit, _ = flags.GetInt("limit")

		tools, err := catalog.Search(cmd.Context(), c, q)
		if err != nil {
			return err
		}
		if asJSON, _ := flags.GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.ToolTable(tools))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		c, err := cli.BuildCatalog(cfg.Catalog, logger)
		if err != nil {
			return err
		}
		tool, err := c.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		out, err := tui.NewRenderer(cfg.Session.Theme, width)(tui.ToolMarkdown(tool))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd)

	flags := catalogListCmd.Flags()
	flags.String("category", "", "Only tools in this category")
	flags.String("pricing", "", "Only tools with this pricing model (free, freemium, paid, enterprise)")
	flags.Float64("min-rating", 0, "Only tools rated at least this")
	flags.Int("limit", 0, "Maximum number of results")
	flags.Bool("json", false, "Print JSON instead of a table")
}
