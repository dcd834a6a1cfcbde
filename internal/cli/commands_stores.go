package cli

import (
	"fmt"

	"store-feedback/internal/excel"
	"store-feedback/internal/geo"
	"store-feedback/internal/models"
	"store-feedback/internal/stores"

	"github.com/spf13/cobra"
)

func newStoresCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "Inspect and import the store directory.",
	}
	cmd.AddCommand(newStoresListCommand(deps))
	cmd.AddCommand(newStoresImportCommand())
	return cmd
}

func newStoresListCommand(deps Dependencies) *cobra.Command {
	var (
		query      string
		lat, lng   float64
		radius     float64
		storesFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stores, optionally filtered by text or distance.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			dir, err := stores.Load(storesFile)
			if err != nil {
				return err
			}

			hasPoint := cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng")
			if !hasPoint && (cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") || cmd.Flags().Changed("radius")) {
				return usageError("--lat, --lng and --radius must be used together with both coordinates")
			}

			var views []stores.StoreView
			if hasPoint {
				pt := models.Coordinate{Lat: lat, Lng: lng}
				if !geo.Valid(pt) {
					return usageError("--lat/--lng must be a valid coordinate")
				}
				if radius < 0 {
					return usageError("--radius must not be negative")
				}
				matched := make(map[string]bool)
				for _, st := range dir.Search(query) {
					matched[st.ID] = true
				}
				for _, r := range dir.Within(pt, radius) {
					if !matched[r.Item.ID] {
						continue
					}
					views = append(views, stores.ViewWithDistance(r.Item, r.Distance))
				}
			} else {
				for _, st := range dir.Search(query) {
					views = append(views, stores.View(st))
				}
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				distance := "-"
				if v.Distance != nil {
					distance = formatMiles(*v.Distance)
				}
				rows = append(rows, []string{v.ID, v.Name, v.City, v.Zip, distance})
			}
			title := fmt.Sprintf("%d store(s)", len(views))
			table := renderTable(title, []string{"ID", "Name", "City", "Zip", "Distance"}, rows)
			return writeOutput(cmd, out, table, map[string]any{"stores": views})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by name, city, address or zip.")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude for distance ranking.")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude for distance ranking.")
	cmd.Flags().Float64Var(&radius, "radius", 100, "Radius in miles when --lat/--lng are given.")
	cmd.Flags().StringVar(&storesFile, "stores", deps.Config.StoresFile, "Store directory file (FEEDBACK_STORES_FILE).")
	addFormatFlag(cmd, &format)
	return cmd
}

func newStoresImportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.xls>",
		Short: "Convert a store spreadsheet into a YAML directory file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := excel.ReadStoresFile(args[0])
			if err != nil {
				return err
			}
			// Reject duplicates before writing a file that Load would refuse.
			if _, err := stores.New(list); err != nil {
				return err
			}
			if err := stores.WriteYAML(outPath, list); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d stores into %s\n", len(list), outPath)
			return err
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "stores.yaml", "Destination YAML file.")
	return cmd
}
