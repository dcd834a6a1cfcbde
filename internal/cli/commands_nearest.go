package cli

import (
	"errors"
	"fmt"

	"store-feedback/internal/calculator"
	"store-feedback/internal/geo"
	"store-feedback/internal/models"
	"store-feedback/internal/stores"

	"github.com/spf13/cobra"
)

func newNearestCommand(deps Dependencies) *cobra.Command {
	var (
		lat, lng   float64
		remote     string
		storesFile string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Print the store nearest to a coordinate or to a server's geolocation result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}

			hasPoint := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
			var loc geo.Result
			switch {
			case remote != "" && hasPoint:
				return usageError("--remote cannot be combined with --lat/--lng")
			case remote != "":
				loc, err = deps.NewLocationClient(remote).Get(cmd.Context())
				if err != nil {
					return err
				}
			case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng"):
				loc = geo.Result{Lat: lat, Lng: lng, Source: models.SourceManual}
				if !geo.Valid(loc.Point()) {
					return usageError("--lat/--lng must be a valid coordinate")
				}
			default:
				return usageError("provide --lat and --lng, or --remote")
			}

			dir, err := stores.Load(storesFile)
			if err != nil {
				return err
			}
			st, ok := dir.Nearest(loc.Point())
			if !ok {
				return errors.New("no store locations configured")
			}
			miles := calculator.Distance(loc.Point(), st.Point())

			table := renderTable("", []string{"Field", "Value"}, [][]string{
				{"Location", fmt.Sprintf("%.6f, %.6f (%s)", loc.Lat, loc.Lng, loc.Source)},
				{"Store", st.ID},
				{"Name", st.Name},
				{"Address", fmt.Sprintf("%s, %s, %s %s", st.Address, st.City, st.State, st.Zip)},
				{"Distance", formatMiles(miles)},
			})
			return writeOutput(cmd, out, table, map[string]any{
				"location": loc,
				"store":    stores.ViewWithDistance(st, miles),
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in decimal degrees.")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude in decimal degrees.")
	cmd.Flags().StringVar(&remote, "remote", "", "Base URL of a running server; uses its /api/geolocate result.")
	cmd.Flags().StringVar(&storesFile, "stores", deps.Config.StoresFile, "Store directory file (FEEDBACK_STORES_FILE).")
	addFormatFlag(cmd, &format)
	return cmd
}
