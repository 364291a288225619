package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fleetflow/internal/domain"
	"fleetflow/internal/service"
)

type freightFlags struct {
	Origin        string
	Destination   string
	EquipmentType string
	Weight        float64
	Urgency       string
	DistanceMiles float64
	PickupDate    string
}

func (f CommandFactory) createFreightCommand() *cobra.Command {
	var flgs freightFlags

	cmd := &cobra.Command{
		Use:   "freight",
		Short: "Rank freight quotes for a lane",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := f.LoadConfig()
			table, err := service.LoadPricingTable(cfg.Pricing.TableFile)
			if err != nil {
				return err
			}

			req := domain.FreightRequest{
				Origin:        flgs.Origin,
				Destination:   flgs.Destination,
				EquipmentType: domain.EquipmentType(flgs.EquipmentType),
				Weight:        flgs.Weight,
				Urgency:       domain.Urgency(flgs.Urgency),
				DistanceMiles: flgs.DistanceMiles,
			}
			if flgs.PickupDate != "" {
				req.PickupDate, err = time.Parse(time.DateOnly, flgs.PickupDate)
				if err != nil {
					return fmt.Errorf("invalid --pickup %q: %w", flgs.PickupDate, err)
				}
			}

			quotes, err := service.NewQuoteService(service.NewPricingEngine(table, nil)).Generate(cmd.Context(), req)
			if err != nil {
				printError(cmd, err)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tCARRIER\tTIER\tRATE\tMILES\tETA\tDAYS\tCONFIDENCE\tSCORE")
			for _, q := range quotes {
				mark := ""
				if q.Recommended {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t$%.0f\t%.0f\t%s\t%d\t%d%%\t%.3f\n",
					mark, q.Carrier, q.ServiceTier, q.Rate, q.DistanceMiles,
					q.ETA.Format(time.DateOnly), q.TransitDays, q.Confidence, q.Score)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flgs.Origin, "origin", "", "origin city, e.g. \"Chicago, IL\"")
	cmd.Flags().StringVar(&flgs.Destination, "destination", "", "destination city")
	cmd.Flags().StringVar(&flgs.EquipmentType, "equipment", string(domain.EquipmentDryVan), "equipment type")
	cmd.Flags().Float64Var(&flgs.Weight, "weight", 0, "weight in lbs")
	cmd.Flags().StringVar(&flgs.Urgency, "urgency", string(domain.UrgencyMedium), "low, medium or high")
	cmd.Flags().Float64Var(&flgs.DistanceMiles, "distance", 0, "lane distance in miles; 0 estimates it")
	cmd.Flags().StringVar(&flgs.PickupDate, "pickup", "", "pickup date (YYYY-MM-DD); defaults to today")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("weight")

	return cmd
}

type warehouseFlags struct {
	ServiceType  string
	Duration     string
	Pallets      int
	SqFt         int
	Requirements []string
}

func (f CommandFactory) createWarehouseCommand() *cobra.Command {
	var flgs warehouseFlags

	cmd := &cobra.Command{
		Use:   "warehouse",
		Short: "Quote warehousing against the partner catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := service.NewWarehouseService(nil).GenerateWarehouseQuote(cmd.Context(), domain.WarehouseQuoteRequest{
				ServiceType:         flgs.ServiceType,
				Duration:            domain.WarehouseDuration(flgs.Duration),
				Volume:              domain.WarehouseVolume{Pallets: flgs.Pallets, SqFt: flgs.SqFt},
				SpecialRequirements: flgs.Requirements,
			})
			if err != nil {
				printError(cmd, err)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WAREHOUSE\tLOCATION\tMONTHLY\tSETUP\tADD-ONS\tTOTAL\tSETUP TIME")
			for _, q := range quotes {
				addOns := make([]string, 0, len(q.Pricing.AdditionalServices))
				for _, a := range q.Pricing.AdditionalServices {
					addOns = append(addOns, fmt.Sprintf("%s $%.0f", a.Name, a.Rate))
				}
				fmt.Fprintf(w, "%s\t%s\t$%.2f\t$%.2f\t%s\t$%.2f\t%s\n",
					q.WarehouseName, q.Location, q.Pricing.MonthlyRate, q.Pricing.SetupFee,
					strings.Join(addOns, ", "), q.Pricing.TotalEstimate, q.SetupTime)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flgs.ServiceType, "service-type", "Warehouse Storage", "warehouse service type")
	cmd.Flags().StringVar(&flgs.Duration, "duration", string(domain.DurationLongTerm), "short_term, long_term, seasonal or permanent")
	cmd.Flags().IntVar(&flgs.Pallets, "pallets", 0, "pallet positions")
	cmd.Flags().IntVar(&flgs.SqFt, "sqft", 0, "square footage, used when --pallets is not set")
	cmd.Flags().StringSliceVar(&flgs.Requirements, "require", nil, "special requirement (repeatable)")

	return cmd
}
