package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"food-storefront/config"
	"food-storefront/export"
	"food-storefront/models"
	"food-storefront/seed"
	"food-storefront/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := config.OpenStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		log.WithField("driver", cfg.Database.Driver).Info("migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users, restaurants and menus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := config.OpenStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := seed.DefaultOptions()
		flags := cmd.Flags()
		opts.Restaurants, _ = flags.GetInt("restaurants")
		opts.ItemsPerRestaurant, _ = flags.GetInt("items")
		opts.Customers, _ = flags.GetInt("customers")
		opts.Drivers, _ = flags.GetInt("drivers")
		opts.Seed, _ = flags.GetInt64("seed")
		opts.Progress = cmd.ErrOrStderr()

		res, err := seed.Run(cmd.Context(), st, opts)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"users":       res.Users,
			"restaurants": res.Restaurants,
			"menu_items":  res.MenuItems,
		}).Info("seed complete")
		fmt.Fprintf(cmd.OutOrStdout(), "admin login: %s / %s\n", res.AdminEmail, seed.DefaultPassword)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orders as newline-delimited JSON to a directory or S3",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := config.OpenStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		status, _ := cmd.Flags().GetString("status")
		dir, _ := cmd.Flags().GetString("dir")
		toS3, _ := cmd.Flags().GetBool("s3")
		if status != "" && !isOrderStatus(models.OrderStatus(status)) {
			return fmt.Errorf("unknown order status %q", status)
		}

		var (
			factory export.SinkFactory = export.FileSinkFactory{Dir: dir}
			prefix  string
		)
		if toS3 {
			if cfg.Export.S3Bucket == "" {
				return fmt.Errorf("export.s3_bucket must be set to export to S3")
			}
			factory, err = export.NewS3SinkFactory(cmd.Context(), cfg.Export.S3Region, cfg.Export.S3Bucket)
			if err != nil {
				return err
			}
			prefix = cfg.Export.S3Prefix
		}

		name := export.ObjectName(prefix, models.OrderStatus(status), time.Now().UTC().Format("20060102T150405Z"))
		n, err := export.ToSink(cmd.Context(), st, store.OrderFilter{Status: models.OrderStatus(status)}, factory, name)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"orders": n, "object": name, "s3": toS3}).Info("export complete")
		return nil
	},
}

func isOrderStatus(s models.OrderStatus) bool {
	for _, known := range models.OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func init() {
	seedCmd.Flags().Int("restaurants", 10, "number of restaurants")
	seedCmd.Flags().Int("items", 8, "menu items per restaurant")
	seedCmd.Flags().Int("customers", 20, "number of customers")
	seedCmd.Flags().Int("drivers", 5, "number of delivery drivers")
	seedCmd.Flags().Int64("seed", 42, "random seed")

	exportCmd.Flags().String("status", "", "only export orders with this status")
	exportCmd.Flags().String("dir", "exports", "local output directory")
	exportCmd.Flags().Bool("s3", false, "upload to the configured S3 bucket instead")
}
