package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"food-storefront/cart"
	"food-storefront/checkout"
	"food-storefront/client"
	"food-storefront/config"
	"food-storefront/models"
)

// shopSession is what the client-side commands share.
type shopSession struct {
	cfg       *config.Config
	log       *logrus.Logger
	api       *client.Client
	cart      *cart.Store
	tokenPath string
}

func openShop(cmd *cobra.Command) (*shopSession, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cartPath := cfg.Client.CartFile
	if cartPath == "" {
		if cartPath, err = cart.DefaultFile(); err != nil {
			return nil, err
		}
	}
	tokenPath := cfg.Client.TokenFile
	if tokenPath == "" {
		tokenPath = filepath.Join(filepath.Dir(cartPath), "token")
	}
	api := client.New(cfg.Client.APIURL)
	token, err := os.ReadFile(tokenPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	api.SetToken(strings.TrimSpace(string(token)))

	return &shopSession{
		cfg:       cfg,
		log:       log,
		api:       api,
		cart:      cart.New(cart.FilePersistence{Path: cartPath}, log),
		tokenPath: tokenPath,
	}, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the token for later commands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		res, err := s.api.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(s.tokenPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(s.tokenPath, []byte(res.Token), 0o600); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", res.User.Name, res.User.Role)
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the local shopping cart",
}

var cartAddCmd = &cobra.Command{
	Use:   "add MENU_ITEM_ID",
	Short: "Add one of a menu item, optionally customized (--option Size=Large)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		item, err := s.api.GetMenuItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !item.Availability {
			return fmt.Errorf("%s is currently unavailable", item.Name)
		}
		opts, _ := cmd.Flags().GetStringArray("option")
		line := cart.Line{
			MenuItem: cart.MenuItem{ID: item.ID, Name: item.Name, Price: item.Price, Restaurant: item.RestaurantID},
		}
		line.SpecialInstructions, _ = cmd.Flags().GetString("instructions")
		for _, o := range opts {
			group, choice, ok := strings.Cut(o, "=")
			if !ok {
				return fmt.Errorf("option %q must look like Group=Choice", o)
			}
			opt, found := item.Option(group, choice)
			if !found {
				return fmt.Errorf("%s has no %s option %q", item.Name, group, choice)
			}
			line.Customizations = append(line.Customizations,
				models.SelectedCustomization{Name: group, Option: opt.Name, Price: opt.Price})
		}
		if err := s.cart.AddItem(line); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d in cart)\n", item.Name, s.cart.ItemQuantity(item.ID))
		return nil
	},
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart with its price summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		lines := s.cart.Lines()
		if len(lines) == 0 {
			fmt.Fprintln(out, "Your cart is empty")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ITEM\tID\tOPTIONS\tQTY\tPRICE")
		for _, l := range lines {
			var opts []string
			for _, c := range l.Customizations {
				opts = append(opts, c.Name+"="+c.Option)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t$%.2f\n", l.MenuItem.Name, l.MenuItem.ID, strings.Join(opts, ","), l.Quantity, l.Total())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		printSummary(cmd, checkout.Quote(s.cart.TotalPrice()), s.cart.TotalItems())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove MENU_ITEM_ID",
	Short: "Remove a menu item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		return s.cart.RemoveItem(args[0])
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update MENU_ITEM_ID QUANTITY",
	Short: "Set the quantity of a menu item; 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		return s.cart.UpdateQuantity(args[0], q)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		return s.cart.Clear()
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Pay for the cart and place the order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		var addr models.DeliveryAddress
		addr.Street, _ = flags.GetString("street")
		addr.City, _ = flags.GetString("city")
		addr.State, _ = flags.GetString("state")
		addr.ZipCode, _ = flags.GetString("zip")
		addr.Instructions, _ = flags.GetString("instructions")
		method, _ := flags.GetString("method")
		tip, _ := flags.GetFloat64("tip")
		notes, _ := flags.GetString("notes")

		printSummary(cmd, checkout.Quote(s.cart.TotalPrice()), s.cart.TotalItems())
		svc := &checkout.Service{Cart: s.cart, Payer: checkout.SimulatedPayer{}, Orders: s.api, Log: s.log}
		order, err := svc.Place(cmd.Context(), addr, models.PaymentMethod(method), tip, notes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed: $%.2f (%s)\n", order.OrderNumber, order.Pricing.Total, order.Status)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openShop(cmd)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")
		res, err := s.api.ListOrders(cmd.Context(), status, page, 10)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tSTATUS\tITEMS\tTOTAL\tPLACED")
		for _, o := range res.Orders {
			fmt.Fprintf(tw, "%s\t%s\t%d\t$%.2f\t%s\n", o.OrderNumber, o.Status, len(o.Items), o.Pricing.Total, o.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d orders)\n", res.Page, res.Pages, res.Total)
		return nil
	},
}

func printSummary(cmd *cobra.Command, q checkout.Summary, items int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Items:        %d\n", items)
	fmt.Fprintf(out, "Subtotal:     $%.2f\n", q.Subtotal)
	fmt.Fprintf(out, "Delivery fee: $%.2f\n", q.DeliveryFee)
	fmt.Fprintf(out, "Tax:          $%.2f\n", q.Tax)
	fmt.Fprintf(out, "Total:        $%.2f\n", q.Total)
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	cartAddCmd.Flags().StringArray("option", nil, "customization as Group=Choice (repeatable)")
	cartAddCmd.Flags().String("instructions", "", "special instructions for the kitchen")
	cartCmd.AddCommand(cartAddCmd, cartListCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)

	f := checkoutCmd.Flags()
	f.String("street", "", "delivery street")
	f.String("city", "", "delivery city")
	f.String("state", "", "delivery state")
	f.String("zip", "", "delivery zip code")
	f.String("instructions", "", "delivery instructions")
	f.String("method", string(models.PaymentCard), "payment method (card, cash, digital_wallet)")
	f.Float64("tip", 0, "tip for the driver")
	f.String("notes", "", "notes for the restaurant")
	for _, name := range []string{"street", "city", "state", "zip"} {
		_ = checkoutCmd.MarkFlagRequired(name)
	}

	ordersCmd.Flags().String("status", "", "only show orders with this status")
	ordersCmd.Flags().Int("page", 1, "page number")
}
