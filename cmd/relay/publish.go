package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pcparts/notify-relay/internal/client"
	"github.com/spf13/cobra"
)

type publishOptions struct {
	url   string
	token string
}

func newPublishCmd() *cobra.Command {
	var opts publishOptions
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Send an event to a running relay",
	}
	cmd.PersistentFlags().StringVar(&opts.url, "url", "http://127.0.0.1:3003", "Base URL of the relay")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("INGEST_TOKEN"), "Ingestion token")

	cmd.AddCommand(newPublishOrderCmd(&opts), newPublishPromotionsCmd(&opts))
	return cmd
}

func newPublishOrderCmd(opts *publishOptions) *cobra.Command {
	var (
		id    string
		order client.Order
		total float64
	)
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Announce a new order to admin dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			order.OrderID = orderID(id)
			if cmd.Flags().Changed("total") {
				order.OrderTotal = &total
			}
			res, err := client.NewHTTPClient(opts.url, opts.token).PublishOrder(cmd.Context(), order)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Order id")
	cmd.Flags().StringVar(&order.ContactPhone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&order.CustomerName, "name", "", "Customer name")
	cmd.Flags().StringVar(&order.CustomerEmail, "email", "", "Customer email")
	cmd.Flags().Float64Var(&total, "total", 0, "Order total")
	cmd.Flags().StringVar(&order.Status, "status", "", "Order status")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("phone")
	return cmd
}

func newPublishPromotionsCmd(opts *publishOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "promotions",
		Short: "Announce expiring promotions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			promos, err := client.LoadPromotions(file)
			if err != nil {
				return err
			}
			res, err := client.NewHTTPClient(opts.url, opts.token).PublishPromotions(cmd.Context(), promos)
			if err != nil {
				return err
			}
			admins := 0
			if res.AdminCount != nil {
				admins = *res.AdminCount
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d admins online)\n", res.Message, admins)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "promos.yaml", "YAML file listing the promotions")
	return cmd
}

// orderID sends numeric ids as JSON numbers, like the store backend does.
func orderID(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
