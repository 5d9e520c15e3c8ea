package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

// fetchLimit bounds concurrent product lookups during add.
const fetchLimit = 4

type api interface {
	GetProduct(ctx context.Context, id string) (model.Product, error)
	CreateOrder(ctx context.Context, in model.OrderInput) (model.Order, error)
}

type cli struct {
	api  api
	cart *cart.Cart
	out  io.Writer
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "show":
		return c.show()
	case "add":
		return c.add(ctx, args)
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <productID>")
		}
		if err := c.cart.Remove(args[0]); err != nil {
			return err
		}
		return c.show()
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <productID> <qty>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q: %w", args[1], err)
		}
		if err := c.cart.UpdateQuantity(args[0], qty); err != nil {
			return err
		}
		return c.show()
	case "clear":
		return c.cart.Clear()
	case "checkout":
		return c.checkout(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) show() error {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		_, err := fmt.Fprintln(c.out, "cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Name, l.Price.StringFixed(2), l.Quantity, l.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t%s\n", c.cart.Count(), c.cart.Total().StringFixed(2))
	return tw.Flush()
}

// add looks every product up concurrently and then adds them in argument order.
func (c *cli) add(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("usage: add <productID>...")
	}
	products := make([]model.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := c.api.GetProduct(gctx, id)
			if err != nil {
				return fmt.Errorf("product %s: %w", id, err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range products {
		if err := c.cart.Add(p); err != nil {
			return err
		}
	}
	return c.show()
}

func (c *cli) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(c.out)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")
	address := fs.String("address", "", "shipping address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	items := c.cart.OrderItems()
	if len(items) == 0 {
		return fmt.Errorf("cart is empty")
	}
	o, err := c.api.CreateOrder(ctx, model.OrderInput{
		CustomerName:    *name,
		CustomerEmail:   *email,
		CustomerPhone:   *phone,
		CustomerAddress: *address,
		Items:           items,
	})
	if err != nil {
		return err
	}
	if err := c.cart.Clear(); err != nil {
		return fmt.Errorf("order %s placed but cart not cleared: %w", o.ID, err)
	}
	_, err = fmt.Fprintf(c.out, "order %s placed, total %s\n", o.ID, o.TotalAmount.StringFixed(2))
	return err
}
