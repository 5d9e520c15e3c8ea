// Command storefront-cart keeps a shopper's cart on disk and checks it out
// against the storefront API.
//
//	storefront-cart [-api URL] [-cart FILE] <command> [args]
//
// Commands: show, add <productID>..., remove <productID>,
// set <productID> <qty>, clear, checkout -name N -email E [-phone P] [-address A].
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/client"
	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "storefront-cart:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.InitLoggerTo(os.Stderr, cfg.LogLevel)

	fs := flag.NewFlagSet("storefront-cart", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", cfg.APIURL, "storefront API base URL")
	cartFile := fs.String("cart", cfg.CartFile, "cart file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	c := &cli{
		api:  client.New(*apiURL, nil),
		cart: cart.New(cart.NewFileStorage(*cartFile)),
		out:  out,
	}
	return c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}
