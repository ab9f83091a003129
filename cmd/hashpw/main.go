// Command hashpw prints a bcrypt digest for each password argument, for
// provisioning accounts or rotating the seeded admin password by hand.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/taskboard/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: hashpw [-cost N] password...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(os.Stdout, *cost, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(w io.Writer, cost int, passwords []string) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	hasher := auth.NewBcryptHasher(cost)

	for _, password := range passwords {
		if len(password) > auth.MaxPasswordBytes {
			return fmt.Errorf("password longer than %d bytes", auth.MaxPasswordBytes)
		}
		digest, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, digest); err != nil {
			return err
		}
	}
	return nil
}
