package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitlog/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if path, ok := ctx.SQLitePath(); ok {
			if _, err := os.Stat(path); err == nil {
				if err := ctx.Store.Close(); err != nil {
					return fmt.Errorf("failed to close existing database: %w", err)
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
				ctx.Printf("Deleted existing database at: %s\n", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to access existing database: %w", err)
			}
		}
	}

	if err := ctx.Store.Init(ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized habitlog storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
