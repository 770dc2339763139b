package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "idpay",
	Short: "IDPay checkout gateway",
	Long:  "A checkout gateway that starts IDPay payments, verifies buyer returns, and expires abandoned orders.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
